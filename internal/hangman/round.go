package hangman

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

// Round - the active round of a room. It is owned by exactly one room and only
// mutated through Engine while that room's coordinator holds its turn.
type Round struct {
	id     string
	roomID string
	word   string

	guessed    map[rune]struct{}
	wrongWords map[string]struct{}
	revealed   map[int]struct{}
	health     Health
	status     entity.RoundStatus
	attempts   []entity.Attempt

	startedBy  string
	startedAt  time.Time
	finishedAt *time.Time
}

func (that *Round) ID() string {
	return that.id
}

func (that *Round) Word() string {
	return that.word
}

func (that *Round) Status() entity.RoundStatus {
	return that.status
}

func (that *Round) IsInProgress() bool {
	return that.status == entity.StatusInProgress
}

func (that *Round) Health() Health {
	return that.health
}

// View - read-only projection; the word is hidden until the round is over.
func (that *Round) View() *entity.RoundView {
	runes := []rune(that.word)

	masked := make([]string, len(runes))
	for i, r := range runes {
		if _, ok := that.revealed[i]; ok {
			masked[i] = string(r)
		} else {
			masked[i] = "_"
		}
	}

	guessed := make([]string, 0, len(that.guessed))
	for r := range that.guessed {
		guessed = append(guessed, string(r))
	}
	sort.Strings(guessed)

	revealed := make([]int, 0, len(that.revealed))
	for i := range that.revealed {
		revealed = append(revealed, i)
	}
	sort.Ints(revealed)

	view := &entity.RoundView{
		ID:        that.id,
		RoomID:    that.roomID,
		Status:    that.status,
		Masked:    strings.Join(masked, " "),
		Length:    len(runes),
		Guessed:   guessed,
		Revealed:  revealed,
		Health:    that.health.Remaining(),
		MaxHealth: that.health.Budget(),
		Attempts:  append([]entity.Attempt(nil), that.attempts...),
		StartedBy: that.startedBy,
		StartedAt: that.startedAt,
	}

	if that.status.IsTerminal() {
		view.Word = that.word
		finishedAt := *that.finishedAt
		view.FinishedAt = &finishedAt
	}

	return view
}

// Result - what a guess did to the round.
type Result struct {
	Outcome  entity.Outcome
	NearMiss bool
}

// Engine - applies the round state machine: WaitingForWord -> InProgress -> Won | Lost.
type Engine struct {
	startingHealth   int
	nearMissDistance int
	now              func() time.Time
}

func NewEngine(startingHealth, nearMissDistance int) (*Engine, error) {
	if startingHealth <= 0 {
		return nil, fmt.Errorf("%w: starting health must be positive, got %d", apperror.ErrInvalidInput, startingHealth)
	}

	return &Engine{
		startingHealth:   startingHealth,
		nearMissDistance: nearMissDistance,
		now:              time.Now,
	}, nil
}

// StartRound - creates a new in-progress round with word for the room whose current round is current.
func (that *Engine) StartRound(current *Round, host *entity.Membership, roomID, roundID, word string) (*Round, error) {
	if current != nil && current.IsInProgress() {
		return nil, fmt.Errorf("%w: room %s already has a round in progress", apperror.ErrConflict, roomID)
	}

	if host == nil || !host.IsHost {
		return nil, fmt.Errorf("%w: only the host can start a round", apperror.ErrForbidden)
	}

	normalized, err := NormalizeWord(word)
	if err != nil {
		return nil, err
	}

	health, err := NewHealth(that.startingHealth)
	if err != nil {
		return nil, err
	}

	return &Round{
		id:         roundID,
		roomID:     roomID,
		word:       normalized,
		guessed:    make(map[rune]struct{}),
		wrongWords: make(map[string]struct{}),
		revealed:   make(map[int]struct{}),
		health:     health,
		status:     entity.StatusInProgress,
		startedBy:  host.PlayerID,
		startedAt:  that.now(),
	}, nil
}

// SubmitLetterGuess - applies a letter guess. Repeating an already guessed letter is a no-op.
func (that *Engine) SubmitLetterGuess(round *Round, member *entity.Membership, letter string) (Result, error) {
	if err := confirmInProgress(round); err != nil {
		return Result{}, err
	}

	match, err := EvaluateLetter(round.word, letter)
	if err != nil {
		return Result{}, err
	}

	if _, ok := round.guessed[match.Letter]; ok {
		return Result{Outcome: entity.OutcomeNoChange}, nil
	}

	if !match.Matches {
		if _, err = round.health.RegisterMiss(); err != nil {
			return Result{}, fmt.Errorf("failed to register miss: %w", err)
		}
	}

	round.guessed[match.Letter] = struct{}{}
	for _, position := range match.Positions {
		round.revealed[position] = struct{}{}
	}
	that.logAttempt(round, member, entity.AttemptLetter, string(match.Letter), match.Matches)

	switch {
	case match.Matches && IsFullyRevealed(round.word, round.revealed):
		that.finish(round, entity.StatusWon)
		return Result{Outcome: entity.OutcomeRoundWon}, nil
	case match.Matches:
		return Result{Outcome: entity.OutcomeLetterAccepted}, nil
	case !round.health.IsAlive():
		that.finish(round, entity.StatusLost)
		return Result{Outcome: entity.OutcomeRoundLost}, nil
	default:
		return Result{Outcome: entity.OutcomeLetterRejectedMiss}, nil
	}
}

// SubmitWordGuess - applies a whole word guess. A wrong word costs one life, the same wrong word again costs nothing.
func (that *Engine) SubmitWordGuess(round *Round, member *entity.Membership, guess string) (Result, error) {
	if err := confirmInProgress(round); err != nil {
		return Result{}, err
	}

	normalized, err := NormalizeWord(guess)
	if err != nil {
		return Result{}, err
	}

	if EvaluateWord(round.word, normalized) {
		for i := range []rune(round.word) {
			round.revealed[i] = struct{}{}
		}
		that.logAttempt(round, member, entity.AttemptWord, normalized, true)
		that.finish(round, entity.StatusWon)

		return Result{Outcome: entity.OutcomeRoundWon}, nil
	}

	if _, ok := round.wrongWords[normalized]; ok {
		return Result{Outcome: entity.OutcomeNoChange}, nil
	}

	if _, err = round.health.RegisterMiss(); err != nil {
		return Result{}, fmt.Errorf("failed to register miss: %w", err)
	}

	round.wrongWords[normalized] = struct{}{}
	that.logAttempt(round, member, entity.AttemptWord, normalized, false)

	result := Result{
		Outcome:  entity.OutcomeWordRejectedMiss,
		NearMiss: IsNearMiss(round.word, normalized, that.nearMissDistance),
	}

	if !round.health.IsAlive() {
		that.finish(round, entity.StatusLost)
		result.Outcome = entity.OutcomeRoundLost
	}

	return result, nil
}

func confirmInProgress(round *Round) error {
	if round == nil {
		return fmt.Errorf("%w: no round has been started", apperror.ErrConflict)
	}

	if !round.IsInProgress() {
		return fmt.Errorf("%w: round %s is %s", apperror.ErrConflict, round.id, round.status)
	}

	return nil
}

func (that *Engine) logAttempt(round *Round, member *entity.Membership, kind, value string, hit bool) {
	attempt := entity.Attempt{
		Kind:  kind,
		Value: value,
		Hit:   hit,
		At:    that.now(),
	}
	if member != nil {
		attempt.PlayerID = member.PlayerID
	}

	round.attempts = append(round.attempts, attempt)
}

func (that *Engine) finish(round *Round, status entity.RoundStatus) {
	finishedAt := that.now()
	round.status = status
	round.finishedAt = &finishedAt
}
