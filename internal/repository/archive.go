package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

// RoundArchive - finished rounds with their attempt log, kept after the room moves on.
type RoundArchive interface {
	Save(ctx context.Context, round *entity.RoundView) error
	ListByRoom(ctx context.Context, roomID string) ([]*entity.RoundView, error)
}

type sqlRoundArchive struct {
	conn *sql.DB
}

func NewRoundArchive(conn *sql.DB) RoundArchive {
	return &sqlRoundArchive{
		conn: conn,
	}
}

// Save - stores a finished round once; saving the same round again is a no-op.
func (that *sqlRoundArchive) Save(ctx context.Context, round *entity.RoundView) error {
	if round == nil || !round.Status.IsTerminal() || round.FinishedAt == nil {
		return fmt.Errorf("%w: only finished rounds are archived", apperror.ErrInvalidInput)
	}

	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT OR IGNORE INTO rounds
		(id, room_id, word, masked, guessed, status, health, max_health, started_by, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, query,
		round.ID, round.RoomID, round.Word, round.Masked, strings.Join(round.Guessed, ""), string(round.Status),
		round.Health, round.MaxHealth, round.StartedBy, round.StartedAt.UTC(), round.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("can't save round: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't save round: %w", err)
	}

	if inserted == 0 {
		return nil
	}

	for seq, attempt := range round.Attempts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attempts (round_id, seq, player_id, kind, value, hit, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			round.ID, seq, attempt.PlayerID, attempt.Kind, attempt.Value, attempt.Hit, attempt.At.UTC())
		if err != nil {
			return fmt.Errorf("can't save attempt: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit round: %w", err)
	}

	return nil
}

// ListByRoom - finished rounds of a room, oldest first.
func (that *sqlRoundArchive) ListByRoom(ctx context.Context, roomID string) ([]*entity.RoundView, error) {
	query := `SELECT id, room_id, word, masked, guessed, status, health, max_health, started_by, started_at, finished_at
		FROM rounds WHERE room_id = ? ORDER BY finished_at, id`

	rows, err := that.conn.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("can't list rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]*entity.RoundView, 0)
	for rows.Next() {
		var (
			round      entity.RoundView
			guessed    string
			status     string
			finishedAt time.Time
		)

		err = rows.Scan(&round.ID, &round.RoomID, &round.Word, &round.Masked, &guessed, &status,
			&round.Health, &round.MaxHealth, &round.StartedBy, &round.StartedAt, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("can't scan round: %w", err)
		}

		round.Status = entity.RoundStatus(status)
		round.FinishedAt = &finishedAt
		round.Length = len([]rune(round.Word))
		round.Guessed = splitLetters(guessed)
		round.Revealed = revealedPositions(round.Masked)

		rounds = append(rounds, &round)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list rounds: %w", err)
	}

	for _, round := range rounds {
		if round.Attempts, err = that.listAttempts(ctx, round.ID); err != nil {
			return nil, err
		}
	}

	return rounds, nil
}

func (that *sqlRoundArchive) listAttempts(ctx context.Context, roundID string) ([]entity.Attempt, error) {
	rows, err := that.conn.QueryContext(ctx,
		`SELECT player_id, kind, value, hit, at FROM attempts WHERE round_id = ? ORDER BY seq`, roundID)
	if err != nil {
		return nil, fmt.Errorf("can't list attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]entity.Attempt, 0)
	for rows.Next() {
		var attempt entity.Attempt
		if err = rows.Scan(&attempt.PlayerID, &attempt.Kind, &attempt.Value, &attempt.Hit, &attempt.At); err != nil {
			return nil, fmt.Errorf("can't scan attempt: %w", err)
		}

		attempts = append(attempts, attempt)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list attempts: %w", err)
	}

	return attempts, nil
}

func splitLetters(s string) []string {
	letters := make([]string, 0, len(s))
	for _, r := range s {
		letters = append(letters, string(r))
	}

	return letters
}

func revealedPositions(masked string) []int {
	positions := make([]int, 0)
	for i, cell := range strings.Split(masked, " ") {
		if cell != "_" {
			positions = append(positions, i)
		}
	}

	return positions
}
