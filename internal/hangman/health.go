package hangman

import (
	"fmt"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
)

// Health - the shared lives budget of a round.
type Health struct {
	budget    int
	remaining int
}

func NewHealth(budget int) (Health, error) {
	if budget <= 0 {
		return Health{}, fmt.Errorf("%w: starting health must be positive, got %d", apperror.ErrInvalidInput, budget)
	}

	return Health{budget: budget, remaining: budget}, nil
}

// RegisterMiss - takes one life and returns what is left.
func (that *Health) RegisterMiss() (int, error) {
	if that.remaining == 0 {
		return 0, apperror.ErrAlreadyDepleted
	}

	that.remaining--

	return that.remaining, nil
}

func (that *Health) IsAlive() bool {
	return that.remaining > 0
}

func (that *Health) Remaining() int {
	return that.remaining
}

func (that *Health) Budget() int {
	return that.budget
}
