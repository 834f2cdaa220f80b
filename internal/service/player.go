package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/pkg"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, name string) (*entity.Player, error)
	GetPlayer(ctx context.Context, id string) (*entity.Player, error)
}

type playerService struct {
	playerRepo    playerRepo
	maxNameLength int
}

type playerRepo interface {
	Create(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

func NewPlayerService(playerRepo playerRepo, maxNameLength int) PlayerService {
	return &playerService{
		playerRepo:    playerRepo,
		maxNameLength: maxNameLength,
	}
}

// CreatePlayer - registers a new player identity under a generated id.
func (that *playerService) CreatePlayer(ctx context.Context, name string) (*entity.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is empty", apperror.ErrInvalidInput)
	}

	if utf8.RuneCountInString(name) > that.maxNameLength {
		return nil, fmt.Errorf("%w: player name can't exceed %d characters", apperror.ErrInvalidInput, that.maxNameLength)
	}

	player := &entity.Player{
		ID:        pkg.GenerateID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := that.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}

	return player, nil
}

func (that *playerService) GetPlayer(ctx context.Context, id string) (*entity.Player, error) {
	if !pkg.IsValidID(id) {
		return nil, fmt.Errorf("%w: malformed player id %q", apperror.ErrInvalidInput, id)
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get player by id: %w", err)
	}

	return player, nil
}
