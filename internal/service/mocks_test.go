package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (m *mockPlayerRepo) Create(ctx context.Context, player *entity.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := m.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockRoomRepo struct {
	mock.Mock
}

func (m *mockRoomRepo) Save(ctx context.Context, snapshot *entity.Snapshot) (bool, error) {
	args := m.Called(ctx, snapshot)
	return args.Bool(0), args.Error(1)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) Save(ctx context.Context, round *entity.RoundView) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
