package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

type playerService interface {
	CreatePlayer(ctx context.Context, name string) (*entity.Player, error)
	GetPlayer(ctx context.Context, id string) (*entity.Player, error)
}

type roomService interface {
	CreateRoom(ctx context.Context, name string) (entity.RoomInfo, error)
	ListRooms(ctx context.Context) []entity.RoomInfo
	GetRoom(ctx context.Context, roomID string) (*entity.Snapshot, error)
	ListRounds(ctx context.Context, roomID string) ([]*entity.RoundView, error)
	CloseRoom(ctx context.Context, roomID string) error
}

type Handlers struct {
	logger  *slog.Logger
	players playerService
	rooms   roomService
}

func NewHandlers(logger *slog.Logger, players playerService, rooms roomService) *Handlers {
	return &Handlers{
		logger:  logger.With("component", "rest"),
		players: players,
		rooms:   rooms,
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (that *Handlers) bindName(c *gin.Context) (string, bool) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		that.abortWithError(c, fmt.Errorf("%w: %w", apperror.ErrInvalidInput, err))
		return "", false
	}

	return req.Name, true
}

func (that *Handlers) CreatePlayer(c *gin.Context) {
	name, ok := that.bindName(c)
	if !ok {
		return
	}

	player, err := that.players.CreatePlayer(c.Request.Context(), name)
	if err != nil {
		that.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, player)
}

func (that *Handlers) GetPlayer(c *gin.Context) {
	player, err := that.players.GetPlayer(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, player)
}

func (that *Handlers) CreateRoom(c *gin.Context) {
	name, ok := that.bindName(c)
	if !ok {
		return
	}

	room, err := that.rooms.CreateRoom(c.Request.Context(), name)
	if err != nil {
		that.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

func (that *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, that.rooms.ListRooms(c.Request.Context()))
}

func (that *Handlers) GetRoom(c *gin.Context) {
	snapshot, err := that.rooms.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (that *Handlers) ListRounds(c *gin.Context) {
	rounds, err := that.rooms.ListRounds(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rounds)
}

func (that *Handlers) CloseRoom(c *gin.Context) {
	if err := that.rooms.CloseRoom(c.Request.Context(), c.Param("id")); err != nil {
		that.abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
