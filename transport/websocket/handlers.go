package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/room"
)

func requireRoom(req *RequestPayload) error {
	if req.RoomID == "" {
		return fmt.Errorf("%w: room_id is required", apperror.ErrInvalidInput)
	}

	return nil
}

func (that *Server) handleJoin(ctx context.Context, c *client, req *RequestPayload) (*room.Result, error) {
	if err := requireRoom(req); err != nil {
		return nil, err
	}

	result, err := that.rooms.JoinRoom(ctx, req.RoomID, c.playerID, req.AsHost)
	if result == nil {
		return nil, err
	}

	if member, ok := result.Snapshot.Member(c.playerID); ok && member.IsActive() {
		that.hub.subscribe(req.RoomID, c)
	}

	return result, err
}

func (that *Server) handleLeave(ctx context.Context, c *client, req *RequestPayload) (*room.Result, error) {
	if err := requireRoom(req); err != nil {
		return nil, err
	}

	result, err := that.rooms.LeaveRoom(ctx, req.RoomID, c.playerID)
	if result != nil {
		that.hub.unsubscribe(req.RoomID, c)
	}

	return result, err
}

func (that *Server) handleStartRound(ctx context.Context, c *client, req *RequestPayload) (*room.Result, error) {
	if err := requireRoom(req); err != nil {
		return nil, err
	}

	return that.rooms.StartRound(ctx, req.RoomID, c.playerID, req.Word)
}

func (that *Server) handleGuessLetter(ctx context.Context, c *client, req *RequestPayload) (*room.Result, error) {
	if err := requireRoom(req); err != nil {
		return nil, err
	}

	return that.rooms.GuessLetter(ctx, req.RoomID, c.playerID, req.Letter)
}

func (that *Server) handleGuessWord(ctx context.Context, c *client, req *RequestPayload) (*room.Result, error) {
	if err := requireRoom(req); err != nil {
		return nil, err
	}

	return that.rooms.GuessWord(ctx, req.RoomID, c.playerID, req.Word)
}

func (that *Server) handleSnapshot(ctx context.Context, _ *client, req *RequestPayload) (*room.Result, error) {
	if err := requireRoom(req); err != nil {
		return nil, err
	}

	snapshot, err := that.rooms.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	return &room.Result{Snapshot: snapshot}, nil
}

func (that *Server) handleBan(ctx context.Context, c *client, req *RequestPayload) (*room.Result, error) {
	if err := requireRoom(req); err != nil {
		return nil, err
	}

	return that.rooms.BanPlayer(ctx, req.RoomID, c.playerID, req.TargetID)
}

func (that *Server) handlePromote(ctx context.Context, c *client, req *RequestPayload) (*room.Result, error) {
	if err := requireRoom(req); err != nil {
		return nil, err
	}

	return that.rooms.PromoteHost(ctx, req.RoomID, c.playerID, req.TargetID)
}
