package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/room"
)

const shutdownTimeout = 5 * time.Second

type roomUseCase interface {
	GetRoom(ctx context.Context, roomID string) (*entity.Snapshot, error)
	JoinRoom(ctx context.Context, roomID, playerID string, asHost bool) (*room.Result, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) (*room.Result, error)
	StartRound(ctx context.Context, roomID, playerID, word string) (*room.Result, error)
	GuessLetter(ctx context.Context, roomID, playerID, letter string) (*room.Result, error)
	GuessWord(ctx context.Context, roomID, playerID, word string) (*room.Result, error)
	BanPlayer(ctx context.Context, roomID, hostID, targetID string) (*room.Result, error)
	PromoteHost(ctx context.Context, roomID, hostID, targetID string) (*room.Result, error)
}

type playerResolver interface {
	GetPlayer(ctx context.Context, id string) (*entity.Player, error)
}

// Limits - per connection guess throttling.
type Limits struct {
	GuessRate  float64
	GuessBurst int
}

type handlerFunc func(ctx context.Context, c *client, req *RequestPayload) (*room.Result, error)

type Server struct {
	logger   *slog.Logger
	hub      *Hub
	rooms    roomUseCase
	players  playerResolver
	limits   Limits
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
	// throttled actions consume a token of the connection's limiter
	throttled map[string]bool
}

func New(logger *slog.Logger, hub *Hub, rooms roomUseCase, players playerResolver, limits Limits) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		hub:     hub,
		rooms:   rooms,
		players: players,
		limits:  limits,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
		throttled: map[string]bool{
			actionLetter: true,
			actionWord:   true,
		},
	}

	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionLeave] = server.handleLeave
	server.handlers[actionStart] = server.handleStartRound
	server.handlers[actionLetter] = server.handleGuessLetter
	server.handlers[actionWord] = server.handleGuessWord
	server.handlers[actionSnapshot] = server.handleSnapshot
	server.handlers[actionBan] = server.handleBan
	server.handlers[actionPromote] = server.handlePromote

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - resolves the player and upgrades the connection to WebSocket.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	player, err := that.players.GetPlayer(r.Context(), r.URL.Query().Get("player"))
	if err != nil {
		status := http.StatusUnauthorized
		if apperror.Kind(err) == "internal" {
			log.Error("failed to resolve player", "error", err)
			status = http.StatusInternalServerError
		}

		http.Error(w, apperror.Kind(err), status)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, player.ID, that.limits)
	go c.writePump()

	log = log.With("playerID", player.ID)
	log.Info("WebSocket connection established")

	defer func() {
		that.hub.unsubscribeAll(c)
		c.close()
		log.Info("WebSocket connection closed")
	}()

	that.handleMessages(r.Context(), c)
}

// handleMessages - processes messages from the client until the connection drops.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages", "playerID", c.playerID)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("connection dropped", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			that.reply(c, actionError, nil, fmt.Errorf("%w: malformed message", apperror.ErrInvalidInput))
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.reply(c, message.Action, nil, fmt.Errorf("%w: unknown action %q", apperror.ErrInvalidInput, message.Action))
			continue
		}

		var req RequestPayload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &req); err != nil {
				that.reply(c, message.Action, nil, fmt.Errorf("%w: malformed payload", apperror.ErrInvalidInput))
				continue
			}
		}

		if that.throttled[message.Action] && !c.limiter.Allow() {
			that.replyError(c, message.Action, "rate_limited", "too many guesses")
			continue
		}

		result, err := handler(ctx, c, &req)
		if err != nil && result == nil {
			log.Debug("action rejected", "action", message.Action, "error", err)
		}

		that.reply(c, message.Action, result, err)
	}
}

// reply - answers the sender; a result with an error carries the error as a warning.
func (that *Server) reply(c *client, action string, result *room.Result, err error) {
	if result == nil {
		that.replyError(c, action, apperror.Kind(err), err.Error())
		return
	}

	payload := ResponsePayload{Snapshot: result.Snapshot}
	if result.Event.Outcome != "" {
		event := result.Event
		payload.Event = &event
	}

	if apperror.IsWarning(err) {
		payload.Warning = apperror.Kind(err)
	}

	that.send(c, action, payload)
}

func (that *Server) replyError(c *client, action, kind, message string) {
	that.send(c, action, ResponsePayload{Error: kind, Message: message})
}

func (that *Server) send(c *client, action string, payload ResponsePayload) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to marshal response", "action", action, "error", err)
		return
	}

	if !c.trySend(data) {
		that.logger.Warn("dropped response for slow connection", "action", action, "playerID", c.playerID)
	}
}
