package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/hangman-backend/internal/config"
	"github.com/rocketscienceinc/hangman-backend/internal/hangman"
	"github.com/rocketscienceinc/hangman-backend/internal/notify"
	"github.com/rocketscienceinc/hangman-backend/internal/repository"
	"github.com/rocketscienceinc/hangman-backend/internal/repository/storage"
	"github.com/rocketscienceinc/hangman-backend/internal/room"
	"github.com/rocketscienceinc/hangman-backend/internal/service"
	"github.com/rocketscienceinc/hangman-backend/internal/usecase"
	"github.com/rocketscienceinc/hangman-backend/transport/rest"
	"github.com/rocketscienceinc/hangman-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	archiveStorage, err := storage.NewSQLite(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = archiveStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = archiveStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage)
	roomRepo := repository.NewRoomRepository(redisStorage)
	roundArchive := repository.NewRoundArchive(archiveStorage.Connection)

	playerService := service.NewPlayerService(playerRepo, conf.Game.MaxNameLength)
	journal := service.NewJournal(logger, roomRepo, roundArchive)

	engine, err := hangman.NewEngine(conf.Game.StartingHealth, conf.Game.NearMissDistance)
	if err != nil {
		return fmt.Errorf("could not build round engine: %w", err)
	}

	hub := websocket.NewHub(logger)
	publisher := notify.NewPublisher(redisStorage)

	registry, err := room.NewRegistry(logger, room.Options{
		Engine:        engine,
		Persister:     journal,
		Broadcaster:   notify.NewFanout(logger, hub, publisher),
		Players:       playerService,
		InboxSize:     conf.Game.RoomInboxSize,
		MaxNameLength: conf.Game.MaxNameLength,
	})
	if err != nil {
		return fmt.Errorf("could not build room registry: %w", err)
	}
	defer registry.Close()

	roomManager := usecase.NewRoomManager(logger, registry, roomRepo, roundArchive)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(logger, rest.NewHandlers(logger, playerService, roomManager))
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, hub, roomManager, playerService, websocket.Limits{
			GuessRate:  conf.Game.GuessRate,
			GuessBurst: conf.Game.GuessBurst,
		})
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
