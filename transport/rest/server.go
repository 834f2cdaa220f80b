package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - wires the REST routes of the service.
func NewRouter(logger *slog.Logger, handlers *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/ping", handlers.Ping)

	router.POST("/players", handlers.CreatePlayer)
	router.GET("/players/:id", handlers.GetPlayer)

	router.POST("/rooms", handlers.CreateRoom)
	router.GET("/rooms", handlers.ListRooms)
	router.GET("/rooms/:id", handlers.GetRoom)
	router.GET("/rooms/:id/rounds", handlers.ListRounds)
	router.DELETE("/rooms/:id", handlers.CloseRoom)

	return router
}

// Start - serves handler on port until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	log := logger.With("component", "rest")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("request served",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
