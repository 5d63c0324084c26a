package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/playforge/tictactoe-server/internal/monitor"
)

type Server struct {
	logger   *slog.Logger
	handlers *Handlers
	metrics  *monitor.Metrics
}

func New(logger *slog.Logger, auth authService, players playerService, games gameService, sessions sessionGateway, metrics *monitor.Metrics) *Server {
	return &Server{
		logger:   logger.With("component", "rest"),
		handlers: NewHandlers(logger, auth, players, games, sessions),
		metrics:  metrics,
	}
}

func (that *Server) Start(port string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", that.handlers.Ping)
	mux.Handle("GET /metrics", that.metrics.Handler())

	mux.HandleFunc("POST /auth/guest", that.handlers.GuestLogin)

	mux.HandleFunc("POST /games", that.handlers.CreateGame)
	mux.HandleFunc("GET /games", that.handlers.ListGames)
	mux.HandleFunc("GET /games/{id}", that.handlers.GetGame)
	mux.HandleFunc("POST /games/{id}/join", that.handlers.JoinGame)
	mux.HandleFunc("POST /games/{id}/move/{position}", that.handlers.MakeMove)
	mux.HandleFunc("DELETE /games/{id}", that.handlers.DeleteGame)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
