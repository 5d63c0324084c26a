package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playforge/tictactoe-server/internal/entity"
	"github.com/playforge/tictactoe-server/internal/registry"
)

type authService interface {
	ParseToken(tokenString string) (string, error)
}

type gameService interface {
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
}

type sessionRegistry interface {
	Join(ctx context.Context, gameID, playerID string, conn registry.Conn) (*entity.Game, error)
	SubmitMove(ctx context.Context, gameID, playerID string, cell int) (*entity.Game, error)
	Leave(gameID string, conn registry.Conn)
	Broadcast(gameID string, event registry.Event)
}

type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	auth     authService
	games    gameService
	registry sessionRegistry
}

func New(logger *slog.Logger, auth authService, games gameService, sessions sessionRegistry) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origin policy is enforced by the reverse proxy
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		auth:     auth,
		games:    games,
		registry: sessions,
	}
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{gameID}", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	// no ReadTimeout here: it would leave a stale deadline on the
	// hijacked connection and kill long-lived sockets
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleConnection authenticates the caller, joins the game room and
// pumps messages until the peer disconnects.
func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	gameID := r.PathValue("gameID")

	playerID, err := that.auth.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		log.Warn("rejected connection with bad token", "error", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	rawConn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newSafeConn(rawConn)

	if _, err = that.registry.Join(ctx, gameID, playerID, conn); err != nil {
		that.rejectJoin(conn, gameID, err)
		return
	}

	log.Info("WebSocket connection established", "gameID", gameID, "playerID", playerID)

	that.readMessages(ctx, conn, gameID, playerID)
}
