package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/entity"
)

var (
	errMissingToken       = errors.New("missing or malformed authorization header")
	errInvalidCredentials = errors.New("invalid credentials")
)

type authService interface {
	GenerateToken(playerID string) (string, error)
	ParseToken(tokenString string) (string, error)
}

type playerService interface {
	CreatePlayer(ctx context.Context, name string) (*entity.Player, error)
}

type gameService interface {
	CreateGame(ctx context.Context, ownerID, mode string) (*entity.Game, error)
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	ListPlayerGames(ctx context.Context, playerID string) ([]*entity.Game, error)
	DeleteGame(ctx context.Context, gameID, playerID string) error
}

// sessionGateway is the session registry: REST moves and joins go
// through it so they share the per-game critical section with
// live-socket operations and any connected room still receives the
// broadcast.
type sessionGateway interface {
	SubmitMove(ctx context.Context, gameID, playerID string, cell int) (*entity.Game, error)
	Connect(ctx context.Context, gameID, playerID string) (*entity.Game, error)
}

type Handlers struct {
	logger *slog.Logger

	auth     authService
	players  playerService
	games    gameService
	sessions sessionGateway
}

func NewHandlers(logger *slog.Logger, auth authService, players playerService, games gameService, sessions sessionGateway) *Handlers {
	return &Handlers{
		logger:   logger.With("component", "rest-handlers"),
		auth:     auth,
		players:  players,
		games:    games,
		sessions: sessions,
	}
}

type guestLoginRequest struct {
	Name string `json:"name"`
}

type guestLoginResponse struct {
	Token  string         `json:"token"`
	Player *entity.Player `json:"player"`
}

type createGameRequest struct {
	Mode string `json:"mode"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (that *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// GuestLogin creates a fresh player and issues a token bound to it.
func (that *Handlers) GuestLogin(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GuestLogin")

	var req guestLoginRequest
	if r.Body != nil {
		// an empty body means an anonymous guest
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	player, err := that.players.CreatePlayer(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		log.Error("failed to create player", "error", err)
		that.writeError(w, err)
		return
	}

	token, err := that.auth.GenerateToken(player.ID)
	if err != nil {
		log.Error("failed to generate token", "error", err)
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, guestLoginResponse{Token: token, Player: player})
}

func (that *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "CreateGame")

	playerID, err := that.authenticate(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	req := createGameRequest{Mode: entity.ModeVsComputer}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	game, err := that.games.CreateGame(r.Context(), playerID, req.Mode)
	if err != nil {
		log.Error("failed to create game", "error", err)
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	playerID, err := that.authenticate(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.games.GetGameByID(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	if !game.HasPlayer(playerID) && !game.AwaitsOpponent() {
		that.writeError(w, apperror.ErrAccessDenied)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "MakeMove")

	playerID, err := that.authenticate(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	// reject malformed positions before they reach the state machine
	position, err := strconv.Atoi(r.PathValue("position"))
	if err != nil {
		that.writeError(w, apperror.ErrInvalidPosition)
		return
	}

	game, err := that.sessions.SubmitMove(r.Context(), r.PathValue("id"), playerID, position)
	if err != nil {
		log.Debug("move rejected", "gameID", r.PathValue("id"), "error", err)
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

// JoinGame claims the open O seat of a vs_player game for the caller.
// The bind runs through the session registry so it shares the per-game
// critical section with live-socket joins and the room hears about it.
func (that *Handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "JoinGame")

	playerID, err := that.authenticate(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.sessions.Connect(r.Context(), r.PathValue("id"), playerID)
	if err != nil {
		log.Debug("join rejected", "gameID", r.PathValue("id"), "error", err)
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	playerID, err := that.authenticate(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	games, err := that.games.ListPlayerGames(r.Context(), playerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, games)
}

func (that *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	playerID, err := that.authenticate(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if err = that.games.DeleteGame(r.Context(), r.PathValue("id"), playerID); err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]string{"message": "game deleted"})
}

// authenticate extracts the verified player ID from the bearer token.
func (that *Handlers) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errMissingToken
	}

	playerID, err := that.auth.ParseToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errInvalidCredentials, err)
	}

	return playerID, nil
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrGameNotFound), errors.Is(err, apperror.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrAccessDenied),
		errors.Is(err, apperror.ErrGameFull),
		errors.Is(err, apperror.ErrSelfJoin):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrInvalidPosition),
		errors.Is(err, apperror.ErrCellOccupied):
		status = http.StatusBadRequest
	case errors.Is(err, errMissingToken), errors.Is(err, errInvalidCredentials):
		status = http.StatusUnauthorized
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error(), Code: apperror.ReasonCode(err)})
}
