package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/entity"
)

var ErrUnknownGameMode = errors.New("unknown game mode")

type GameService interface {
	CreateGame(ctx context.Context, ownerID, mode string) (*entity.Game, error)
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	ListPlayerGames(ctx context.Context, playerID string) ([]*entity.Game, error)
	DeleteGame(ctx context.Context, gameID, playerID string) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	ListByPlayerID(ctx context.Context, playerID string) ([]*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameService struct {
	gameRepo gameRepo
}

func NewGameService(gameRepo gameRepo) GameService {
	return &gameService{
		gameRepo: gameRepo,
	}
}

func (that *gameService) CreateGame(ctx context.Context, ownerID, mode string) (*entity.Game, error) {
	if mode != entity.ModeVsComputer && mode != entity.ModeVsPlayer {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameMode, mode)
	}

	game := entity.NewGame(uuid.NewString(), mode, ownerID)

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return game, nil
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}

	return game, nil
}

func (that *gameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gameService) ListPlayerGames(ctx context.Context, playerID string) ([]*entity.Game, error) {
	games, err := that.gameRepo.ListByPlayerID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

// DeleteGame removes a game on behalf of playerID; only a bound
// participant may delete it.
func (that *gameService) DeleteGame(ctx context.Context, gameID, playerID string) error {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to retrieve game from storage: %w", err)
	}

	if !game.HasPlayer(playerID) {
		return apperror.ErrAccessDenied
	}

	if err = that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}
