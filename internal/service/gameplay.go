package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/entity"
	"github.com/playforge/tictactoe-server/internal/tictactoe"
)

type GamePlayService interface {
	MakeTurn(ctx context.Context, gameID, playerID string, cell int) (*entity.Game, error)
	ConnectToGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
}

type gamePlayService struct {
	logger *slog.Logger

	gameService GameService
}

func NewGamePlayService(logger *slog.Logger, gameService GameService) GamePlayService {
	return &gamePlayService{
		logger:      logger,
		gameService: gameService,
	}
}

// MakeTurn loads the game, applies the move (including the engine reply
// for vs_computer games) and persists the result. The stored snapshot is
// authoritative: when the save fails the mutated copy is discarded and
// the move never happened.
func (that *gamePlayService) MakeTurn(ctx context.Context, gameID, playerID string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "gameID", gameID)

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = tictactoe.ApplyMove(game, playerID, cell); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if game.IsFinished() {
		log.Info("game finished", "status", game.Status, "winner", game.Winner)
	}

	return game, nil
}

// ConnectToGame verifies that playerID may participate in the game and,
// for a vs_player game with an open O slot, binds the identity to O.
func (that *gamePlayService) ConnectToGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	log := that.logger.With("method", "ConnectToGame", "gameID", gameID)

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if game.HasPlayer(playerID) {
		return game, nil
	}

	if game.IsVsComputer() || !game.AwaitsOpponent() {
		return nil, apperror.ErrAccessDenied
	}

	if err = tictactoe.BindSecondPlayer(game, playerID); err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	log.Info("second player joined", "playerID", playerID)

	return game, nil
}
