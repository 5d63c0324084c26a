package tictactoe

import (
	"errors"
	"fmt"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/entity"
)

var ErrNoMoveAvailable = errors.New("no move available on a terminal board")

// ApplyMove is the single transition of the game state machine. It
// validates the move for the acting identity, places the mark, and in
// vs_computer mode immediately plays the engine reply so that callers
// never observe the intermediate one-mark state. On error the game is
// left untouched.
func ApplyMove(game *entity.Game, playerID string, cell int) error {
	if err := validateMove(game, playerID, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	board, err := game.Board.ApplyMark(cell, game.Turn)
	if err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	game.Board = board
	settleTurn(game)

	if game.IsFinished() || !game.IsVsComputer() {
		return nil
	}

	return applyEngineReply(game)
}

// validateMove checks the preconditions in their fixed order: terminal
// status first, then position range, then occupancy, then turn ownership.
func validateMove(game *entity.Game, playerID string, cell int) error {
	if game.IsFinished() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(game.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidPosition, cell)
	}

	if game.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	if game.IsVsComputer() {
		// the engine's mark never accepts external moves
		if game.Turn != entity.PlayerX || playerID != game.PlayerXID {
			return apperror.ErrNotYourTurn
		}

		return nil
	}

	if game.IdentityOf(game.Turn) != playerID {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// applyEngineReply plays the optimal O move after a human move in a
// vs_computer game.
func applyEngineReply(game *entity.Game) error {
	cell, ok := ChooseMove(game.Board, entity.PlayerO)
	if !ok {
		return ErrNoMoveAvailable
	}

	board, err := game.Board.ApplyMark(cell, entity.PlayerO)
	if err != nil {
		return fmt.Errorf("engine move: %w", err)
	}

	game.Board = board
	settleTurn(game)

	return nil
}

// settleTurn evaluates the board after a placed mark: it either finishes
// the game or flips the turn to the other mark.
func settleTurn(game *entity.Game) {
	mark := game.Turn

	switch {
	case game.Board.HasWon(mark):
		game.Status = entity.StatusWon
		game.Winner = mark
		game.Turn = ""
	case game.Board.IsFull():
		game.Status = entity.StatusDrawn
		game.Winner = entity.NoWinner
		game.Turn = ""
	default:
		game.Turn = entity.OtherMark(mark)
	}
}

// BindSecondPlayer attaches playerID to the O slot of a vs_player game.
// It does not touch the board or the turn.
func BindSecondPlayer(game *entity.Game, playerID string) error {
	if game.IsVsComputer() || game.PlayerOID != "" {
		return apperror.ErrGameFull
	}

	if playerID == game.PlayerXID {
		return apperror.ErrSelfJoin
	}

	game.PlayerOID = playerID

	return nil
}
