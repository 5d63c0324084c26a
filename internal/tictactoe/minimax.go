package tictactoe

import "github.com/playforge/tictactoe-server/internal/entity"

// Terminal values of the zero-sum evaluation: O is the maximizing side,
// X the minimizing side.
const (
	scoreWinO = 1
	scoreWinX = -1
	scoreDraw = 0
)

// ChooseMove exhaustively searches the game tree and returns the optimal
// cell for mark, scanning candidates in board order so ties break toward
// the lowest index. It returns false on a full or already-won board.
func ChooseMove(board entity.Board, mark string) (int, bool) {
	if board.HasWon(entity.PlayerX) || board.HasWon(entity.PlayerO) || board.IsFull() {
		return 0, false
	}

	bestCell := -1
	bestScore := 0

	for cell := range board {
		if board[cell] != entity.EmptyCell {
			continue
		}

		board[cell] = mark
		score := minimax(board, entity.OtherMark(mark))
		board[cell] = entity.EmptyCell

		if bestCell == -1 || better(mark, score, bestScore) {
			bestCell = cell
			bestScore = score
		}
	}

	return bestCell, true
}

// minimax evaluates the position with toMove to play. The board is a
// value, so each call mutates its own copy; cells are restored after
// recursing to keep the scan of the current frame intact.
func minimax(board entity.Board, toMove string) int {
	switch {
	case board.HasWon(entity.PlayerO):
		return scoreWinO
	case board.HasWon(entity.PlayerX):
		return scoreWinX
	case board.IsFull():
		return scoreDraw
	}

	best := 0
	first := true

	for cell := range board {
		if board[cell] != entity.EmptyCell {
			continue
		}

		board[cell] = toMove
		score := minimax(board, entity.OtherMark(toMove))
		board[cell] = entity.EmptyCell

		if first || better(toMove, score, best) {
			best = score
			first = false
		}
	}

	return best
}

// better reports whether score improves on best from the perspective of mark.
func better(mark string, score, best int) bool {
	if mark == entity.PlayerO {
		return score > best
	}

	return score < best
}
