package entity

import (
	"fmt"

	"github.com/playforge/tictactoe-server/internal/apperror"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	// NoWinner is the canonical "no winner" value: an empty string,
	// serialized as null in snapshots. Terminality is carried by the
	// game status alone.
	NoWinner = ""
)

// WinCombos are the 8 winning triples: 3 rows, 3 columns, 2 diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid stored row-major, left-to-right top-to-bottom.
// It has value semantics: ApplyMark returns a new board and never
// mutates the receiver.
type Board [9]string

// ApplyMark places mark on the given cell and returns the resulting board.
func (that Board) ApplyMark(cell int, mark string) (Board, error) {
	if cell < 0 || cell >= len(that) {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrInvalidPosition, cell)
	}

	if that[cell] != EmptyCell {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that[cell] = mark

	return that, nil
}

// HasWon reports whether mark occupies all three cells of any winning triple.
func (that Board) HasWon(mark string) bool {
	for _, combo := range WinCombos {
		if that[combo[0]] == mark && that[combo[1]] == mark && that[combo[2]] == mark {
			return true
		}
	}

	return false
}

// IsFull reports whether no cell is empty.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Encode renders the board as the 9-character snapshot form: one rune
// per cell, a space for an empty cell.
func (that Board) Encode() string {
	encoded := make([]byte, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			encoded[i] = ' '
			continue
		}
		encoded[i] = cell[0]
	}

	return string(encoded)
}

// ParseBoard restores a board from its 9-character snapshot form.
func ParseBoard(encoded string) (Board, error) {
	var board Board

	if len(encoded) != len(board) {
		return board, fmt.Errorf("board encoding must be %d characters, got %d", len(board), len(encoded))
	}

	for i, char := range []byte(encoded) {
		switch char {
		case ' ':
			board[i] = EmptyCell
		case 'X':
			board[i] = PlayerX
		case 'O':
			board[i] = PlayerO
		default:
			return Board{}, fmt.Errorf("unexpected board character %q at cell %d", char, i)
		}
	}

	return board, nil
}

// OtherMark returns the opposing mark.
func OtherMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}

	return PlayerX
}
