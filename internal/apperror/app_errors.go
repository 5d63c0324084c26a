package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrGameNotFound    = errors.New("game not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrInvalidPosition = errors.New("invalid position")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameFull        = errors.New("game already has two players")
	ErrSelfJoin        = errors.New("cannot join your own game as the opponent")
	ErrAccessDenied    = errors.New("player is not part of this game")
)

// Reason codes delivered to clients over the live transport. Validation
// and authorization failures get a dedicated code; everything else is
// reported as an internal error.
const (
	CodeGameOver        = "game_over"
	CodeNotYourTurn     = "not_your_turn"
	CodeInvalidPosition = "invalid_position"
	CodePositionTaken   = "position_taken"
	CodeGameNotFound    = "game_not_found"
	CodeAccessDenied    = "access_denied"
	CodeInternal        = "internal_error"
)

// ReasonCode maps a domain error to its machine-checkable reason code.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrGameFinished):
		return CodeGameOver
	case errors.Is(err, ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, ErrInvalidPosition):
		return CodeInvalidPosition
	case errors.Is(err, ErrCellOccupied):
		return CodePositionTaken
	case errors.Is(err, ErrGameNotFound):
		return CodeGameNotFound
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrGameFull), errors.Is(err, ErrSelfJoin):
		return CodeAccessDenied
	default:
		return CodeInternal
	}
}
