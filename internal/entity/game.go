package entity

const (
	StatusInProgress = "in_progress"
	StatusWon        = "won"
	StatusDrawn      = "drawn"
)

const (
	ModeVsComputer = "vs_computer"
	ModeVsPlayer   = "vs_player"
)

// Game is the authoritative state of a single match. In vs_computer mode
// the owner always plays X and the engine plays O; in vs_player mode the
// creator plays X and the O slot stays unbound until a second player joins.
type Game struct {
	ID        string `json:"id"`
	Board     Board  `json:"board"`
	Turn      string `json:"player_turn,omitempty"`
	Winner    string `json:"winner,omitempty"`
	Status    string `json:"status"`
	Mode      string `json:"mode"`
	PlayerXID string `json:"player_x,omitempty"`
	PlayerOID string `json:"player_o,omitempty"`
}

func NewGame(id, mode, ownerID string) *Game {
	return &Game{
		ID:        id,
		Turn:      PlayerX,
		Status:    StatusInProgress,
		Mode:      mode,
		PlayerXID: ownerID,
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDrawn
}

func (that *Game) IsVsComputer() bool {
	return that.Mode == ModeVsComputer
}

// MarkOf returns the mark bound to the given identity, or false when the
// identity is not part of this game.
func (that *Game) MarkOf(playerID string) (string, bool) {
	switch {
	case playerID != "" && playerID == that.PlayerXID:
		return PlayerX, true
	case playerID != "" && playerID == that.PlayerOID:
		return PlayerO, true
	default:
		return "", false
	}
}

// IdentityOf returns the identity bound to the given mark. In vs_computer
// mode the O mark belongs to the engine and has no identity.
func (that *Game) IdentityOf(mark string) string {
	if mark == PlayerX {
		return that.PlayerXID
	}

	return that.PlayerOID
}

func (that *Game) HasPlayer(playerID string) bool {
	_, ok := that.MarkOf(playerID)
	return ok
}

// AwaitsOpponent reports whether a vs_player game still has an unbound O slot.
func (that *Game) AwaitsOpponent() bool {
	return that.Mode == ModeVsPlayer && that.PlayerOID == ""
}
