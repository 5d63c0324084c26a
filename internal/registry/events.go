package registry

// Event types carried over the live transport.
const (
	EventConnected    = "connected"
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventGameState    = "game_state"
	EventGameOver     = "game_over"
	EventChatMessage  = "chat_message"
	EventError        = "error"
)

// Event is a single transport-facing message. Data depends on the type.
type Event struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data,omitempty"`
}

type ParticipantData struct {
	PlayerID string `json:"player_id"`
}

type GameOverData struct {
	Winner  string `json:"winner,omitempty"`
	Message string `json:"message"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ChatData struct {
	PlayerID string `json:"player_id"`
	Message  string `json:"message"`
}
