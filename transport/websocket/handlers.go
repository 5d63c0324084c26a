package websocket

import (
	"context"
	"strings"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/registry"
)

const (
	actionMakeMove = "make_move"
	actionGetState = "get_state"
	actionChat     = "chat_message"
)

// Message is a single client request on the live socket.
type Message struct {
	Type     string `json:"type"`
	Position *int   `json:"position,omitempty"`
	Message  string `json:"message,omitempty"`
}

// readMessages pumps client messages until the connection drops. A
// dropped connection triggers Leave but never aborts a move that is
// already being applied.
func (that *Server) readMessages(ctx context.Context, conn *safeConn, gameID, playerID string) {
	log := that.logger.With("method", "readMessages", "gameID", gameID, "playerID", playerID)

	defer func() {
		that.registry.Leave(gameID, conn)

		if err := conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}
	}()

	for {
		var msg Message
		if err := conn.conn.ReadJSON(&msg); err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		switch msg.Type {
		case actionMakeMove:
			that.handleMakeMove(ctx, conn, gameID, playerID, msg)
		case actionGetState:
			that.handleGetState(ctx, conn, gameID)
		case actionChat:
			that.handleChat(gameID, playerID, msg)
		default:
			log.Warn("unknown message type", "type", msg.Type)
		}
	}
}

func (that *Server) handleMakeMove(ctx context.Context, conn *safeConn, gameID, playerID string, msg Message) {
	log := that.logger.With("method", "handleMakeMove", "gameID", gameID)

	if msg.Position == nil {
		that.sendError(conn, gameID, apperror.CodeInvalidPosition, "position is required")
		return
	}

	// the registry delivers the rejection to this handle itself
	if _, err := that.registry.SubmitMove(ctx, gameID, playerID, *msg.Position); err != nil {
		log.Debug("move rejected", "error", err)
	}
}

func (that *Server) handleGetState(ctx context.Context, conn *safeConn, gameID string) {
	log := that.logger.With("method", "handleGetState", "gameID", gameID)

	game, err := that.games.GetGameByID(ctx, gameID)
	if err != nil {
		that.sendError(conn, gameID, apperror.ReasonCode(err), err.Error())
		return
	}

	event := registry.Event{Type: registry.EventGameState, GameID: gameID, Data: game}
	if err = conn.WriteJSON(event); err != nil {
		log.Warn("failed to send game state", "error", err)
	}
}

func (that *Server) handleChat(gameID, playerID string, msg Message) {
	content := strings.TrimSpace(msg.Message)
	if content == "" {
		return
	}

	that.registry.Broadcast(gameID, registry.Event{
		Type:   registry.EventChatMessage,
		GameID: gameID,
		Data:   registry.ChatData{PlayerID: playerID, Message: content},
	})
}

// rejectJoin reports a failed join to the handle and closes it.
func (that *Server) rejectJoin(conn *safeConn, gameID string, err error) {
	log := that.logger.With("method", "rejectJoin", "gameID", gameID)

	log.Warn("join rejected", "error", err)
	that.sendError(conn, gameID, apperror.ReasonCode(err), err.Error())

	if closeErr := conn.Close(); closeErr != nil {
		log.Debug("failed to close connection", "error", closeErr)
	}
}

func (that *Server) sendError(conn *safeConn, gameID, code, message string) {
	event := registry.Event{
		Type:   registry.EventError,
		GameID: gameID,
		Data:   registry.ErrorData{Code: code, Message: message},
	}

	if err := conn.WriteJSON(event); err != nil {
		that.logger.Debug("failed to send error event", "error", err)
	}
}
