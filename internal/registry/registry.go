package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/entity"
	"github.com/playforge/tictactoe-server/internal/monitor"
)

// Conn is a live client handle. Implementations must be safe for
// concurrent writes and should enforce their own delivery timeout so a
// stuck peer cannot stall a broadcast.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type gamePlayService interface {
	MakeTurn(ctx context.Context, gameID, playerID string, cell int) (*entity.Game, error)
	ConnectToGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
}

// room tracks the live connections of one game. mu guards only the
// handle set, so a broadcast never holds the game-wide critical section.
type room struct {
	mu      sync.RWMutex
	pruned  bool
	handles map[string]Conn // identity -> single live handle
}

// gameLock is one game's exclusive critical section plus the count of
// current holders and waiters; the entry is dropped once the count
// reaches zero.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// Registry owns the in-memory room table. It is constructed once per
// process and shared by every transport handler.
type Registry struct {
	logger   *slog.Logger
	gameplay gamePlayService
	metrics  *monitor.Metrics

	mu    sync.RWMutex
	rooms map[string]*room

	// gameLocks serialize every load→mutate→persist sequence per game:
	// move application and second-player binds alike. They are independent
	// of rooms so an operation without any live connection (the
	// single-player REST path) is still serialized against concurrent
	// submissions for the same game.
	lockMu    sync.Mutex
	gameLocks map[string]*gameLock
}

func New(logger *slog.Logger, gameplay gamePlayService, metrics *monitor.Metrics) *Registry {
	return &Registry{
		logger:    logger.With("component", "registry"),
		gameplay:  gameplay,
		metrics:   metrics,
		rooms:     make(map[string]*room),
		gameLocks: make(map[string]*gameLock),
	}
}

// Connect binds playerID to the game without registering a live handle:
// it runs the load→bind→persist sequence under the game's exclusive
// critical section, so two near-simultaneous second-player joins can
// never both claim the O seat. Any live room is notified with
// player_joined.
func (that *Registry) Connect(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	lock := that.lockGame(gameID)
	game, err := that.gameplay.ConnectToGame(ctx, gameID, playerID)
	that.unlockGame(gameID, lock)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to game: %w", err)
	}

	that.Broadcast(gameID, Event{
		Type:   EventPlayerJoined,
		GameID: gameID,
		Data:   ParticipantData{PlayerID: playerID},
	})

	return game, nil
}

// Join connects playerID to the game and registers conn in its room,
// returning the current state for initial synchronization. A second join
// of the same identity silently supersedes the previous handle. The
// joining handle receives a connected event.
func (that *Registry) Join(ctx context.Context, gameID, playerID string, conn Conn) (*entity.Game, error) {
	log := that.logger.With("method", "Join", "gameID", gameID, "playerID", playerID)

	game, err := that.Connect(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	previous := that.register(gameID, playerID, conn)

	if previous != nil && previous != conn {
		// reconnect: the old handle is superseded, not multiplexed
		if closeErr := previous.Close(); closeErr != nil {
			log.Debug("failed to close superseded connection", "error", closeErr)
		}
	} else if previous == nil {
		that.metrics.ConnectedClients.Inc()
	}

	if err = conn.WriteJSON(Event{Type: EventConnected, GameID: gameID, Data: game}); err != nil {
		log.Warn("failed to deliver initial state", "error", err)
	}

	log.Info("player joined room")

	return game, nil
}

// SubmitMove applies one move under the game's exclusive critical
// section, then fans the resulting state out to every handle in the
// room. Validation failures are delivered as an error event to the
// offending identity only.
func (that *Registry) SubmitMove(ctx context.Context, gameID, playerID string, cell int) (*entity.Game, error) {
	lock := that.lockGame(gameID)
	game, err := that.gameplay.MakeTurn(ctx, gameID, playerID, cell)
	that.unlockGame(gameID, lock)

	if err != nil {
		that.sendToIdentity(gameID, playerID, Event{
			Type:   EventError,
			GameID: gameID,
			Data:   ErrorData{Code: apperror.ReasonCode(err), Message: err.Error()},
		})

		return nil, err
	}

	that.metrics.MovesTotal.Inc()

	that.Broadcast(gameID, Event{Type: EventGameState, GameID: gameID, Data: game})

	if game.IsFinished() {
		that.Broadcast(gameID, Event{
			Type:   EventGameOver,
			GameID: gameID,
			Data:   GameOverData{Winner: game.Winner, Message: outcomeMessage(game)},
		})
	}

	return game, nil
}

// Leave drops conn from the room, notifies the remaining handles and
// discards the room once it is empty. A handle already superseded by a
// reconnect is ignored. The durable game state is unaffected.
func (that *Registry) Leave(gameID string, conn Conn) {
	log := that.logger.With("method", "Leave", "gameID", gameID)

	currentRoom := that.getRoom(gameID)
	if currentRoom == nil {
		return
	}

	departed := ""

	currentRoom.mu.Lock()
	for identity, handle := range currentRoom.handles {
		if handle == conn {
			delete(currentRoom.handles, identity)
			departed = identity
			break
		}
	}
	currentRoom.mu.Unlock()

	if departed == "" {
		return
	}

	that.metrics.ConnectedClients.Dec()
	log.Info("player left room", "playerID", departed)

	that.Broadcast(gameID, Event{
		Type:   EventPlayerLeft,
		GameID: gameID,
		Data:   ParticipantData{PlayerID: departed},
	})

	that.pruneIfEmpty(gameID)
}

// Broadcast delivers event to every handle in the room. A failing handle
// is evicted and closed; delivery to the others continues.
func (that *Registry) Broadcast(gameID string, event Event) {
	log := that.logger.With("method", "Broadcast", "gameID", gameID)

	currentRoom := that.getRoom(gameID)
	if currentRoom == nil {
		return
	}

	currentRoom.mu.RLock()
	recipients := make(map[string]Conn, len(currentRoom.handles))
	for identity, handle := range currentRoom.handles {
		recipients[identity] = handle
	}
	currentRoom.mu.RUnlock()

	evicted := 0

	for identity, handle := range recipients {
		if err := handle.WriteJSON(event); err == nil {
			continue
		}

		currentRoom.mu.Lock()
		if currentRoom.handles[identity] == handle {
			delete(currentRoom.handles, identity)
			that.metrics.ConnectedClients.Dec()
		}
		currentRoom.mu.Unlock()

		if closeErr := handle.Close(); closeErr != nil {
			log.Debug("failed to close evicted connection", "error", closeErr)
		}

		that.metrics.BroadcastFailures.Inc()
		evicted++
		log.Warn("evicted unreachable handle", "playerID", identity)
	}

	// evictions never come back through Leave, so an emptied room is
	// discarded here
	if evicted > 0 {
		that.pruneIfEmpty(gameID)
	}
}

// register inserts conn into the game's room and returns the handle it
// replaced, if any. It retries when it loses the race against a
// concurrent prune of the same room.
func (that *Registry) register(gameID, playerID string, conn Conn) Conn {
	for {
		currentRoom := that.getOrCreateRoom(gameID)

		currentRoom.mu.Lock()
		if currentRoom.pruned {
			currentRoom.mu.Unlock()
			continue
		}

		previous := currentRoom.handles[playerID]
		currentRoom.handles[playerID] = conn
		currentRoom.mu.Unlock()

		return previous
	}
}

func (that *Registry) getRoom(gameID string) *room {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.rooms[gameID]
}

func (that *Registry) getOrCreateRoom(gameID string) *room {
	that.mu.Lock()
	defer that.mu.Unlock()

	if existing, ok := that.rooms[gameID]; ok {
		return existing
	}

	created := &room{handles: make(map[string]Conn)}
	that.rooms[gameID] = created
	that.metrics.ActiveRooms.Inc()

	return created
}

func (that *Registry) pruneIfEmpty(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	currentRoom, ok := that.rooms[gameID]
	if !ok {
		return
	}

	currentRoom.mu.Lock()
	if len(currentRoom.handles) == 0 {
		currentRoom.pruned = true
		delete(that.rooms, gameID)
		that.metrics.ActiveRooms.Dec()
	}
	currentRoom.mu.Unlock()
}

// lockGame acquires the game's exclusive critical section, creating the
// lock entry on first use.
func (that *Registry) lockGame(gameID string) *gameLock {
	that.lockMu.Lock()
	lock, ok := that.gameLocks[gameID]
	if !ok {
		lock = &gameLock{}
		that.gameLocks[gameID] = lock
	}
	lock.refs++
	that.lockMu.Unlock()

	lock.mu.Lock()

	return lock
}

// unlockGame releases the critical section and drops the lock entry once
// nobody holds or awaits it, so the table only carries games with an
// operation in flight.
func (that *Registry) unlockGame(gameID string, lock *gameLock) {
	lock.mu.Unlock()

	that.lockMu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(that.gameLocks, gameID)
	}
	that.lockMu.Unlock()
}

func (that *Registry) sendToIdentity(gameID, playerID string, event Event) {
	currentRoom := that.getRoom(gameID)
	if currentRoom == nil {
		return
	}

	currentRoom.mu.RLock()
	handle := currentRoom.handles[playerID]
	currentRoom.mu.RUnlock()

	if handle == nil {
		return
	}

	if err := handle.WriteJSON(event); err != nil {
		that.logger.Debug("failed to deliver error event", "playerID", playerID, "error", err)
	}
}

func outcomeMessage(game *entity.Game) string {
	if game.Winner == entity.NoWinner {
		return "Game over! It's a tie!"
	}

	return fmt.Sprintf("Game over! Winner: %s", game.Winner)
}
