package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/entity"
)

var errRedisDown = errors.New("redis down")

type mockGameService struct {
	mock.Mock
}

func (that *mockGameService) CreateGame(ctx context.Context, ownerID, mode string) (*entity.Game, error) {
	args := that.Called(ctx, ownerID, mode)
	game, _ := args.Get(0).(*entity.Game)

	return game, args.Error(1)
}

func (that *mockGameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)

	return game, args.Error(1)
}

func (that *mockGameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	return that.Called(ctx, game).Error(0)
}

func (that *mockGameService) ListPlayerGames(ctx context.Context, playerID string) ([]*entity.Game, error) {
	args := that.Called(ctx, playerID)
	games, _ := args.Get(0).([]*entity.Game)

	return games, args.Error(1)
}

func (that *mockGameService) DeleteGame(ctx context.Context, gameID, playerID string) error {
	return that.Called(ctx, gameID, playerID).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGamePlayService_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies the move and persists the updated game", func(t *testing.T) {
		// Given: a vs_player game with X to move
		stored := entity.NewGame("g1", entity.ModeVsPlayer, "alice")
		stored.PlayerOID = "bob"

		games := new(mockGameService)
		games.On("GetGameByID", ctx, "g1").Return(stored, nil).Once()
		games.On("UpdateGame", ctx, stored).Return(nil).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		// When: alice plays cell 4
		game, err := gamePlay.MakeTurn(ctx, "g1", "alice", 4)

		// Then: the saved game carries the mark and the flipped turn
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, game.Board[4])
		assert.Equal(t, entity.PlayerO, game.Turn)

		games.AssertExpectations(t)
	})

	t.Run("Rejected move is never persisted", func(t *testing.T) {
		// Given: a game where it is not bob's turn
		stored := entity.NewGame("g1", entity.ModeVsPlayer, "alice")
		stored.PlayerOID = "bob"

		games := new(mockGameService)
		games.On("GetGameByID", ctx, "g1").Return(stored, nil).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		// When: bob moves out of turn
		game, err := gamePlay.MakeTurn(ctx, "g1", "bob", 0)

		// Then: the rejection surfaces and UpdateGame is never called
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Nil(t, game)

		games.AssertNotCalled(t, "UpdateGame", mock.Anything, mock.Anything)
	})

	t.Run("Returns an error when the game cannot be loaded", func(t *testing.T) {
		games := new(mockGameService)
		games.On("GetGameByID", ctx, "missing").Return(nil, apperror.ErrGameNotFound).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		game, err := gamePlay.MakeTurn(ctx, "missing", "alice", 0)

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, game)
	})

	t.Run("A failed save surfaces and the move is not acknowledged", func(t *testing.T) {
		stored := entity.NewGame("g1", entity.ModeVsPlayer, "alice")
		stored.PlayerOID = "bob"

		games := new(mockGameService)
		games.On("GetGameByID", ctx, "g1").Return(stored, nil).Once()
		games.On("UpdateGame", ctx, stored).Return(errRedisDown).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		game, err := gamePlay.MakeTurn(ctx, "g1", "alice", 4)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGamePlayService_ConnectToGame(t *testing.T) {
	ctx := context.Background()

	t.Run("A bound participant reconnects without any write", func(t *testing.T) {
		// Given: alice is already bound to the game
		stored := entity.NewGame("g1", entity.ModeVsComputer, "alice")

		games := new(mockGameService)
		games.On("GetGameByID", ctx, "g1").Return(stored, nil).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		game, err := gamePlay.ConnectToGame(ctx, "g1", "alice")

		require.NoError(t, err)
		assert.Equal(t, stored, game)

		games.AssertNotCalled(t, "UpdateGame", mock.Anything, mock.Anything)
	})

	t.Run("Binds a newcomer to the open O slot and persists it", func(t *testing.T) {
		// Given: a vs_player game awaiting an opponent
		stored := entity.NewGame("g1", entity.ModeVsPlayer, "alice")

		games := new(mockGameService)
		games.On("GetGameByID", ctx, "g1").Return(stored, nil).Once()
		games.On("UpdateGame", ctx, stored).Return(nil).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		// When: bob connects
		game, err := gamePlay.ConnectToGame(ctx, "g1", "bob")

		// Then: bob holds the O slot in the persisted game
		require.NoError(t, err)
		assert.Equal(t, "bob", game.PlayerOID)

		games.AssertExpectations(t)
	})

	t.Run("Turns strangers away from a vs_computer game", func(t *testing.T) {
		stored := entity.NewGame("g1", entity.ModeVsComputer, "alice")

		games := new(mockGameService)
		games.On("GetGameByID", ctx, "g1").Return(stored, nil).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		game, err := gamePlay.ConnectToGame(ctx, "g1", "mallory")

		require.ErrorIs(t, err, apperror.ErrAccessDenied)
		assert.Nil(t, game)
	})

	t.Run("Turns strangers away from a full vs_player game", func(t *testing.T) {
		stored := entity.NewGame("g1", entity.ModeVsPlayer, "alice")
		stored.PlayerOID = "bob"

		games := new(mockGameService)
		games.On("GetGameByID", ctx, "g1").Return(stored, nil).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		game, err := gamePlay.ConnectToGame(ctx, "g1", "carol")

		require.ErrorIs(t, err, apperror.ErrAccessDenied)
		assert.Nil(t, game)
	})

	t.Run("A failed save on join surfaces to the caller", func(t *testing.T) {
		stored := entity.NewGame("g1", entity.ModeVsPlayer, "alice")

		games := new(mockGameService)
		games.On("GetGameByID", ctx, "g1").Return(stored, nil).Once()
		games.On("UpdateGame", ctx, stored).Return(errRedisDown).Once()

		gamePlay := NewGamePlayService(discardLogger(), games)

		game, err := gamePlay.ConnectToGame(ctx, "g1", "bob")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}
