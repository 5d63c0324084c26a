package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/entity"
	"github.com/playforge/tictactoe-server/testing/suite"
)

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a fresh vs_player game
	game := entity.NewGame("g123", entity.ModeVsPlayer, "alice")

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and the game is stored
	require.NoError(t, err)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_RoundTrip", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored mid-game snapshot with a bound opponent
		game := entity.NewGame("g123", entity.ModeVsPlayer, "alice")
		game.PlayerOID = "bob"
		game.Board = entity.Board{
			entity.PlayerX, entity.EmptyCell, entity.EmptyCell,
			entity.EmptyCell, entity.PlayerO, entity.EmptyCell,
			entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
		}
		game.Turn = entity.PlayerX

		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: loading it back
		loaded, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the snapshot round-trips losslessly
		require.NoError(t, err)
		require.Equal(t, game, loaded)
	})

	t.Run("GetByID_TerminalGame", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored won game
		game := entity.NewGame("g456", entity.ModeVsComputer, "alice")
		game.Board = entity.Board{
			entity.PlayerX, entity.PlayerX, entity.PlayerX,
			entity.PlayerO, entity.PlayerO, entity.EmptyCell,
			entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
		}
		game.Status = entity.StatusWon
		game.Winner = entity.PlayerX
		game.Turn = ""

		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: loading it back
		loaded, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the terminal status and winner are reconstructed
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWon, loaded.Status)
		assert.Equal(t, entity.PlayerX, loaded.Winner)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: GetByID is called with a non-existent ID
		_, err := gameRepo.GetByID(ctx, "9999999")

		// Then: the not-found error is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameRepository_ListByPlayerID(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: two games for alice and one for bob
	first := entity.NewGame("g1", entity.ModeVsComputer, "alice")
	second := entity.NewGame("g2", entity.ModeVsPlayer, "alice")
	other := entity.NewGame("g3", entity.ModeVsComputer, "bob")

	require.NoError(t, gameRepo.CreateOrUpdate(ctx, first))
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, second))
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, other))

	// When: listing alice's games
	games, err := gameRepo.ListByPlayerID(ctx, "alice")

	// Then: exactly her two games come back
	require.NoError(t, err)
	require.Len(t, games, 2)

	ids := []string{games[0].ID, games[1].ID}
	assert.ElementsMatch(t, []string{"g1", "g2"}, ids)
}

func TestGameRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game
		game := entity.NewGame("g123", entity.ModeVsComputer, "alice")
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: DeleteByID is called
		err := gameRepo.DeleteByID(ctx, game.ID)

		// Then: the game and its index entry are gone
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)

		games, err := gameRepo.ListByPlayerID(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: DeleteByID is called with a non-existent ID
		err := gameRepo.DeleteByID(ctx, "9999999")

		// Then: the not-found error is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
