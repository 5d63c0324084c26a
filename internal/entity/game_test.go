package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	t.Run("Starts in progress with an empty board and X to move", func(t *testing.T) {
		// Given/When: a fresh vs_player game
		game := NewGame("g1", ModeVsPlayer, "alice")

		// Then: initial state per the game lifecycle
		assert.Equal(t, StatusInProgress, game.Status)
		assert.Equal(t, PlayerX, game.Turn)
		assert.Equal(t, Board{}, game.Board)
		assert.Equal(t, "alice", game.PlayerXID)
		assert.Empty(t, game.PlayerOID)
		assert.Equal(t, NoWinner, game.Winner)
	})
}

func TestGame_IsFinished(t *testing.T) {
	t.Run("Won and drawn are terminal, in progress is not", func(t *testing.T) {
		assert.True(t, (&Game{Status: StatusWon}).IsFinished())
		assert.True(t, (&Game{Status: StatusDrawn}).IsFinished())
		assert.False(t, (&Game{Status: StatusInProgress}).IsFinished())
	})
}

func TestGame_MarkOf(t *testing.T) {
	game := &Game{Mode: ModeVsPlayer, PlayerXID: "alice", PlayerOID: "bob"}

	t.Run("Returns the mark bound to a participant", func(t *testing.T) {
		mark, ok := game.MarkOf("alice")
		require.True(t, ok)
		assert.Equal(t, PlayerX, mark)

		mark, ok = game.MarkOf("bob")
		require.True(t, ok)
		assert.Equal(t, PlayerO, mark)
	})

	t.Run("Rejects an unknown identity", func(t *testing.T) {
		_, ok := game.MarkOf("mallory")
		assert.False(t, ok)
	})

	t.Run("An empty identity never matches an unbound slot", func(t *testing.T) {
		waiting := &Game{Mode: ModeVsPlayer, PlayerXID: "alice"}

		_, ok := waiting.MarkOf("")
		assert.False(t, ok)
	})
}

func TestGame_AwaitsOpponent(t *testing.T) {
	t.Run("True only for a vs_player game with an unbound O slot", func(t *testing.T) {
		assert.True(t, (&Game{Mode: ModeVsPlayer, PlayerXID: "alice"}).AwaitsOpponent())
		assert.False(t, (&Game{Mode: ModeVsPlayer, PlayerXID: "alice", PlayerOID: "bob"}).AwaitsOpponent())
		assert.False(t, (&Game{Mode: ModeVsComputer, PlayerXID: "alice"}).AwaitsOpponent())
	})
}

func TestOtherMark(t *testing.T) {
	assert.Equal(t, PlayerO, OtherMark(PlayerX))
	assert.Equal(t, PlayerX, OtherMark(PlayerO))
}
