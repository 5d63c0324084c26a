package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playforge/tictactoe-server/internal/apperror"
	"github.com/playforge/tictactoe-server/internal/entity"
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	ListByPlayerID(ctx context.Context, playerID string) ([]*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// gameSnapshot is the durable form of a game: the board as a 9-character
// string (space for an empty cell), a nullable winner, and a terminal flag.
type gameSnapshot struct {
	ID       string  `json:"id"`
	Board    string  `json:"board"`
	Turn     string  `json:"player_turn"`
	Winner   *string `json:"winner"`
	Finished bool    `json:"is_finished"`
	Mode     string  `json:"mode"`
	PlayerX  string  `json:"player_x"`
	PlayerO  *string `json:"player_o"`
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	snapshotJSON, err := json.Marshal(snapshotFromGame(game))
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(game.ID), snapshotJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	for _, playerID := range []string{game.PlayerXID, game.PlayerOID} {
		if playerID == "" {
			continue
		}

		if err = that.client.SAdd(ctx, playerGamesKey(playerID), game.ID).Err(); err != nil {
			return fmt.Errorf("failed to index game for player: %w", err)
		}
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var snapshot gameSnapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return gameFromSnapshot(&snapshot)
}

func (that *dbGame) ListByPlayerID(ctx context.Context, playerID string) ([]*entity.Game, error) {
	ids, err := that.client.SMembers(ctx, playerGamesKey(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list games for player: %w", err)
	}

	games := make([]*entity.Game, 0, len(ids))
	for _, id := range ids {
		game, err := that.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrGameNotFound) {
			// stale index entry, drop it
			that.client.SRem(ctx, playerGamesKey(playerID), id)
			continue
		}
		if err != nil {
			return nil, err
		}

		games = append(games, game)
	}

	return games, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	game, err := that.GetByID(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrGameNotFound
	}

	for _, playerID := range []string{game.PlayerXID, game.PlayerOID} {
		if playerID == "" {
			continue
		}

		if err = that.client.SRem(ctx, playerGamesKey(playerID), id).Err(); err != nil {
			return fmt.Errorf("failed to unindex game for player: %w", err)
		}
	}

	return nil
}

func gameKey(id string) string {
	return "game:" + id
}

func playerGamesKey(playerID string) string {
	return "player:" + playerID + ":games"
}

func snapshotFromGame(game *entity.Game) *gameSnapshot {
	snapshot := &gameSnapshot{
		ID:       game.ID,
		Board:    game.Board.Encode(),
		Turn:     game.Turn,
		Finished: game.IsFinished(),
		Mode:     game.Mode,
		PlayerX:  game.PlayerXID,
	}

	if game.Winner != entity.NoWinner {
		snapshot.Winner = &game.Winner
	}

	if game.PlayerOID != "" {
		snapshot.PlayerO = &game.PlayerOID
	}

	return snapshot
}

func gameFromSnapshot(snapshot *gameSnapshot) (*entity.Game, error) {
	board, err := entity.ParseBoard(snapshot.Board)
	if err != nil {
		return nil, fmt.Errorf("corrupt game snapshot: %w", err)
	}

	game := &entity.Game{
		ID:        snapshot.ID,
		Board:     board,
		Turn:      snapshot.Turn,
		Status:    entity.StatusInProgress,
		Mode:      snapshot.Mode,
		PlayerXID: snapshot.PlayerX,
	}

	if snapshot.Winner != nil {
		game.Winner = *snapshot.Winner
	}

	if snapshot.PlayerO != nil {
		game.PlayerOID = *snapshot.PlayerO
	}

	if snapshot.Finished {
		if game.Winner != entity.NoWinner {
			game.Status = entity.StatusWon
		} else {
			game.Status = entity.StatusDrawn
		}
	}

	return game, nil
}
