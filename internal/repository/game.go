package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tittactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tittactoe-client/internal/entity"
)

// GameRepository holds the games decoded from the last successful fetch.
// Nothing here outlives the process: the contract is the source of truth and
// the store is replaced wholesale on every refresh.
type GameRepository interface {
	Replace(ctx context.Context, games entity.Games) error
	GetByID(ctx context.Context, id entity.GameID) (*entity.Game, error)
	All(ctx context.Context) (entity.Games, error)
}

type memoryGames struct {
	mu    sync.RWMutex
	games entity.Games
}

func NewGameRepository() GameRepository {
	return &memoryGames{
		games: entity.Games{},
	}
}

func (that *memoryGames) Replace(_ context.Context, games entity.Games) error {
	snapshot := make(entity.Games, len(games))
	for id, game := range games {
		snapshot[id] = game
	}

	that.mu.Lock()
	that.games = snapshot
	that.mu.Unlock()

	return nil
}

func (that *memoryGames) GetByID(_ context.Context, id entity.GameID) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return &game, nil
}

func (that *memoryGames) All(_ context.Context) (entity.Games, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	games := make(entity.Games, len(that.games))
	for id, game := range that.games {
		games[id] = game
	}

	return games, nil
}
