package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

type memEntry struct {
	game      entity.Game
	expiresAt time.Time
}

type memGame struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	games map[string]memEntry
}

// NewMemoryGameRepository keeps games in process memory. Games are copied in
// and out so callers never share history slices with the store.
// Like the redis repository, a game expires ttl after its last write; ttl <= 0 keeps games forever.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return newMemGame(ttl, time.Now)
}

func newMemGame(ttl time.Duration, now func() time.Time) *memGame {
	return &memGame{
		ttl:   ttl,
		now:   now,
		games: make(map[string]memEntry),
	}
}

func (that *memGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()
	that.sweep(now)

	entry := memEntry{game: cloneGame(game)}
	if that.ttl > 0 {
		entry.expiresAt = now.Add(that.ttl)
	}
	that.games[game.ID] = entry

	return nil
}

func (that *memGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	if !ok || entry.expired(that.now()) {
		return &entity.Game{}, ErrGameNotFound
	}

	clone := cloneGame(&entry.game)

	return &clone, nil
}

func (that *memGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.games[id]
	if !ok {
		return ErrGameNotFound
	}

	delete(that.games, id)

	if entry.expired(that.now()) {
		return ErrGameNotFound
	}

	return nil
}

// sweep drops expired games. Callers hold the write lock.
func (that *memGame) sweep(now time.Time) {
	for id, entry := range that.games {
		if entry.expired(now) {
			delete(that.games, id)
		}
	}
}

func (that *memEntry) expired(now time.Time) bool {
	return !that.expiresAt.IsZero() && !now.Before(that.expiresAt)
}

func cloneGame(game *entity.Game) entity.Game {
	clone := *game
	clone.History = append([]entity.Snapshot(nil), game.History...)

	return clone
}
