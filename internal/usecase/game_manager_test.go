package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestGameManager_GetOrCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a started game when none is stored", func(t *testing.T) {
		// Given: an empty repository
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "s1").Return((*entity.Game)(nil), repository.ErrGameNotFound).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		manager := NewGameManager(newTestLogger(), repo)

		// When: the session asks for its game
		game, err := manager.GetOrCreateGame(ctx, "s1")

		// Then: a new game with one empty snapshot is stored
		require.NoError(t, err)
		assert.Equal(t, entity.NewGame("s1"), game)
		repo.AssertExpectations(t)
	})

	t.Run("Returns the stored game", func(t *testing.T) {
		stored := &entity.Game{ID: "s1", History: []entity.Snapshot{{}, {4: entity.MarkerA}}, CurrentMove: 1}
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "s1").Return(stored, nil).Once()
		manager := NewGameManager(newTestLogger(), repo)

		game, err := manager.GetOrCreateGame(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, stored, game)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Returns repository failures", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "s1").Return((*entity.Game)(nil), errRedisDown).Once()
		manager := NewGameManager(newTestLogger(), repo)

		game, err := manager.GetOrCreateGame(ctx, "s1")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves a legal move", func(t *testing.T) {
		// Given: a fresh game
		manager := NewGameManager(newTestLogger(), repository.NewMemoryGameRepository(time.Hour))

		// When: marker A plays the center
		game, err := manager.Play(ctx, "s1", 4)

		// Then: the move is stored
		require.NoError(t, err)
		assert.Len(t, game.History, 2)

		stored, err := manager.GetOrCreateGame(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, entity.MarkerA, stored.History[1][4])
	})

	t.Run("Does not save an ignored click", func(t *testing.T) {
		// Given: a game where cell 4 is taken
		stored := &entity.Game{ID: "s1", History: []entity.Snapshot{{}, {4: entity.MarkerA}}, CurrentMove: 1}
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "s1").Return(stored, nil).Once()
		manager := NewGameManager(newTestLogger(), repo)

		// When: cell 4 is clicked again
		game, err := manager.Play(ctx, "s1", 4)

		// Then: nothing is written
		require.NoError(t, err)
		assert.Len(t, game.History, 2)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Returns save failures", func(t *testing.T) {
		stored := entity.NewGame("s1")
		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "s1").Return(stored, nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, stored).Return(errRedisDown).Once()
		manager := NewGameManager(newTestLogger(), repo)

		_, err := manager.Play(ctx, "s1", 0)

		require.ErrorIs(t, err, errRedisDown)
	})

	t.Run("Stops after a win", func(t *testing.T) {
		manager := NewGameManager(newTestLogger(), repository.NewMemoryGameRepository(time.Hour))
		for _, cell := range []int{0, 3, 1, 4, 2} {
			_, err := manager.Play(ctx, "s1", cell)
			require.NoError(t, err)
		}

		game, err := manager.Play(ctx, "s1", 5)

		require.NoError(t, err)
		assert.Len(t, game.History, 6)
		assert.Equal(t, entity.MarkerA, entity.CalculateWinner(game.History[game.CurrentMove]))
	})
}

func TestGameManager_JumpTo(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves the stored pointer", func(t *testing.T) {
		manager := NewGameManager(newTestLogger(), repository.NewMemoryGameRepository(time.Hour))
		for _, cell := range []int{4, 0, 8} {
			_, err := manager.Play(ctx, "s1", cell)
			require.NoError(t, err)
		}

		game, err := manager.JumpTo(ctx, "s1", 1)

		require.NoError(t, err)
		assert.Equal(t, 1, game.CurrentMove)
		assert.Len(t, game.History, 4)

		stored, err := manager.GetOrCreateGame(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.CurrentMove)
	})

	t.Run("Rejects targets outside history", func(t *testing.T) {
		manager := NewGameManager(newTestLogger(), repository.NewMemoryGameRepository(time.Hour))

		_, err := manager.JumpTo(ctx, "s1", 3)

		require.ErrorIs(t, err, apperror.ErrMoveOutOfRange)
	})
}

func TestGameManager_Restart(t *testing.T) {
	ctx := context.Background()

	// Given: a game with moves
	manager := NewGameManager(newTestLogger(), repository.NewMemoryGameRepository(time.Hour))
	_, err := manager.Play(ctx, "s1", 4)
	require.NoError(t, err)

	// When: restarting
	game, err := manager.Restart(ctx, "s1")

	// Then: the stored game is back at the start
	require.NoError(t, err)
	assert.Equal(t, entity.NewGame("s1"), game)

	stored, err := manager.GetOrCreateGame(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entity.NewGame("s1"), stored)
}

func TestGameManager_DeleteGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Ignores unknown games", func(t *testing.T) {
		manager := NewGameManager(newTestLogger(), repository.NewMemoryGameRepository(time.Hour))

		require.NoError(t, manager.DeleteGame(ctx, "missing"))
	})

	t.Run("Returns repository failures", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("DeleteByID", mock.Anything, "s1").Return(errRedisDown).Once()
		manager := NewGameManager(newTestLogger(), repo)

		require.ErrorIs(t, manager.DeleteGame(ctx, "s1"), errRedisDown)
	})
}

func TestGameManager_ConcurrentClicks(t *testing.T) {
	ctx := context.Background()
	manager := NewGameManager(newTestLogger(), repository.NewMemoryGameRepository(time.Hour))

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("s%d", i)

		// Given: two clicks on different cells of the same session at once
		var wg sync.WaitGroup
		for _, cell := range []int{0, 4} {
			wg.Add(1)
			go func(cell int) {
				defer wg.Done()
				_, err := manager.Play(ctx, id, cell)
				assert.NoError(t, err)
			}(cell)
		}
		wg.Wait()

		// Then: both moves are kept
		game, err := manager.GetOrCreateGame(ctx, id)
		require.NoError(t, err)
		require.Len(t, game.History, 3, id)
		current := game.History[game.CurrentMove]
		assert.NotEqual(t, entity.MarkerEmpty, current[0], id)
		assert.NotEqual(t, entity.MarkerEmpty, current[4], id)
	}
}
