package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// sessionLocks stripes the per-session locks so their number stays fixed.
const sessionLocks = 64

// GameManager applies one controller operation per call to the game of a session.
// Calls for the same session are serialized so concurrent clicks never overwrite each other.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	locks [sessionLocks]sync.Mutex
}

func (that *GameManager) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))

	mu := &that.locks[h.Sum32()%sessionLocks]
	mu.Lock()

	return mu.Unlock
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
	}
}

// GetOrCreateGame returns the game stored under id, starting a new one if there is none.
func (that *GameManager) GetOrCreateGame(ctx context.Context, id string) (*entity.Game, error) {
	defer that.lock(id)()

	return that.getOrCreateGame(ctx, id)
}

func (that *GameManager) getOrCreateGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return that.createGame(ctx, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// Play clicks cell on the current board. An illegal click returns the game unchanged.
func (that *GameManager) Play(ctx context.Context, id string, cell int) (*entity.Game, error) {
	defer that.lock(id)()

	log := that.logger.With("method", "Play", "gameID", id, "cell", cell)

	game, err := that.getOrCreateGame(ctx, id)
	if err != nil {
		return nil, err
	}

	branching := !game.IsCurrentLast()

	controller := tictactoe.NewGameController(game)
	if !controller.Play(cell) {
		log.Debug("click ignored")
		return game, nil
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if branching {
		log.Debug("history rewritten from an earlier move", "move", game.CurrentMove)
	}

	if winner := entity.CalculateWinner(controller.CurrentSquares()); winner != entity.MarkerEmpty {
		log.Info("game won", "winner", winner, "move", game.CurrentMove)
	}

	return game, nil
}

// JumpTo moves the game pointer to move.
func (that *GameManager) JumpTo(ctx context.Context, id string, move int) (*entity.Game, error) {
	defer that.lock(id)()

	game, err := that.getOrCreateGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = tictactoe.NewGameController(game).JumpTo(move); err != nil {
		return nil, fmt.Errorf("failed to jump: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// Restart throws the history away and starts from an empty board.
func (that *GameManager) Restart(ctx context.Context, id string) (*entity.Game, error) {
	defer that.lock(id)()

	if err := that.DeleteGame(ctx, id); err != nil {
		return nil, err
	}

	game, err := that.createGame(ctx, id)
	if err != nil {
		return nil, err
	}

	that.logger.Info("game restarted", "gameID", id)

	return game, nil
}

// DeleteGame forgets the game of a session.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

func (that *GameManager) createGame(ctx context.Context, id string) (*entity.Game, error) {
	game := entity.NewGame(id)

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", id)

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
