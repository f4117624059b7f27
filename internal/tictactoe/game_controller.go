package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// Move is one entry of the time-travel list.
type Move struct {
	Number  int
	Current bool
}

// GameController owns the history of a game and the pointer into it.
type GameController struct {
	game *entity.Game
}

// NewGameController takes ownership of game. A game without history is started.
func NewGameController(game *entity.Game) *GameController {
	controller := &GameController{game: game}
	if !game.IsStarted() {
		controller.Start()
	}

	return controller
}

func (that *GameController) Game() *entity.Game {
	return that.game
}

// Start resets the history to a single empty snapshot.
func (that *GameController) Start() {
	that.game.History = []entity.Snapshot{{}}
	that.game.CurrentMove = 0
}

// CommitMove drops every snapshot after the pointer, appends next and points at it.
func (that *GameController) CommitMove(next entity.Snapshot) {
	nextHistory := make([]entity.Snapshot, 0, that.game.CurrentMove+2)
	nextHistory = append(nextHistory, that.game.History[:that.game.CurrentMove+1]...)
	nextHistory = append(nextHistory, next)

	that.game.History = nextHistory
	that.game.CurrentMove = len(nextHistory) - 1
}

// JumpTo moves the pointer without touching history.
func (that *GameController) JumpTo(move int) error {
	if move < 0 || move >= len(that.game.History) {
		return fmt.Errorf("%w: move %d of %d", apperror.ErrMoveOutOfRange, move, len(that.game.History))
	}

	that.game.CurrentMove = move

	return nil
}

func (that *GameController) CurrentSquares() entity.Snapshot {
	return that.game.History[that.game.CurrentMove]
}

func (that *GameController) XIsNext() bool {
	return entity.MarkerFor(that.game.CurrentMove) == entity.MarkerA
}

// Board returns the board for the current snapshot, committing into this controller.
func (that *GameController) Board() *Board {
	return NewBoard(that.CurrentSquares(), that.XIsNext(), that.CommitMove)
}

// Play clicks cell on the current board and reports whether a move was committed.
func (that *GameController) Play(cell int) bool {
	return that.Board().HandleClick(cell)
}

// Moves lists every valid jump target, oldest first.
func (that *GameController) Moves() []Move {
	moves := make([]Move, len(that.game.History))
	for i := range moves {
		moves[i] = Move{
			Number:  i,
			Current: i == that.game.CurrentMove,
		}
	}

	return moves
}
