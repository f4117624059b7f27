package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

var ErrUnknownMarker = errors.New("unknown marker")

// Marker is the value of a single board cell.
type Marker string

const (
	MarkerEmpty Marker = ""
	MarkerA     Marker = "X"
	MarkerB     Marker = "O"
)

// BoardSize is the number of cells on the board, indexed in row-major order.
const BoardSize = 9

// Snapshot is one immutable board state.
type Snapshot [BoardSize]Marker

// WinLines are the index triples that win the game: 3 rows, 3 columns, 2 diagonals.
var WinLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Game is the state owned by the game controller: an ordered history of
// snapshots and the pointer to the active one.
type Game struct {
	ID          string     `json:"id"`
	History     []Snapshot `json:"history"`
	CurrentMove int        `json:"current_move"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:          id,
		History:     []Snapshot{{}},
		CurrentMove: 0,
	}
}

// CalculateWinner returns the marker occupying a full line, or MarkerEmpty.
// Every line is checked before concluding there is no winner.
func CalculateWinner(squares Snapshot) Marker {
	for _, line := range WinLines {
		a, b, c := squares[line[0]], squares[line[1]], squares[line[2]]
		if a != MarkerEmpty && a == b && b == c {
			return a
		}
	}

	return MarkerEmpty
}

// ValidateCell checks that cell indexes the board.
func ValidateCell(cell int) error {
	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	return nil
}

func (that Snapshot) IsEmpty(cell int) bool {
	return that[cell] == MarkerEmpty
}

// IsStarted reports whether the history holds at least the initial snapshot.
func (that *Game) IsStarted() bool {
	return len(that.History) > 0
}

func (that *Game) IsCurrentLast() bool {
	return that.CurrentMove == len(that.History)-1
}

// MarkerFor returns the marker that moves when the pointer is at move.
func MarkerFor(move int) Marker {
	if move%2 == 0 {
		return MarkerA
	}
	return MarkerB
}
