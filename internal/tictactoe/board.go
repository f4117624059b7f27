package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	keyStatusWinner = "status.winner"
	keyStatusTurn   = "status.turn"
	keyMarkerPrefix = "marker."
)

// Catalog renders user-facing text by key.
type Catalog interface {
	Render(key string, data any) (string, error)
}

// Board projects one snapshot and turns clicks into candidate snapshots.
// It never changes history: legal moves are handed to onPlay.
type Board struct {
	squares entity.Snapshot
	xIsNext bool
	onPlay  func(next entity.Snapshot)
}

func NewBoard(squares entity.Snapshot, xIsNext bool, onPlay func(next entity.Snapshot)) *Board {
	return &Board{
		squares: squares,
		xIsNext: xIsNext,
		onPlay:  onPlay,
	}
}

func (that *Board) Squares() entity.Snapshot {
	return that.squares
}

func (that *Board) Winner() entity.Marker {
	return entity.CalculateWinner(that.squares)
}

func (that *Board) NextMarker() entity.Marker {
	if that.xIsNext {
		return entity.MarkerA
	}
	return entity.MarkerB
}

// CanPlay reports whether a click on cell would produce a move.
func (that *Board) CanPlay(cell int) bool {
	if cell < 0 || cell >= entity.BoardSize {
		return false
	}

	return that.squares.IsEmpty(cell) && that.Winner() == entity.MarkerEmpty
}

// HandleClick places the next marker on cell and commits the result.
// Clicks on an occupied cell or after a win do nothing.
func (that *Board) HandleClick(cell int) bool {
	if !that.CanPlay(cell) {
		return false
	}

	nextSquares := that.squares
	nextSquares[cell] = that.NextMarker()

	that.onPlay(nextSquares)

	return true
}

// Status reports the winner if there is one, otherwise whose turn it is.
func (that *Board) Status(catalog Catalog) (string, error) {
	if winner := that.Winner(); winner != entity.MarkerEmpty {
		name, err := MarkerName(catalog, winner)
		if err != nil {
			return "", err
		}

		return renderStatus(catalog, keyStatusWinner, map[string]any{"Winner": name})
	}

	name, err := MarkerName(catalog, that.NextMarker())
	if err != nil {
		return "", err
	}

	return renderStatus(catalog, keyStatusTurn, map[string]any{"Next": name})
}

// MarkerName returns the display name of a player marker.
func MarkerName(catalog Catalog, marker entity.Marker) (string, error) {
	name, err := catalog.Render(keyMarkerPrefix+string(marker), nil)
	if err != nil {
		return "", fmt.Errorf("failed to render marker name: %w", err)
	}

	return name, nil
}

func renderStatus(catalog Catalog, key string, data map[string]any) (string, error) {
	status, err := catalog.Render(key, data)
	if err != nil {
		return "", fmt.Errorf("failed to render status: %w", err)
	}

	return status, nil
}
