package view

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	keyMoveStart = "moves.start"
	keyMoveGoto  = "moves.goto"

	boardRows = 3
)

var markerImages = map[entity.Marker]string{
	entity.MarkerA: "wabbit.svg",
	entity.MarkerB: "duck.svg",
}

type Cell struct {
	Index    int           `json:"index"`
	Marker   entity.Marker `json:"marker"`
	Name     string        `json:"name,omitempty"`
	Image    string        `json:"image,omitempty"`
	Playable bool          `json:"playable"`
}

type MoveEntry struct {
	Number      int    `json:"number"`
	Description string `json:"description"`
	Current     bool   `json:"current"`
}

// View is everything a client needs to draw one state of a game.
type View struct {
	GameID      string        `json:"game_id"`
	Cells       []Cell        `json:"cells"`
	Status      string        `json:"status"`
	Winner      entity.Marker `json:"winner,omitempty"`
	XIsNext     bool          `json:"x_is_next"`
	CurrentMove int           `json:"current_move"`
	Moves       []MoveEntry   `json:"moves"`
}

// Build recomputes the view from the game state. It never changes game.
func Build(game *entity.Game, catalog tictactoe.Catalog) (*View, error) {
	snapshot := *game
	snapshot.History = append([]entity.Snapshot(nil), game.History...)
	controller := tictactoe.NewGameController(&snapshot)
	board := controller.Board()

	status, err := board.Status(catalog)
	if err != nil {
		return nil, err
	}

	cells, err := buildCells(board, catalog)
	if err != nil {
		return nil, err
	}

	moves, err := buildMoves(controller.Moves(), catalog)
	if err != nil {
		return nil, err
	}

	return &View{
		GameID:      game.ID,
		Cells:       cells,
		Status:      status,
		Winner:      board.Winner(),
		XIsNext:     controller.XIsNext(),
		CurrentMove: snapshot.CurrentMove,
		Moves:       moves,
	}, nil
}

func buildCells(board *tictactoe.Board, catalog tictactoe.Catalog) ([]Cell, error) {
	squares := board.Squares()
	cells := make([]Cell, len(squares))

	for i, marker := range squares {
		cells[i] = Cell{
			Index:    i,
			Marker:   marker,
			Playable: board.CanPlay(i),
		}

		if marker == entity.MarkerEmpty {
			continue
		}

		name, err := tictactoe.MarkerName(catalog, marker)
		if err != nil {
			return nil, err
		}

		cells[i].Name = name
		cells[i].Image = "/static/" + markerImages[marker]
	}

	return cells, nil
}

func buildMoves(moves []tictactoe.Move, catalog tictactoe.Catalog) ([]MoveEntry, error) {
	entries := make([]MoveEntry, len(moves))

	for i, move := range moves {
		var (
			description string
			err         error
		)

		if move.Number > 0 {
			description, err = catalog.Render(keyMoveGoto, map[string]any{"Move": move.Number})
		} else {
			description, err = catalog.Render(keyMoveStart, nil)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to render move description: %w", err)
		}

		entries[i] = MoveEntry{
			Number:      move.Number,
			Description: description,
			Current:     move.Current,
		}
	}

	return entries, nil
}

// Rows splits the cells into board rows.
func (that *View) Rows() [][]Cell {
	rows := make([][]Cell, 0, boardRows)
	for i := 0; i < len(that.Cells); i += boardRows {
		rows = append(rows, that.Cells[i:i+boardRows])
	}

	return rows
}
