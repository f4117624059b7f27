package view

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	DefaultCellSize = 96

	gridLineWidth = 2
	cellPadding   = 8
	statusHeight  = 28
)

var (
	backgroundColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	gridColor       = color.NRGBA{R: 153, G: 153, B: 153, A: 255}
	statusColor     = color.NRGBA{R: 30, G: 30, B: 36, A: 255}
)

type markerCacheKey struct {
	marker entity.Marker
	size   int
}

// PNGRenderer draws a view as a PNG image: the grid, marker images and the status line.
type PNGRenderer struct {
	cellSize int

	mu    sync.RWMutex
	cache map[markerCacheKey]image.Image
}

func NewPNGRenderer(cellSize int) *PNGRenderer {
	if cellSize <= 2*cellPadding {
		cellSize = DefaultCellSize
	}

	return &PNGRenderer{
		cellSize: cellSize,
		cache:    make(map[markerCacheKey]image.Image),
	}
}

func (that *PNGRenderer) Render(ctx context.Context, view *View) ([]byte, error) {
	boardSize := that.cellSize * boardRows
	img := image.NewRGBA(image.Rect(0, 0, boardSize, boardSize+statusHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	that.drawGrid(img, boardSize)

	for _, cell := range view.Cells {
		if cell.Marker == entity.MarkerEmpty {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := that.drawMarker(img, cell); err != nil {
			return nil, err
		}
	}

	drawStatus(img, view.Status, boardSize)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	return buf.Bytes(), nil
}

func (that *PNGRenderer) drawGrid(img *image.RGBA, boardSize int) {
	fill := image.NewUniform(gridColor)

	for i := 1; i < boardRows; i++ {
		offset := i*that.cellSize - gridLineWidth/2
		draw.Draw(img, image.Rect(offset, 0, offset+gridLineWidth, boardSize), fill, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(0, offset, boardSize, offset+gridLineWidth), fill, image.Point{}, draw.Src)
	}
}

func (that *PNGRenderer) drawMarker(img *image.RGBA, cell Cell) error {
	size := that.cellSize - 2*cellPadding

	marker, err := that.markerImage(cell.Marker, size)
	if err != nil {
		return err
	}

	x := (cell.Index%boardRows)*that.cellSize + cellPadding
	y := (cell.Index/boardRows)*that.cellSize + cellPadding
	draw.Draw(img, image.Rect(x, y, x+size, y+size), marker, image.Point{}, draw.Over)

	return nil
}

func (that *PNGRenderer) markerImage(marker entity.Marker, size int) (image.Image, error) {
	key := markerCacheKey{marker: marker, size: size}

	that.mu.RLock()
	img, ok := that.cache[key]
	that.mu.RUnlock()
	if ok {
		return img, nil
	}

	name, ok := markerImages[marker]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownMarker, marker)
	}

	data, err := assetFiles.ReadFile("assets/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker asset %s: %w", name, err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse marker svg %s: %w", name, err)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	that.mu.Lock()
	that.cache[key] = rgba
	that.mu.Unlock()

	return rgba, nil
}

func drawStatus(img *image.RGBA, status string, boardSize int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(statusColor),
		Face: face,
	}

	width := drawer.MeasureString(status).Ceil()
	x := (boardSize - width) / 2
	if x < cellPadding {
		x = cellPadding
	}

	drawer.Dot = fixed.P(x, boardSize+(statusHeight+face.Ascent)/2)
	drawer.DrawString(status)
}
