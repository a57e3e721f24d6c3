package layout

import (
	"fmt"
	"image"

	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// GridOptions are the inputs that shape a grid beyond the card and paper.
type GridOptions struct {
	PPI int
	// Crop is trimmed from every edge of the card before layout.
	Crop Length
	// ExtendCorners is the width in pixels of the border rebuilt from the card's
	// inner edge. It never changes the grid pitch.
	ExtendCorners int
}

// Grid is the pixel layout of cards on one sheet. It is derived purely from
// its inputs: equal inputs always produce equal grids.
type Grid struct {
	Card  CardSize
	Paper PaperSize
	PPI   int

	PageWidth  int
	PageHeight int

	// CardWidth and CardHeight are the card's pixel size before cropping.
	CardWidth  int
	CardHeight int

	CropPixels   int
	ExtendPixels int

	CellWidth  int
	CellHeight int

	Rows    int
	Columns int

	MarginLeft   int
	MarginRight  int
	MarginTop    int
	MarginBottom int
}

// Cell addresses one grid position on one page.
type Cell struct {
	Page   int
	Row    int
	Column int
}

func NewGrid(card CardSize, paper PaperSize, opts GridOptions) (Grid, error) {
	if opts.PPI <= 0 {
		return Grid{}, fmt.Errorf("%w: ppi must be positive, got %d", models.ErrConfiguration, opts.PPI)
	}
	if opts.Crop < 0 {
		return Grid{}, fmt.Errorf("%w: crop must not be negative, got %s", models.ErrConfiguration, opts.Crop)
	}
	if opts.ExtendCorners < 0 {
		return Grid{}, fmt.Errorf("%w: extend corners must not be negative, got %d", models.ErrConfiguration, opts.ExtendCorners)
	}

	g := Grid{
		Card:         card,
		Paper:        paper,
		PPI:          opts.PPI,
		PageWidth:    MillimetersToPixels(paper.Width, opts.PPI),
		PageHeight:   MillimetersToPixels(paper.Height, opts.PPI),
		CardWidth:    MillimetersToPixels(card.Width, opts.PPI),
		CardHeight:   MillimetersToPixels(card.Height, opts.PPI),
		CropPixels:   opts.Crop.Pixels(opts.PPI),
		ExtendPixels: opts.ExtendCorners,
	}

	g.CellWidth = g.CardWidth - 2*g.CropPixels
	g.CellHeight = g.CardHeight - 2*g.CropPixels
	if g.CellWidth <= 0 || g.CellHeight <= 0 {
		return Grid{}, fmt.Errorf("%w: crop %s leaves nothing of a %s card", models.ErrLayout, opts.Crop, card.Name)
	}
	if 2*g.ExtendPixels >= g.CellWidth || 2*g.ExtendPixels >= g.CellHeight {
		return Grid{}, fmt.Errorf("%w: extend corners %dpx is too large for a %dx%d cell",
			models.ErrConfiguration, g.ExtendPixels, g.CellWidth, g.CellHeight)
	}

	g.Columns = g.PageWidth / g.CellWidth
	g.Rows = g.PageHeight / g.CellHeight
	if g.Columns < 1 || g.Rows < 1 {
		return Grid{}, fmt.Errorf("%w: %s card (%dx%dpx) does not fit on %s paper (%dx%dpx)",
			models.ErrLayout, card.Name, g.CellWidth, g.CellHeight, paper.Name, g.PageWidth, g.PageHeight)
	}

	spareW := g.PageWidth - g.Columns*g.CellWidth
	spareH := g.PageHeight - g.Rows*g.CellHeight
	g.MarginLeft = spareW / 2
	g.MarginRight = spareW - g.MarginLeft
	g.MarginTop = spareH / 2
	g.MarginBottom = spareH - g.MarginTop

	return g, nil
}

// Capacity is the number of cards on one sheet side.
func (g Grid) Capacity() int {
	return g.Rows * g.Columns
}

// PageCount is the number of front pages needed for n slots.
func (g Grid) PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + g.Capacity() - 1) / g.Capacity()
}

// Locate maps the i-th slot of the filtered deck to its page and cell.
func (g Grid) Locate(i int) Cell {
	capacity := g.Capacity()
	within := i % capacity
	return Cell{
		Page:   i / capacity,
		Row:    within / g.Columns,
		Column: within % g.Columns,
	}
}

// PlacedColumn is the physical column a slot lands in. Back pages mirror
// columns so that flipping the sheet on its vertical axis puts each back
// under its front.
func (g Grid) PlacedColumn(column int, side models.Side) int {
	if side == models.SideBack {
		return g.Columns - 1 - column
	}
	return column
}

// CellOrigin is the top-left pixel of a cell on a page of the given side.
func (g Grid) CellOrigin(row, column int, side models.Side) image.Point {
	c := g.PlacedColumn(column, side)
	return image.Pt(g.MarginLeft+c*g.CellWidth, g.MarginTop+row*g.CellHeight)
}

// CellRect is the pixel rectangle a cell covers.
func (g Grid) CellRect(row, column int, side models.Side) image.Rectangle {
	origin := g.CellOrigin(row, column, side)
	return image.Rect(origin.X, origin.Y, origin.X+g.CellWidth, origin.Y+g.CellHeight)
}

// PageBounds is the full pixel rectangle of one page.
func (g Grid) PageBounds() image.Rectangle {
	return image.Rect(0, 0, g.PageWidth, g.PageHeight)
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d grid of %dx%dpx cells on %dx%dpx %s (margins l%d r%d t%d b%d)",
		g.Columns, g.Rows, g.CellWidth, g.CellHeight, g.PageWidth, g.PageHeight, g.Paper.Name,
		g.MarginLeft, g.MarginRight, g.MarginTop, g.MarginBottom)
}
