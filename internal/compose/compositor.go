package compose

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/kpauljoseph/cardsheet/internal/layout"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

type Options struct {
	Registration layout.Registration
	Background   color.Color
}

// Compositor paints card images onto page rasters. It is safe for concurrent
// use: pages may be composed in parallel.
type Compositor struct {
	grid   layout.Grid
	opts   Options
	logger *logger.Logger

	mu     sync.Mutex
	shared map[string]*sharedCell
}

type sharedCell struct {
	once sync.Once
	img  *image.NRGBA
	err  error
}

func New(grid layout.Grid, opts Options, logger *logger.Logger) *Compositor {
	if opts.Background == nil {
		opts.Background = color.White
	}
	return &Compositor{
		grid:   grid,
		opts:   opts,
		logger: logger,
		shared: make(map[string]*sharedCell),
	}
}

func (c *Compositor) Grid() layout.Grid {
	return c.grid
}

// Pages splits pairs into per-page slices in slot order.
func (c *Compositor) Pages(pairs []models.ImagePair) [][]models.ImagePair {
	capacity := c.grid.Capacity()
	var pages [][]models.ImagePair
	for start := 0; start < len(pairs); start += capacity {
		end := min(start+capacity, len(pairs))
		pages = append(pages, pairs[start:end])
	}
	return pages
}

// ComposePage renders one page for the given side. Slots that fail to load are
// left blank and reported; only cancellation aborts the page.
func (c *Compositor) ComposePage(ctx context.Context, slots []models.ImagePair, side models.Side) (*image.NRGBA, []models.SlotError, error) {
	if len(slots) > c.grid.Capacity() {
		return nil, nil, fmt.Errorf("%w: %d slots do not fit a page of %d cells",
			models.ErrLayout, len(slots), c.grid.Capacity())
	}

	page := imaging.New(c.grid.PageWidth, c.grid.PageHeight, c.opts.Background)
	drawRegistration(page, c.grid, c.opts.Registration)

	var slotErrors []models.SlotError
	for i, slot := range slots {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		path := slot.Front
		shared := false
		if side == models.SideBack {
			path = slot.Back
			shared = slot.BackShared
		}
		if path == "" {
			continue
		}

		cell, err := c.cell(path, shared)
		if err != nil {
			c.logger.Warn("Leaving slot %d blank: %v", slot.Index, err)
			slotErrors = append(slotErrors, models.SlotError{Index: slot.Index, Path: path, Err: err})
			continue
		}

		loc := c.grid.Locate(i)
		rect := c.grid.CellRect(loc.Row, loc.Column, side)
		draw.Draw(page, rect, cell, cell.Bounds().Min, draw.Src)
		c.logger.Trace("Placed slot %d (%s) at %v on %s side", slot.Index, path, rect.Min, side)
	}

	return page, slotErrors, nil
}

// ComposeSide renders every page of one side sequentially.
func (c *Compositor) ComposeSide(ctx context.Context, pairs []models.ImagePair, side models.Side) ([]*image.NRGBA, []models.SlotError, error) {
	var (
		pages      []*image.NRGBA
		slotErrors []models.SlotError
	)
	for _, slots := range c.Pages(pairs) {
		page, errs, err := c.ComposePage(ctx, slots, side)
		if err != nil {
			return nil, nil, err
		}
		pages = append(pages, page)
		slotErrors = append(slotErrors, errs...)
	}
	return pages, slotErrors, nil
}

func (c *Compositor) cell(path string, shared bool) (*image.NRGBA, error) {
	if !shared {
		return c.prepare(path)
	}

	c.mu.Lock()
	entry, ok := c.shared[path]
	if !ok {
		entry = &sharedCell{}
		c.shared[path] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		c.logger.Debug("Preparing shared back %s", path)
		entry.img, entry.err = c.prepare(path)
	})
	return entry.img, entry.err
}

// prepare decodes, scales to the card size, trims the crop and rebuilds the
// extended border. The result is exactly one cell.
func (c *Compositor) prepare(path string) (*image.NRGBA, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", models.ErrResolution, err)
	}

	g := c.grid
	img := imaging.Resize(src, g.CardWidth, g.CardHeight, imaging.Lanczos)
	if g.CropPixels > 0 {
		img = imaging.Crop(img, image.Rect(g.CropPixels, g.CropPixels,
			g.CardWidth-g.CropPixels, g.CardHeight-g.CropPixels))
	}
	if g.ExtendPixels > 0 {
		ExtendCorners(img, g.ExtendPixels)
	}
	return img, nil
}
