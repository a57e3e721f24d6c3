package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

type FitzRasterizer struct {
	logger *logger.Logger
}

func NewRasterizer(logger *logger.Logger) *FitzRasterizer {
	return &FitzRasterizer{
		logger: logger,
	}
}

func (r *FitzRasterizer) Rasterize(ctx context.Context, pdfPath string, ppi int) ([]*image.NRGBA, error) {
	if ppi <= 0 {
		return nil, fmt.Errorf("%w: ppi must be positive, got %d", models.ErrConfiguration, ppi)
	}

	r.logger.Debug("Rasterizing PDF: %s at %d PPI", pdfPath, ppi)

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %v", models.ErrIO, err)
	}
	defer doc.Close()

	// Page numbers are zero indexed in the fitz package.
	pages := make([]*image.NRGBA, 0, doc.NumPage())
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(pageNum, float64(ppi))
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", pageNum+1, err)
		}
		r.logger.Trace("Page %d rendered at %dx%d", pageNum+1, img.Bounds().Dx(), img.Bounds().Dy())
		pages = append(pages, imaging.Clone(img))
	}

	r.logger.Info("Rasterized %d pages from %s", len(pages), pdfPath)
	return pages, nil
}
