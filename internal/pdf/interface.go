package pdf

import (
	"context"
	"image"
)

// Rasterizer turns the pages of an existing PDF back into page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, ppi int) ([]*image.NRGBA, error)
}
