package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/kpauljoseph/cardsheet/pkg/utils"
)

// PageDiff is the comparison of one page position across two documents.
// Page is 1-based. A page only one document has leaves the other side's
// hash empty and its size zero.
type PageDiff struct {
	Page  int
	HashA string
	HashB string
	SizeA image.Point
	SizeB image.Point
}

func (d PageDiff) Missing() bool {
	return d.HashA == "" || d.HashB == ""
}

func (d PageDiff) Changed() bool {
	return d.Missing() || d.HashA != d.HashB
}

// ComparePages hashes both page lists position by position.
func ComparePages(a, b []*image.NRGBA) []PageDiff {
	n := max(len(a), len(b))
	diffs := make([]PageDiff, n)
	for i := range diffs {
		diffs[i].Page = i + 1
		if i < len(a) {
			diffs[i].HashA = utils.GenerateImageHash(a[i])
			diffs[i].SizeA = a[i].Bounds().Size()
		}
		if i < len(b) {
			diffs[i].HashB = utils.GenerateImageHash(b[i])
			diffs[i].SizeB = b[i].Bounds().Size()
		}
	}
	return diffs
}

// Compare rasterizes both documents at ppi and compares them page by page.
func Compare(ctx context.Context, r Rasterizer, pathA, pathB string, ppi int) ([]PageDiff, error) {
	a, err := r.Rasterize(ctx, pathA, ppi)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pathA, err)
	}
	b, err := r.Rasterize(ctx, pathB, ppi)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pathB, err)
	}
	return ComparePages(a, b), nil
}
