package offset

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// FillPolicy translates an image by (dx, dy) and decides what fills the
// region uncovered by the move. Output dimensions always equal the input's.
type FillPolicy interface {
	Name() string
	Shift(img image.Image, dx, dy int) *image.NRGBA
}

const (
	FillWrap  = "wrap"
	FillEdge  = "edge"
	FillBlank = "blank"
)

// ParseFillPolicy maps a configuration name to a policy. An empty name selects Wrap.
func ParseFillPolicy(name string) (FillPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FillWrap:
		return Wrap{}, nil
	case FillEdge:
		return Edge{}, nil
	case FillBlank:
		return Blank{Color: color.White}, nil
	default:
		return nil, fmt.Errorf("%w: unknown offset fill %q (want %s, %s or %s)",
			models.ErrConfiguration, name, FillWrap, FillEdge, FillBlank)
	}
}

// Wrap moves pixels pushed off one edge back in at the opposite edge.
type Wrap struct{}

func (Wrap) Name() string { return FillWrap }

func (Wrap) Shift(img image.Image, dx, dy int) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x, y := mod(dx, w), mod(dy, h)
	if x == 0 && y == 0 {
		return src
	}

	out := imaging.New(w, h, color.Transparent)
	for _, at := range []image.Point{{x, y}, {x - w, y}, {x, y - h}, {x - w, y - h}} {
		r := image.Rect(at.X, at.Y, at.X+w, at.Y+h).Intersect(out.Bounds())
		draw.Draw(out, r, src, r.Min.Sub(at), draw.Src)
	}
	return out
}

// Edge fills the uncovered region by repeating the nearest source pixel.
type Edge struct{}

func (Edge) Name() string { return FillEdge }

func (Edge) Shift(img image.Image, dx, dy int) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := clampIndex(y-dy, h)
		for x := 0; x < w; x++ {
			sx := clampIndex(x-dx, w)
			d := out.PixOffset(x, y)
			s := src.PixOffset(sx, sy)
			copy(out.Pix[d:d+4], src.Pix[s:s+4])
		}
	}
	return out
}

// Blank fills the uncovered region with a solid color.
type Blank struct {
	Color color.Color
}

func (Blank) Name() string { return FillBlank }

func (b Blank) Shift(img image.Image, dx, dy int) *image.NRGBA {
	fill := b.Color
	if fill == nil {
		fill = color.White
	}
	bounds := img.Bounds()
	out := imaging.New(bounds.Dx(), bounds.Dy(), fill)
	r := image.Rect(dx, dy, dx+bounds.Dx(), dy+bounds.Dy()).Intersect(out.Bounds())
	draw.Draw(out, r, img, bounds.Min.Add(r.Min.Sub(image.Pt(dx, dy))), draw.Src)
	return out
}

func mod(v, n int) int {
	if n == 0 {
		return 0
	}
	return ((v % n) + n) % n
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
