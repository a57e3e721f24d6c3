package offset

import (
	"image"
	"math"

	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// ReferencePPI is the resolution offsets are calibrated at.
const ReferencePPI = 300

type Corrector struct {
	policy FillPolicy
	logger *logger.Logger
}

func New(policy FillPolicy, logger *logger.Logger) *Corrector {
	if policy == nil {
		policy = Wrap{}
	}
	return &Corrector{
		policy: policy,
		logger: logger,
	}
}

// ScaleForPPI converts a calibrated offset to pixels at ppi, rounding down.
func ScaleForPPI(off models.Offset, ppi int) models.Offset {
	if ppi == ReferencePPI {
		return off
	}
	scale := func(v int) int {
		return int(math.Floor(float64(v) * float64(ppi) / ReferencePPI))
	}
	return models.Offset{X: scale(off.X), Y: scale(off.Y)}
}

// Correct translates one page by off pixels. A zero offset returns the page as is.
func (c *Corrector) Correct(page image.Image, off models.Offset) *image.NRGBA {
	if off.IsZero() {
		if nrgba, ok := page.(*image.NRGBA); ok {
			return nrgba
		}
	}
	return c.policy.Shift(page, off.X, off.Y)
}

// Apply corrects pages in place. With duplex set the pages alternate front and
// back and only backs move; otherwise every page moves.
func (c *Corrector) Apply(pages []*image.NRGBA, off models.Offset, duplex bool) {
	if off.IsZero() {
		return
	}
	moved := 0
	for i, page := range pages {
		if duplex && i%2 == 0 {
			continue
		}
		pages[i] = c.Correct(page, off)
		moved++
	}
	c.logger.Debug("Shifted %d of %d pages by (%d, %d) using %s fill", moved, len(pages), off.X, off.Y, c.policy.Name())
}
