package sheet

import (
	"time"

	"github.com/kpauljoseph/cardsheet/internal/layout"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// Report summarizes one run.
type Report struct {
	StartTime time.Time
	EndTime   time.Time

	Grid       layout.Grid
	FrontCount int
	Slots      int
	FrontPages int
	BackPages  int

	Skipped []models.ImagePair
	Errors  []models.SlotError

	// Offset is the pixel offset applied at the run's PPI.
	Offset       models.Offset
	OffsetSource string

	Outputs []string
}

func (r *Report) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

func (r *Report) Print(log *logger.Logger) {
	log.Info("Processing complete:")
	log.Info("- Layout: %s", r.Grid)
	if r.Grid.PPI > 0 {
		log.Info("- Page: %.2f x %.2f in at %d PPI",
			layout.PixelsToInches(r.Grid.PageWidth, r.Grid.PPI),
			layout.PixelsToInches(r.Grid.PageHeight, r.Grid.PPI), r.Grid.PPI)
	}
	log.Info("- Cards placed: %d of %d", r.Slots, r.FrontCount)
	log.Info("- Front pages: %d, back pages: %d", r.FrontPages, r.BackPages)
	if r.OffsetSource != "" {
		log.Info("- Offset: x=%d, y=%d (%s)", r.Offset.X, r.Offset.Y, r.OffsetSource)
	}
	for _, out := range r.Outputs {
		log.Info("- Output: %s", out)
	}

	if len(r.Skipped) > 0 {
		log.Info("Skipped %d cards on request:", len(r.Skipped))
		for _, pair := range r.Skipped {
			log.Info("  - slot %d: %s", pair.Index, pair.Front)
		}
	}
	if len(r.Errors) > 0 {
		log.Warn("%d cards had problems:", len(r.Errors))
		for _, err := range r.Errors {
			log.Warn("  - %v", err)
		}
	}

	log.Info("Finished in %s", r.Duration().Round(time.Millisecond))
}
