package sheet

import (
	"fmt"

	"github.com/kpauljoseph/cardsheet/internal/config"
	"github.com/kpauljoseph/cardsheet/internal/profile"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// ResolveOffset picks the calibrated offset for a run: an explicit offset
// first, then a named profile, then the legacy saved offset when asked for,
// and zero otherwise. The returned source describes where it came from.
func ResolveOffset(cfg *config.Config, store *profile.Store, log *logger.Logger) (models.Offset, string, error) {
	switch {
	case cfg.Offset != nil:
		return *cfg.Offset, "explicit", nil

	case cfg.OffsetProfile == profile.DefaultKeyword:
		p, ok, err := store.GetDefault()
		if err != nil {
			return models.Offset{}, "", fmt.Errorf("failed to load default offset profile: %w", err)
		}
		if !ok {
			log.Warn("No default offset profile set, printing without offset")
			return models.Offset{}, "", nil
		}
		log.Info("Loaded default offset profile %q: x=%d, y=%d", p.Name, p.XOffset, p.YOffset)
		return p.Offset(), fmt.Sprintf("profile %q", p.Name), nil

	case cfg.OffsetProfile != "":
		p, err := store.Get(cfg.OffsetProfile)
		if err != nil {
			return models.Offset{}, "", fmt.Errorf("failed to load offset profile: %w", err)
		}
		log.Info("Loaded offset profile %q: x=%d, y=%d", p.Name, p.XOffset, p.YOffset)
		return p.Offset(), fmt.Sprintf("profile %q", p.Name), nil

	case cfg.LoadOffset:
		off, ok, err := store.LoadLegacy()
		if err != nil {
			log.Warn("Legacy offset cannot be applied: %v", err)
			return models.Offset{}, "", nil
		}
		if !ok {
			log.Warn("No legacy offset saved, printing without offset")
			return models.Offset{}, "", nil
		}
		log.Info("Loaded legacy offset: x=%d, y=%d", off.X, off.Y)
		return off, "legacy", nil
	}

	return models.Offset{}, "", nil
}
