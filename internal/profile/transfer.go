package profile

import (
	"fmt"
	"os"

	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// Export writes every profile and the default pointer to path in the store's
// own format. It returns the number of profiles written.
func (s *Store) Export(path string) (int, error) {
	snap, err := s.read()
	if err != nil {
		return 0, err
	}
	if err := writeSnapshot(path, snap); err != nil {
		return 0, err
	}

	s.logger.Info("Exported %d offset profiles to %s", len(snap.Profiles), path)
	return len(snap.Profiles), nil
}

// Import loads a snapshot written by Export. Profiles are upserted, or with
// replace the store becomes exactly the snapshot. The snapshot's default is
// adopted when it names one of the imported profiles.
func (s *Store) Import(path string, replace bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read profile snapshot %s: %v", models.ErrIO, path, err)
	}
	incoming, err := decodeSnapshot(path, data)
	if err != nil {
		return 0, err
	}

	err = s.update(func(snap *Snapshot) error {
		if replace {
			*snap = *incoming
			return nil
		}
		for name, p := range incoming.Profiles {
			if p.CreatedAt.IsZero() {
				p.CreatedAt = s.now()
			}
			snap.Profiles[name] = p
		}
		if incoming.DefaultProfile != "" {
			snap.DefaultProfile = incoming.DefaultProfile
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Imported %d offset profiles from %s", len(incoming.Profiles), path)
	return len(incoming.Profiles), nil
}
