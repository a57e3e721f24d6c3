package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// LegacyFileName holds the single unnamed offset from before named profiles.
const LegacyFileName = "offset_data.json"

func (s *Store) legacyPath() string {
	return filepath.Join(s.dir, LegacyFileName)
}

// LoadLegacy returns the saved unnamed offset; ok is false when none exists.
func (s *Store) LoadLegacy() (off models.Offset, ok bool, err error) {
	data, err := os.ReadFile(s.legacyPath())
	if os.IsNotExist(err) {
		return models.Offset{}, false, nil
	}
	if err != nil {
		return models.Offset{}, false, fmt.Errorf("%w: failed to read legacy offset: %v", models.ErrIO, err)
	}
	if err := json.Unmarshal(data, &off); err != nil {
		return models.Offset{}, false, fmt.Errorf("%w: cannot decode legacy offset: %v", models.ErrIO, err)
	}
	return off, true, nil
}

func (s *Store) SaveLegacy(off models.Offset) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create data directory: %v", models.ErrIO, err)
	}
	data, err := json.MarshalIndent(off, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode legacy offset: %w", err)
	}
	if err := renameio.WriteFile(s.legacyPath(), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("%w: failed to write legacy offset: %v", models.ErrIO, err)
	}

	s.logger.Info("Legacy offset saved: x=%d, y=%d", off.X, off.Y)
	return nil
}
