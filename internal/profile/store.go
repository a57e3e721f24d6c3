package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio"

	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

const (
	StoreFileName = "offset_profiles.json"
	// DefaultKeyword asks for whichever profile is currently the default.
	DefaultKeyword = "default"
)

// Profile is a named printer calibration.
type Profile struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	XOffset     int       `json:"x_offset"`
	YOffset     int       `json:"y_offset"`
	PaperSize   string    `json:"paper_size"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p Profile) Offset() models.Offset {
	return models.Offset{X: p.XOffset, Y: p.YOffset}
}

// Snapshot is the persisted shape of the store and of export files.
type Snapshot struct {
	Profiles       map[string]Profile `json:"profiles"`
	DefaultProfile string             `json:"default_profile"`
}

// Store keeps offset profiles in a JSON file under a data directory. Every
// operation takes an OS file lock, so several processes may share one store.
type Store struct {
	dir    string
	path   string
	logger *logger.Logger
	now    func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(dir string, logger *logger.Logger, options ...Option) *Store {
	s := &Store{
		dir:    dir,
		path:   filepath.Join(dir, StoreFileName),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path() string {
	return s.path
}

// Save creates or replaces a profile. The creation time is kept when the
// profile already exists.
func (s *Store) Save(name string, x, y int, paperSize, description string) (Profile, error) {
	if name == "" {
		return Profile{}, fmt.Errorf("%w: profile name must not be empty", models.ErrConfiguration)
	}
	if name == DefaultKeyword {
		return Profile{}, fmt.Errorf("%w: %q is reserved", models.ErrConfiguration, DefaultKeyword)
	}
	if description == "" {
		description = defaultDescription(paperSize)
	}

	var saved Profile
	err := s.update(func(snap *Snapshot) error {
		p := Profile{
			Name:        name,
			Description: description,
			XOffset:     x,
			YOffset:     y,
			PaperSize:   paperSize,
			CreatedAt:   s.now(),
		}
		if existing, ok := snap.Profiles[name]; ok {
			p.CreatedAt = existing.CreatedAt
		}
		snap.Profiles[name] = p
		saved = p
		return nil
	})
	if err != nil {
		return Profile{}, err
	}

	s.logger.Info("Offset profile %q saved", name)
	return saved, nil
}

// Delete removes a profile and reports whether it existed. Deleting the
// default clears the default.
func (s *Store) Delete(name string) (bool, error) {
	found := false
	err := s.update(func(snap *Snapshot) error {
		if _, ok := snap.Profiles[name]; !ok {
			return errUnchanged
		}
		found = true
		delete(snap.Profiles, name)
		if snap.DefaultProfile == name {
			snap.DefaultProfile = ""
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if !found {
		s.logger.Info("Offset profile %q not found, nothing deleted", name)
		return false, nil
	}
	s.logger.Info("Offset profile %q deleted", name)
	return true, nil
}

func (s *Store) SetDefault(name string) error {
	err := s.update(func(snap *Snapshot) error {
		if _, ok := snap.Profiles[name]; !ok {
			return fmt.Errorf("%w: offset profile %q", models.ErrNotFound, name)
		}
		snap.DefaultProfile = name
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Default offset profile set to %q", name)
	return nil
}

func (s *Store) Get(name string) (Profile, error) {
	snap, err := s.read()
	if err != nil {
		return Profile{}, err
	}
	p, ok := snap.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: offset profile %q", models.ErrNotFound, name)
	}
	return p, nil
}

// GetDefault returns the default profile; ok is false when none is set.
func (s *Store) GetDefault() (p Profile, ok bool, err error) {
	snap, err := s.read()
	if err != nil {
		return Profile{}, false, err
	}
	if snap.DefaultProfile == "" {
		return Profile{}, false, nil
	}
	p, ok = snap.Profiles[snap.DefaultProfile]
	return p, ok, nil
}

// List returns every profile sorted by name.
func (s *Store) List() ([]Profile, error) {
	snap, err := s.read()
	if err != nil {
		return nil, err
	}
	return sortedProfiles(snap), nil
}

// Snapshot returns a copy of the whole store.
func (s *Store) Snapshot() (Snapshot, error) {
	snap, err := s.read()
	if err != nil {
		return Snapshot{}, err
	}
	return *snap, nil
}

var errUnchanged = errors.New("store unchanged")

// update runs fn over the current snapshot under an exclusive lock and writes
// the result atomically. fn returning errUnchanged skips the write.
func (s *Store) update(fn func(*Snapshot) error) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create data directory: %v", models.ErrIO, err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: failed to lock profile store: %v", models.ErrIO, err)
	}
	defer lock.Unlock()

	snap, err := loadSnapshot(s.path)
	if err != nil {
		return err
	}

	if err := fn(snap); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}

	return writeSnapshot(s.path, snap)
}

func (s *Store) read() (*Snapshot, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return emptySnapshot(), nil
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("%w: failed to lock profile store: %v", models.ErrIO, err)
	}
	defer lock.Unlock()

	return loadSnapshot(s.path)
}

func emptySnapshot() *Snapshot {
	return &Snapshot{Profiles: make(map[string]Profile)}
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrIO, path, err)
	}
	return decodeSnapshot(path, data)
}

func decodeSnapshot(path string, data []byte) (*Snapshot, error) {
	snap := emptySnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("%w: cannot decode offset profiles in %s: %v", models.ErrIO, path, err)
	}
	if snap.Profiles == nil {
		snap.Profiles = make(map[string]Profile)
	}
	for name, p := range snap.Profiles {
		if p.Name == "" {
			p.Name = name
			snap.Profiles[name] = p
		}
	}
	if _, ok := snap.Profiles[snap.DefaultProfile]; !ok {
		snap.DefaultProfile = ""
	}
	return snap, nil
}

func writeSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode offset profiles: %w", err)
	}
	if err := renameio.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", models.ErrIO, path, err)
	}
	return nil
}

func sortedProfiles(snap *Snapshot) []Profile {
	profiles := make([]Profile, 0, len(snap.Profiles))
	for _, p := range snap.Profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

func defaultDescription(paperSize string) string {
	if paperSize == "" {
		paperSize = "custom setup"
	}
	return "Offset profile for " + paperSize
}
