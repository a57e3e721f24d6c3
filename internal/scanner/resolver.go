package scanner

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kpauljoseph/cardsheet/pkg/models"
)

type ResolveOptions struct {
	FrontDir       string
	BackDir        string
	DoubleSidedDir string
	OnlyFronts     bool
	// Skip holds 0-based front indices, counted before filtering.
	Skip []int
}

// Resolution is the ordered deck handed to layout.
type Resolution struct {
	Pairs []models.ImagePair
	// Skipped are the slots omitted on request, with their original index.
	Skipped []models.ImagePair
	// Errors are the slots dropped because they could not be resolved.
	Errors      []models.SlotError
	DefaultBack string
	FrontCount  int
}

// Resolve pairs every front with its back. Fronts with a double-sided back of
// the same relative path get that back; all others share the default back.
func (s *DirectoryScanner) Resolve(ctx context.Context, opts ResolveOptions) (*Resolution, error) {
	fronts, err := s.FindImages(ctx, opts.FrontDir)
	if err != nil {
		return nil, err
	}
	if len(fronts) == 0 {
		return nil, fmt.Errorf("%w: no front images found in %s", models.ErrResolution, opts.FrontDir)
	}

	doubleSided, err := s.optionalImages(ctx, opts.DoubleSidedDir)
	if err != nil {
		return nil, err
	}
	if opts.OnlyFronts && len(doubleSided) > 0 {
		return nil, fmt.Errorf("%w: cannot print only fronts with double-sided cards in %s",
			models.ErrConfiguration, opts.DoubleSidedDir)
	}

	res := &Resolution{FrontCount: len(fronts)}

	if !opts.OnlyFronts {
		backs, err := s.optionalImages(ctx, opts.BackDir)
		if err != nil {
			return nil, err
		}
		if len(backs) > 1 {
			s.logger.Info("Found %d back images in %s, using %s", len(backs), opts.BackDir, backs[0])
		}
		if len(backs) > 0 {
			res.DefaultBack = filepath.Join(opts.BackDir, backs[0])
			if err := probeImage(res.DefaultBack); err != nil {
				return nil, fmt.Errorf("%w: default back %s is unreadable: %v", models.ErrConfiguration, res.DefaultBack, err)
			}
		}
		if res.DefaultBack == "" && len(doubleSided) == 0 {
			return nil, fmt.Errorf("%w: back image directory %q is empty and there are no double-sided backs",
				models.ErrConfiguration, opts.BackDir)
		}
	}

	frontSet := make(map[string]bool, len(fronts))
	for _, rel := range fronts {
		frontSet[rel] = true
	}
	dsSet := make(map[string]bool, len(doubleSided))
	for _, rel := range doubleSided {
		dsSet[rel] = true
		if !frontSet[rel] {
			res.Errors = append(res.Errors, models.SlotError{
				Index: -1,
				Path:  filepath.Join(opts.DoubleSidedDir, rel),
				Err:   fmt.Errorf("%w: double-sided back has no matching front", models.ErrResolution),
			})
		}
	}

	skip := make(map[int]bool, len(opts.Skip))
	for _, idx := range opts.Skip {
		if idx < 0 || idx >= len(fronts) {
			s.logger.Warn("Ignoring skip index %d outside range 0-%d", idx, len(fronts)-1)
			continue
		}
		skip[idx] = true
	}

	for i, rel := range fronts {
		pair := models.ImagePair{Index: i, Front: filepath.Join(opts.FrontDir, rel)}

		if skip[i] {
			pair.Skipped = true
			res.Skipped = append(res.Skipped, pair)
			s.logger.Debug("Skipping slot %d: %s", i, rel)
			continue
		}

		if err := probeImage(pair.Front); err != nil {
			res.Errors = append(res.Errors, models.SlotError{Index: i, Path: pair.Front,
				Err: fmt.Errorf("%w: unreadable front: %v", models.ErrResolution, err)})
			continue
		}

		switch {
		case opts.OnlyFronts:
		case dsSet[rel]:
			back := filepath.Join(opts.DoubleSidedDir, rel)
			if err := probeImage(back); err != nil {
				res.Errors = append(res.Errors, models.SlotError{Index: i, Path: back,
					Err: fmt.Errorf("%w: unreadable double-sided back: %v", models.ErrResolution, err)})
				continue
			}
			pair.Back = back
		case res.DefaultBack != "":
			pair.Back = res.DefaultBack
			pair.BackShared = true
		default:
			res.Errors = append(res.Errors, models.SlotError{Index: i, Path: pair.Front,
				Err: fmt.Errorf("%w: no back image for front", models.ErrResolution)})
			continue
		}

		res.Pairs = append(res.Pairs, pair)
	}

	if len(res.Pairs) == 0 {
		return res, fmt.Errorf("%w: none of the %d fronts in %s could be placed",
			models.ErrResolution, len(fronts), opts.FrontDir)
	}

	s.logger.Info("Resolved %d of %d fronts (%d skipped, %d errors)",
		len(res.Pairs), len(fronts), len(res.Skipped), len(res.Errors))
	return res, nil
}

// optionalImages scans a directory that may be unset or absent.
func (s *DirectoryScanner) optionalImages(ctx context.Context, dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		s.logger.Debug("Directory %s does not exist, treating as empty", dir)
		return nil, nil
	}
	return s.FindImages(ctx, dir)
}

func probeImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _, err = image.DecodeConfig(f)
	return err
}
