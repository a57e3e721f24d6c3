package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Known junk files across OSes
var extraneousFiles = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,
	"Icon\r":      true,
}

type DirectoryScanner struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *DirectoryScanner {
	return &DirectoryScanner{
		logger: logger,
	}
}

// FindImages walks dir and returns the card images below it as paths relative
// to dir, in lexicographic order. A missing directory is a configuration error;
// an empty one yields an empty slice.
func (s *DirectoryScanner) FindImages(ctx context.Context, dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: image directory %q is invalid: %v", models.ErrConfiguration, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: image directory %q is not a directory", models.ErrConfiguration, dir)
	}

	var images []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if d.IsDir() {
			s.logger.Trace("Scanning directory: %s", path)
			return nil
		}

		if !isCardImage(d.Name()) {
			s.logger.Trace("Ignoring file: %s", path)
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			relPath = path
		}
		images = append(images, relPath)
		return nil
	})

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrIO, err)
	}

	sort.Strings(images)
	s.logger.Debug("Found %d images in %s", len(images), dir)
	return images, nil
}

func isCardImage(name string) bool {
	if extraneousFiles[name] || strings.HasPrefix(name, "._") {
		return false
	}
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}
