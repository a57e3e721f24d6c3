package render

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kpauljoseph/cardsheet/internal/layout"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

const (
	FormatPNG = "png"
	FormatJPG = "jpg"

	DefaultQuality = 75
)

type Options struct {
	PPI     int
	Quality int
	// ImageFormat applies to per-page image output only.
	ImageFormat string
	// Label is stamped as "<label> - sheet N" when set.
	Label   string
	LabelQR bool
	// Duplex pages alternate front and back, two pages per physical sheet.
	Duplex bool
}

type Renderer struct {
	opts   Options
	logger *logger.Logger
}

func New(opts Options, logger *logger.Logger) (*Renderer, error) {
	if opts.PPI <= 0 {
		return nil, fmt.Errorf("%w: ppi must be positive, got %d", models.ErrConfiguration, opts.PPI)
	}
	if opts.Quality < 0 || opts.Quality > 100 {
		return nil, fmt.Errorf("%w: quality must be within 0-100, got %d", models.ErrConfiguration, opts.Quality)
	}
	switch strings.ToLower(opts.ImageFormat) {
	case "", FormatPNG:
		opts.ImageFormat = FormatPNG
	case FormatJPG, "jpeg":
		opts.ImageFormat = FormatJPG
	default:
		return nil, fmt.Errorf("%w: unsupported image format %q", models.ErrConfiguration, opts.ImageFormat)
	}
	return &Renderer{opts: opts, logger: logger}, nil
}

// SheetNumber is the 1-based physical sheet a page index prints on.
func (r *Renderer) SheetNumber(page int) int {
	if r.opts.Duplex {
		return page/2 + 1
	}
	return page + 1
}

// WritePDF writes pages as one multi-page PDF at path. Page size follows the
// pixel size at the configured PPI.
func (r *Renderer) WritePDF(pages []*image.NRGBA, path string) error {
	if err := r.prepare(pages); err != nil {
		return err
	}
	if err := checkWritable(filepath.Dir(path)); err != nil {
		return err
	}

	width := layout.PixelsToMillimeters(pages[0].Bounds().Dx(), r.opts.PPI)
	height := layout.PixelsToMillimeters(pages[0].Bounds().Dy(), r.opts.PPI)

	pdf := fpdf.New("P", "mm", "", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	for i, page := range pages {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, page, imaging.JPEG, imaging.JPEGQuality(r.jpegQuality())); err != nil {
			return fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}

		name := fmt.Sprintf("page%d", i+1)
		opts := fpdf.ImageOptions{ImageType: "JPEG"}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, 0, 0, width, height, false, opts, 0, "")
		r.logger.Trace("Added page %d to PDF", i+1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("%w: failed to write PDF %s: %v", models.ErrIO, path, err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		r.logger.Warn("Could not verify page count of %s: %v", path, err)
	} else if count != len(pages) {
		return fmt.Errorf("%w: PDF %s has %d pages, expected %d", models.ErrIO, path, count, len(pages))
	}

	r.logger.Info("Generated PDF: %s (%d pages)", path, len(pages))
	return nil
}

// IsPDFPath reports whether path names a PDF file by its extension.
func IsPDFPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ImageDir resolves the directory page images go to. An existing directory is
// used as is. An existing file or a *.pdf path yields its parent.
func ImageDir(path string) string {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return path
		}
		return filepath.Dir(path)
	}
	if IsPDFPath(path) {
		return filepath.Dir(path)
	}
	return path
}

// WriteImages writes one file per page into the directory ImageDir resolves
// from dir, creating it when its parent exists. It returns the written paths
// in page order.
func (r *Renderer) WriteImages(pages []*image.NRGBA, dir string) ([]string, error) {
	if err := r.prepare(pages); err != nil {
		return nil, err
	}
	dir = ImageDir(dir)
	if err := checkWritable(filepath.Dir(filepath.Clean(dir))); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory: %v", models.ErrIO, err)
	}

	format := imaging.PNG
	if r.opts.ImageFormat == FormatJPG {
		format = imaging.JPEG
	}

	paths := make([]string, 0, len(pages))
	for i, page := range pages {
		path := filepath.Join(dir, fmt.Sprintf("page%d.%s", i+1, r.opts.ImageFormat))
		if err := r.writeImage(path, page, format); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	r.logger.Info("Generated images: %s (%d pages)", dir, len(pages))
	return paths, nil
}

func (r *Renderer) writeImage(path string, page image.Image, format imaging.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", models.ErrIO, path, err)
	}
	defer f.Close()

	if err := imaging.Encode(f, page, format, imaging.JPEGQuality(r.jpegQuality())); err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", models.ErrIO, path, err)
	}
	return f.Close()
}

// prepare validates page geometry and stamps labels in place.
func (r *Renderer) prepare(pages []*image.NRGBA) error {
	if len(pages) == 0 {
		return fmt.Errorf("%w: no pages to render", models.ErrLayout)
	}
	size := pages[0].Bounds().Size()
	for i, page := range pages {
		if page.Bounds().Size() != size {
			return fmt.Errorf("%w: page %d is %v, expected %v", models.ErrLayout, i+1, page.Bounds().Size(), size)
		}
	}

	if r.opts.Label == "" {
		return nil
	}
	qrText := ""
	if r.opts.LabelQR {
		qrText = r.opts.Label
	}
	for i, page := range pages {
		text := SheetLabel(r.opts.Label, r.SheetNumber(i))
		if err := stampLabel(page, text, qrText, r.opts.PPI); err != nil {
			return err
		}
	}
	return nil
}

// jpegQuality maps quality 0 to the encoder's lowest setting.
func (r *Renderer) jpegQuality() int {
	return max(1, r.opts.Quality)
}

// checkWritable probes dir by creating and removing a temp file.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".cardsheet-probe-*")
	if err != nil {
		return fmt.Errorf("%w: output directory %s is not writable: %v", models.ErrIO, dir, err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return nil
}
