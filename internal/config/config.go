// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/kpauljoseph/cardsheet/internal/layout"
	"github.com/kpauljoseph/cardsheet/internal/offset"
	"github.com/kpauljoseph/cardsheet/internal/render"
	"github.com/kpauljoseph/cardsheet/pkg/models"
	"github.com/kpauljoseph/cardsheet/pkg/utils"
)

const (
	DefaultPPI     = 300
	DefaultQuality = render.DefaultQuality
)

type Config struct {
	FrontDir       string `yaml:"front_dir"`
	BackDir        string `yaml:"back_dir"`
	DoubleSidedDir string `yaml:"double_sided_dir"`

	Output       string `yaml:"output"`
	OutputImages bool   `yaml:"output_images"`
	ImageFormat  string `yaml:"image_format"`

	CardSize      string `yaml:"card_size"`
	PaperSize     string `yaml:"paper_size"`
	Registration  string `yaml:"registration"`
	PPI           int    `yaml:"ppi"`
	Quality       int    `yaml:"quality"`
	Crop          string `yaml:"crop"`
	ExtendCorners int    `yaml:"extend_corners"`
	OnlyFronts    bool   `yaml:"only_fronts"`
	Skip          []int  `yaml:"skip"`

	Name    string `yaml:"name"`
	LabelQR bool   `yaml:"label_qr"`

	// Offset is an explicit correction; it wins over any profile.
	Offset        *models.Offset `yaml:"offset"`
	OffsetProfile string         `yaml:"offset_profile"`
	// LoadOffset falls back to the legacy saved offset.
	LoadOffset    bool           `yaml:"load_offset"`
	OffsetFill    string         `yaml:"offset_fill"`

	Workers int    `yaml:"workers"`
	DataDir string `yaml:"data_dir"`
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() *Config {
	return &Config{
		FrontDir:       "game/front",
		BackDir:        "game/back",
		DoubleSidedDir: "game/double_sided",
		Output:         "game/output/game.pdf",
		ImageFormat:    render.FormatPNG,
		CardSize:       layout.CardStandard.Name,
		PaperSize:      layout.PaperLetter.Name,
		Registration:   string(layout.RegistrationThree),
		PPI:            DefaultPPI,
		Quality:        DefaultQuality,
		OffsetFill:     offset.FillWrap,
		Workers:        runtime.NumCPU(),
		DataDir:        utils.GetDefaultDataDir(),
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config: %v", models.ErrConfiguration, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config %s: %v", models.ErrConfiguration, path, err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.DataDir == "" {
		cfg.DataDir = utils.GetDefaultDataDir()
	}

	return cfg, nil
}

// Validate checks every option that can be checked without touching the
// filesystem.
func (c *Config) Validate() error {
	if c.FrontDir == "" {
		return fmt.Errorf("%w: front_dir is required", models.ErrConfiguration)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output is required", models.ErrConfiguration)
	}
	if !c.OutputImages && !render.IsPDFPath(c.Output) {
		return fmt.Errorf("%w: output %q must end in .pdf unless output_images is set", models.ErrConfiguration, c.Output)
	}
	if c.PPI <= 0 {
		return fmt.Errorf("%w: ppi must be positive, got %d", models.ErrConfiguration, c.PPI)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("%w: quality must be within 0-100, got %d", models.ErrConfiguration, c.Quality)
	}
	if c.ExtendCorners < 0 {
		return fmt.Errorf("%w: extend_corners must not be negative, got %d", models.ErrConfiguration, c.ExtendCorners)
	}
	for _, idx := range c.Skip {
		if idx < 0 {
			return fmt.Errorf("%w: skip index %d is negative", models.ErrConfiguration, idx)
		}
	}
	if c.Offset != nil && c.OffsetProfile != "" {
		return fmt.Errorf("%w: use either an explicit offset or an offset profile, not both", models.ErrConfiguration)
	}

	if _, err := c.Card(); err != nil {
		return err
	}
	if _, err := c.Paper(); err != nil {
		return err
	}
	if _, err := c.Marks(); err != nil {
		return err
	}
	if _, err := c.CropLength(); err != nil {
		return err
	}
	if _, err := offset.ParseFillPolicy(c.OffsetFill); err != nil {
		return err
	}
	return nil
}

func (c *Config) Card() (layout.CardSize, error) {
	return layout.LookupCardSize(c.CardSize)
}

func (c *Config) Paper() (layout.PaperSize, error) {
	return layout.LookupPaperSize(c.PaperSize)
}

func (c *Config) Marks() (layout.Registration, error) {
	return layout.ParseRegistration(c.Registration)
}

// CropLength parses Crop; an empty value means no crop.
func (c *Config) CropLength() (layout.Length, error) {
	if c.Crop == "" {
		return 0, nil
	}
	return layout.ParseLength(c.Crop)
}

func (c *Config) GridOptions() (layout.GridOptions, error) {
	crop, err := c.CropLength()
	if err != nil {
		return layout.GridOptions{}, err
	}
	return layout.GridOptions{PPI: c.PPI, Crop: crop, ExtendCorners: c.ExtendCorners}, nil
}
