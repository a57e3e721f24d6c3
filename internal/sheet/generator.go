package sheet

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kpauljoseph/cardsheet/internal/compose"
	"github.com/kpauljoseph/cardsheet/internal/config"
	"github.com/kpauljoseph/cardsheet/internal/layout"
	"github.com/kpauljoseph/cardsheet/internal/offset"
	"github.com/kpauljoseph/cardsheet/internal/profile"
	"github.com/kpauljoseph/cardsheet/internal/render"
	"github.com/kpauljoseph/cardsheet/internal/scanner"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// Progress receives one tick per composed page.
type Progress interface {
	Add(n int) error
}

type Generator struct {
	logger   *logger.Logger
	scanner  *scanner.DirectoryScanner
	store    *profile.Store
	progress Progress
}

type Option func(*Generator)

func WithProgress(p Progress) Option {
	return func(g *Generator) {
		g.progress = p
	}
}

// WithStore overrides the profile store otherwise opened from the config's data dir.
func WithStore(store *profile.Store) Option {
	return func(g *Generator) {
		g.store = store
	}
}

func NewGenerator(logger *logger.Logger, options ...Option) *Generator {
	g := &Generator{
		logger:  logger,
		scanner: scanner.New(logger),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Plan is everything a run needs that can be worked out before composing.
type Plan struct {
	Grid       layout.Grid
	Resolution *scanner.Resolution
	Offset     models.Offset
	Source     string
}

// Prepare validates the configuration and resolves layout, images and offset.
// Nothing is written.
func (g *Generator) Prepare(ctx context.Context, cfg *config.Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	card, err := cfg.Card()
	if err != nil {
		return nil, err
	}
	paper, err := cfg.Paper()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.GridOptions()
	if err != nil {
		return nil, err
	}
	grid, err := layout.NewGrid(card, paper, opts)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Layout: %s", grid)

	off, source, err := ResolveOffset(cfg, g.profileStore(cfg), g.logger)
	if err != nil {
		return nil, err
	}

	res, err := g.scanner.Resolve(ctx, scanner.ResolveOptions{
		FrontDir:       cfg.FrontDir,
		BackDir:        cfg.BackDir,
		DoubleSidedDir: cfg.DoubleSidedDir,
		OnlyFronts:     cfg.OnlyFronts,
		Skip:           cfg.Skip,
	})
	if err != nil {
		return nil, err
	}

	return &Plan{Grid: grid, Resolution: res, Offset: off, Source: source}, nil
}

// Pages is the number of pages the plan renders.
func (p *Plan) Pages(onlyFronts bool) int {
	n := p.Grid.PageCount(len(p.Resolution.Pairs))
	if onlyFronts {
		return n
	}
	return 2 * n
}

// Generate runs the whole pipeline and writes the output named by cfg.
func (g *Generator) Generate(ctx context.Context, cfg *config.Config) (*Report, error) {
	start := time.Now()
	plan, err := g.Prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}
	report, err := g.Run(ctx, cfg, plan)
	if err != nil {
		return nil, err
	}
	report.StartTime = start
	return report, nil
}

// Run composes, corrects and renders a prepared plan.
func (g *Generator) Run(ctx context.Context, cfg *config.Config, plan *Plan) (*Report, error) {
	report := &Report{StartTime: time.Now()}
	report.Grid = plan.Grid
	report.FrontCount = plan.Resolution.FrontCount
	report.Slots = len(plan.Resolution.Pairs)
	report.Skipped = plan.Resolution.Skipped
	report.Errors = append(report.Errors, plan.Resolution.Errors...)

	marks, err := cfg.Marks()
	if err != nil {
		return nil, err
	}
	compositor := compose.New(plan.Grid, compose.Options{Registration: marks}, g.logger)

	duplex := !cfg.OnlyFronts
	pages, slotErrors, err := g.composeAll(ctx, compositor, plan.Resolution.Pairs, duplex, cfg.Workers)
	if err != nil {
		return nil, err
	}
	report.Errors = append(report.Errors, slotErrors...)
	report.FrontPages = compositor.Grid().PageCount(report.Slots)
	if duplex {
		report.BackPages = report.FrontPages
	}

	if !plan.Offset.IsZero() {
		policy, err := offset.ParseFillPolicy(cfg.OffsetFill)
		if err != nil {
			return nil, err
		}
		report.Offset = offset.ScaleForPPI(plan.Offset, cfg.PPI)
		report.OffsetSource = plan.Source
		offset.New(policy, g.logger).Apply(pages, report.Offset, duplex)
	}

	renderer, err := render.New(render.Options{
		PPI:         cfg.PPI,
		Quality:     cfg.Quality,
		ImageFormat: cfg.ImageFormat,
		Label:       cfg.Name,
		LabelQR:     cfg.LabelQR,
		Duplex:      duplex,
	}, g.logger)
	if err != nil {
		return nil, err
	}

	if cfg.OutputImages {
		paths, err := renderer.WriteImages(pages, cfg.Output)
		if err != nil {
			return nil, err
		}
		report.Outputs = paths
	} else {
		if err := renderer.WritePDF(pages, cfg.Output); err != nil {
			return nil, err
		}
		report.Outputs = []string{cfg.Output}
	}

	report.EndTime = time.Now()
	return report, nil
}

// composeAll renders every page concurrently. Duplex output interleaves each
// front page with its back page.
func (g *Generator) composeAll(ctx context.Context, c *compose.Compositor, pairs []models.ImagePair, duplex bool, workers int) ([]*image.NRGBA, []models.SlotError, error) {
	sheets := c.Pages(pairs)
	sides := []models.Side{models.SideFront}
	if duplex {
		sides = append(sides, models.SideBack)
	}

	pages := make([]*image.NRGBA, len(sheets)*len(sides))
	pageErrors := make([][]models.SlotError, len(pages))

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}

	for i, slots := range sheets {
		for j, side := range sides {
			idx := i*len(sides) + j
			eg.Go(func() error {
				page, errs, err := c.ComposePage(ctx, slots, side)
				if err != nil {
					return fmt.Errorf("failed to compose %s page %d: %w", side, i+1, err)
				}
				pages[idx] = page
				pageErrors[idx] = errs
				if g.progress != nil {
					_ = g.progress.Add(1)
				}
				g.logger.Debug("Composed %s page %d", side, i+1)
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var slotErrors []models.SlotError
	for _, errs := range pageErrors {
		slotErrors = append(slotErrors, errs...)
	}
	return pages, slotErrors, nil
}

func (g *Generator) profileStore(cfg *config.Config) *profile.Store {
	if g.store != nil {
		return g.store
	}
	return profile.NewStore(cfg.DataDir, g.logger)
}
