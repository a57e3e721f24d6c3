package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kpauljoseph/cardsheet/internal/config"
	"github.com/kpauljoseph/cardsheet/internal/layout"
	"github.com/kpauljoseph/cardsheet/internal/sheet"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a print-ready PDF or page images from card images",
	Long: `Create reads card fronts, the shared back and any double-sided backs,
lays them out on the chosen paper and writes a PDF (or one image per page).
Flags override values from the config file.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	f := createCmd.Flags()
	f.String("front-dir", "", "directory containing the card fronts")
	f.String("back-dir", "", "directory containing the shared card back")
	f.String("double-sided-dir", "", "directory containing backs for double-sided cards")
	f.StringP("output", "o", "", "output PDF path, or directory with --output-images")
	f.Bool("output-images", false, "create one image per page instead of a PDF")
	f.String("image-format", "", "page image format: png or jpg")
	f.String("card-size", "", "card size: "+strings.Join(layout.CardSizeNames(), ", "))
	f.String("paper-size", "", "paper size: "+strings.Join(layout.PaperSizeNames(), ", "))
	f.String("registration", "", "registration marks: none, 3 or 4")
	f.Int("ppi", 0, "pixels per inch")
	f.Int("quality", 0, "compression quality, 0-100")
	f.String("crop", "", "crop from every card edge, e.g. 3mm or 0.125in (bare numbers are mm)")
	f.Int("extend-corners", 0, "pixels of card border to rebuild over rounded corners")
	f.Bool("only-fronts", false, "only print the card fronts")
	f.IntSlice("skip", nil, "card indices to leave out, e.g. --skip 0,4")
	f.String("name", "", "label every sheet with this name")
	f.Bool("label-qr", false, "add a QR code of the name next to the label")
	f.IntP("x-offset", "x", 0, "explicit x offset in pixels at 300 PPI")
	f.IntP("y-offset", "y", 0, "explicit y offset in pixels at 300 PPI")
	f.String("offset-profile", "", "apply a saved offset profile; 'default' uses the default profile")
	f.Bool("load-offset", false, "apply the legacy saved offset")
	f.String("offset-fill", "", "how shifted pages are filled: wrap, edge or blank")
	f.Int("workers", 0, "pages composed in parallel")
	f.Bool("no-progress", false, "hide the progress bar (always hidden with --verbose)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCreateFlags(cmd, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gen := sheet.NewGenerator(log)
	plan, err := gen.Prepare(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to prepare sheets: %w", err)
	}

	if !mustGetBool(cmd, "no-progress") && !log.IsVerbose() {
		bar := progressbar.NewOptions(plan.Pages(cfg.OnlyFronts),
			progressbar.OptionSetDescription("Composing pages"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("pages"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		defer bar.Finish()
		gen = sheet.NewGenerator(log, sheet.WithProgress(bar))
	}

	report, err := gen.Run(ctx, cfg, plan)
	if err != nil {
		return fmt.Errorf("failed to create sheets: %w", err)
	}

	fmt.Fprintln(os.Stderr)
	report.Print(log)
	return nil
}

func applyCreateFlags(cmd *cobra.Command, cfg *config.Config) {
	stringFlags := map[string]*string{
		"front-dir":        &cfg.FrontDir,
		"back-dir":         &cfg.BackDir,
		"double-sided-dir": &cfg.DoubleSidedDir,
		"output":           &cfg.Output,
		"image-format":     &cfg.ImageFormat,
		"card-size":        &cfg.CardSize,
		"paper-size":       &cfg.PaperSize,
		"registration":     &cfg.Registration,
		"crop":             &cfg.Crop,
		"name":             &cfg.Name,
		"offset-profile":   &cfg.OffsetProfile,
		"offset-fill":      &cfg.OffsetFill,
	}
	for name, dst := range stringFlags {
		if changed(cmd, name) {
			*dst = mustGetString(cmd, name)
		}
	}

	intFlags := map[string]*int{
		"ppi":            &cfg.PPI,
		"quality":        &cfg.Quality,
		"extend-corners": &cfg.ExtendCorners,
		"workers":        &cfg.Workers,
	}
	for name, dst := range intFlags {
		if changed(cmd, name) {
			*dst = mustGetInt(cmd, name)
		}
	}

	boolFlags := map[string]*bool{
		"output-images": &cfg.OutputImages,
		"only-fronts":   &cfg.OnlyFronts,
		"label-qr":      &cfg.LabelQR,
		"load-offset":   &cfg.LoadOffset,
	}
	for name, dst := range boolFlags {
		if changed(cmd, name) {
			*dst = mustGetBool(cmd, name)
		}
	}

	if changed(cmd, "skip") {
		cfg.Skip = mustGetIntSlice(cmd, "skip")
	}

	if changed(cmd, "x-offset") || changed(cmd, "y-offset") {
		off := models.Offset{}
		if cfg.Offset != nil {
			off = *cfg.Offset
		}
		if changed(cmd, "x-offset") {
			off.X = mustGetInt(cmd, "x-offset")
		}
		if changed(cmd, "y-offset") {
			off.Y = mustGetInt(cmd, "y-offset")
		}
		cfg.Offset = &off
	}
}
