package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/cardsheet/internal/offset"
	"github.com/kpauljoseph/cardsheet/internal/pdf"
	"github.com/kpauljoseph/cardsheet/internal/profile"
	"github.com/kpauljoseph/cardsheet/internal/render"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

var offsetCmd = &cobra.Command{
	Use:   "offset",
	Short: "Shift the back pages of an existing PDF to correct printer misalignment",
	Long: `Offset rasterizes a PDF made by "cardsheet create", moves every back page
by the given offset and writes a corrected PDF. Print it, measure how far the
backs land from the fronts and save the correction as a profile.`,
	Args: cobra.NoArgs,
	RunE: runOffset,
}

func init() {
	rootCmd.AddCommand(offsetCmd)

	f := offsetCmd.Flags()
	f.String("pdf", "game/output/game.pdf", "path of the input PDF")
	f.StringP("output", "o", "", "path of the corrected PDF (default <pdf>_offset.pdf)")
	f.IntP("x-offset", "x", 0, "x offset in pixels at 300 PPI")
	f.IntP("y-offset", "y", 0, "y offset in pixels at 300 PPI")
	f.String("profile", "", "start from a saved offset profile; 'default' uses the default profile")
	f.Bool("save", false, "save the offset as the legacy offset")
	f.String("save-profile", "", "save the offset as a named profile")
	f.String("paper-size", "", "paper size recorded with --save-profile")
	f.String("description", "", "description recorded with --save-profile")
	f.Int("ppi", 300, "pixels per inch used to rasterize the PDF")
	f.Int("quality", 100, "compression quality of the corrected PDF, 0-100")
	f.String("offset-fill", offset.FillWrap, "how shifted pages are filled: wrap, edge or blank")
	f.Bool("all-pages", false, "shift every page, for PDFs printed with only fronts")
}

func runOffset(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	off, err := pickOffset(cmd, store)
	if err != nil {
		return err
	}
	log.Info("Using x offset: %d, y offset: %d", off.X, off.Y)

	if mustGetBool(cmd, "save") {
		if err := store.SaveLegacy(off); err != nil {
			return err
		}
	}
	if name := mustGetString(cmd, "save-profile"); name != "" {
		if !changed(cmd, "x-offset") || !changed(cmd, "y-offset") {
			return fmt.Errorf("%w: both --x-offset and --y-offset are required with --save-profile", models.ErrConfiguration)
		}
		if _, err := store.Save(name, off.X, off.Y, mustGetString(cmd, "paper-size"), mustGetString(cmd, "description")); err != nil {
			return err
		}
	}

	policy, err := offset.ParseFillPolicy(mustGetString(cmd, "offset-fill"))
	if err != nil {
		return err
	}

	ppi := mustGetInt(cmd, "ppi")
	renderer, err := render.New(render.Options{PPI: ppi, Quality: mustGetInt(cmd, "quality")}, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	input := mustGetString(cmd, "pdf")
	pages, err := pdf.NewRasterizer(log).Rasterize(ctx, input, ppi)
	if err != nil {
		return fmt.Errorf("cannot offset %s: %w", input, err)
	}

	offset.New(policy, log).Apply(pages, offset.ScaleForPPI(off, ppi), !mustGetBool(cmd, "all-pages"))

	output := mustGetString(cmd, "output")
	if output == "" {
		output = strings.TrimSuffix(input, ".pdf") + "_offset.pdf"
	}
	if !render.IsPDFPath(output) {
		return fmt.Errorf("%w: output %q must end in .pdf", models.ErrConfiguration, output)
	}
	if err := renderer.WritePDF(pages, output); err != nil {
		return err
	}

	log.Info("Offset PDF: %s", output)
	return nil
}

// pickOffset starts from the legacy offset, then a chosen profile, and lets
// explicit flags override each axis.
func pickOffset(cmd *cobra.Command, store *profile.Store) (models.Offset, error) {
	var off models.Offset

	legacy, ok, err := store.LoadLegacy()
	switch {
	case err != nil:
		log.Warn("Ignoring legacy offset: %v", err)
	case ok:
		off = legacy
		log.Info("Loaded legacy offset: x=%d, y=%d", off.X, off.Y)
	}

	if name := mustGetString(cmd, "profile"); name != "" {
		var p profile.Profile
		if name == profile.DefaultKeyword {
			var found bool
			p, found, err = store.GetDefault()
			if err == nil && !found {
				err = fmt.Errorf("%w: no default offset profile set", models.ErrNotFound)
			}
		} else {
			p, err = store.Get(name)
		}
		if err != nil {
			return models.Offset{}, err
		}
		off = p.Offset()
		log.Info("Loaded offset profile %q: x=%d, y=%d", p.Name, off.X, off.Y)
	}

	if changed(cmd, "x-offset") {
		off.X = mustGetInt(cmd, "x-offset")
	}
	if changed(cmd, "y-offset") {
		off.Y = mustGetInt(cmd, "y-offset")
	}
	return off, nil
}
