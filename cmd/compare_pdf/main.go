package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/kpauljoseph/cardsheet/internal/pdf"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
)

func main() {
	ppi := flag.Int("ppi", 100, "resolution pages are rendered at before hashing")
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Println("Usage: compare_pdf [-ppi 100] [-v] file1.pdf file2.pdf")
		os.Exit(1)
	}
	pdf1Path, pdf2Path := flag.Arg(0), flag.Arg(1)

	level := logger.LevelInfo
	if *verbose {
		level = logger.LevelDebug
	}
	log := logger.New(logger.WithPrefix("[compare_pdf] "), logger.WithLevel(level))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	diffs, err := pdf.Compare(ctx, pdf.NewRasterizer(log), pdf1Path, pdf2Path, *ppi)
	if err != nil {
		fmt.Printf("Error comparing PDFs: %v\n", err)
		os.Exit(1)
	}

	changed := 0
	for _, d := range diffs {
		fmt.Printf("\nPage %d:\n", d.Page)
		switch {
		case d.HashA == "":
			fmt.Printf("Only in %s\n", pdf2Path)
		case d.HashB == "":
			fmt.Printf("Only in %s\n", pdf1Path)
		default:
			fmt.Printf("PDF 1: %dx%d px, hash %s\n", d.SizeA.X, d.SizeA.Y, d.HashA)
			fmt.Printf("PDF 2: %dx%d px, hash %s\n", d.SizeB.X, d.SizeB.Y, d.HashB)
			fmt.Printf("Hashes match: %v\n", !d.Changed())
		}
		if d.Changed() {
			changed++
		}
	}

	fmt.Printf("\n%d of %d pages differ\n", changed, len(diffs))
	if changed > 0 {
		os.Exit(2)
	}
}
