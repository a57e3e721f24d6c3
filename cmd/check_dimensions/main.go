package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kpauljoseph/cardsheet/internal/layout"
)

// Rendered pages round to whole pixels, so sizes drift by a fraction of a millimeter.
const paperToleranceMM = 1.0

func main() {
	pdfPath := flag.String("file", "", "Path to PDF file")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Println("Please provide a PDF file path using -file flag")
		os.Exit(1)
	}

	fmt.Printf("Analyzing PDF: %s\n", *pdfPath)

	// Get page dimensions
	dims, err := api.PageDimsFile(*pdfPath)
	if err != nil {
		fmt.Printf("Error getting page dimensions: %v\n", err)
		os.Exit(1)
	}

	for i, dim := range dims {
		widthMM := layout.PointsToMillimeters(dim.Width)
		heightMM := layout.PointsToMillimeters(dim.Height)

		fmt.Printf("\nPage %d:\n", i+1)
		fmt.Printf("Dimensions (Width x Height): %.3f x %.3f points\n", dim.Width, dim.Height)
		fmt.Printf("Dimensions (Width x Height): %.1f x %.1f mm\n", widthMM, heightMM)
		fmt.Printf("Dimensions (Width x Height): %.2f x %.2f in\n",
			layout.Length(widthMM).Inches(), layout.Length(heightMM).Inches())

		if paper, ok := layout.MatchPaperSize(widthMM, heightMM, paperToleranceMM); ok {
			fmt.Printf("Paper size: %s\n", paper.Name)
		} else {
			fmt.Println("Paper size: not a known paper size")
		}
	}
}
