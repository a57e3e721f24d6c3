package pdf_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/cardsheet/internal/pdf"
	"github.com/kpauljoseph/cardsheet/internal/render"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

func rasterizerTestLogger() *logger.Logger {
	log := logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[pdf-test] "),
		logger.WithFlags(0),
	)
	log.SetVerbose(true)
	log.SetLevel(logger.LevelTrace)
	return log
}

var _ = Describe("PDF Rasterizer", func() {
	var (
		tempDir    string
		pdfPath    string
		testLogger *logger.Logger
		rasterizer *pdf.FitzRasterizer
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "cardsheet-pdf-test-*")
		Expect(err).NotTo(HaveOccurred())

		testLogger = rasterizerTestLogger()
		rasterizer = pdf.NewRasterizer(testLogger)

		pages := []*image.NRGBA{
			imaging.New(300, 600, color.White),
			imaging.New(300, 600, color.Black),
		}
		renderer, err := render.New(render.Options{PPI: 100, Quality: 90}, testLogger)
		Expect(err).NotTo(HaveOccurred())

		pdfPath = filepath.Join(tempDir, "deck.pdf")
		Expect(renderer.WritePDF(pages, pdfPath)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	It("should render every page at the requested resolution", func() {
		pages, err := rasterizer.Rasterize(context.Background(), pdfPath, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(HaveLen(2))

		for _, page := range pages {
			Expect(page.Bounds().Dx()).To(BeNumerically("~", 300, 2))
			Expect(page.Bounds().Dy()).To(BeNumerically("~", 600, 2))
		}

		center := pages[1].NRGBAAt(150, 300)
		Expect(center.R).To(BeNumerically("<", 40))
	})

	It("should stop on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := rasterizer.Rasterize(ctx, pdfPath, 100)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("should fail with an io error for a missing file", func() {
		_, err := rasterizer.Rasterize(context.Background(), filepath.Join(tempDir, "missing.pdf"), 100)
		Expect(errors.Is(err, models.ErrIO)).To(BeTrue())
	})

	It("should reject a non-positive resolution", func() {
		_, err := rasterizer.Rasterize(context.Background(), pdfPath, 0)
		Expect(errors.Is(err, models.ErrConfiguration)).To(BeTrue())
	})
})
