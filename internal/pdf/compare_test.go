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
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

func changedPages(diffs []pdf.PageDiff) []int {
	pages := []int{}
	for _, d := range diffs {
		if d.Changed() {
			pages = append(pages, d.Page)
		}
	}
	return pages
}

var _ = Describe("Compare", func() {
	Context("with page lists", func() {
		It("should report identical pages as unchanged", func() {
			a := []*image.NRGBA{imaging.New(20, 30, color.White), imaging.New(20, 30, color.Black)}
			b := []*image.NRGBA{imaging.New(20, 30, color.White), imaging.New(20, 30, color.Black)}

			diffs := pdf.ComparePages(a, b)
			Expect(diffs).To(HaveLen(2))
			Expect(changedPages(diffs)).To(BeEmpty())
			Expect(diffs[1].SizeA).To(Equal(image.Pt(20, 30)))
		})

		It("should flag the pages whose pixels differ", func() {
			a := []*image.NRGBA{imaging.New(20, 30, color.White), imaging.New(20, 30, color.Black)}
			b := []*image.NRGBA{imaging.New(20, 30, color.White), imaging.New(20, 30, color.White)}

			Expect(changedPages(pdf.ComparePages(a, b))).To(Equal([]int{2}))
		})

		It("should report pages only one side has as missing", func() {
			a := []*image.NRGBA{imaging.New(20, 30, color.White)}
			b := []*image.NRGBA{imaging.New(20, 30, color.White), imaging.New(20, 30, color.White)}

			diffs := pdf.ComparePages(a, b)
			Expect(diffs).To(HaveLen(2))
			Expect(diffs[0].Missing()).To(BeFalse())
			Expect(diffs[1].Missing()).To(BeTrue())
			Expect(diffs[1].HashA).To(BeEmpty())
			Expect(changedPages(diffs)).To(Equal([]int{2}))
		})
	})

	Context("with PDF files", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "cardsheet-compare-test-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(tempDir)
		})

		writePDF := func(name string, pages ...*image.NRGBA) string {
			renderer, err := render.New(render.Options{PPI: 100, Quality: 90}, rasterizerTestLogger())
			Expect(err).NotTo(HaveOccurred())
			path := filepath.Join(tempDir, name)
			Expect(renderer.WritePDF(pages, path)).To(Succeed())
			return path
		}

		It("should find the back page that an offset run changed", func() {
			original := writePDF("game.pdf",
				imaging.New(200, 300, color.White),
				imaging.New(200, 300, color.Black))
			shifted := writePDF("game_offset.pdf",
				imaging.New(200, 300, color.White),
				imaging.New(200, 300, color.Gray{Y: 128}))

			diffs, err := pdf.Compare(context.Background(), pdf.NewRasterizer(rasterizerTestLogger()), original, shifted, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(diffs).To(HaveLen(2))
			Expect(changedPages(diffs)).To(Equal([]int{2}))
		})

		It("should fail with an io error when a file is missing", func() {
			original := writePDF("game.pdf", imaging.New(200, 300, color.White))

			_, err := pdf.Compare(context.Background(), pdf.NewRasterizer(rasterizerTestLogger()),
				original, filepath.Join(tempDir, "missing.pdf"), 50)
			Expect(errors.Is(err, models.ErrIO)).To(BeTrue())
		})
	})
})
