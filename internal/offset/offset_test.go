package offset_test

import (
	"errors"
	"image"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/cardsheet/internal/offset"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
	"github.com/kpauljoseph/cardsheet/pkg/utils"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 7, A: 255})
		}
	}
	return img
}

var _ = Describe("Offset", func() {
	var testLogger *logger.Logger

	BeforeEach(func() {
		testLogger = logger.New(
			logger.WithOutput(GinkgoWriter),
			logger.WithPrefix("[offset-test] "),
			logger.WithFlags(0),
		)
		testLogger.SetVerbose(true)
	})

	Context("fill policies", func() {
		DescribeTable("should keep the page dimensions",
			func(policy offset.FillPolicy, dx, dy int) {
				out := policy.Shift(gradient(12, 9), dx, dy)
				Expect(out.Bounds()).To(Equal(image.Rect(0, 0, 12, 9)))
			},
			Entry("wrap", offset.Wrap{}, 5, -3),
			Entry("wrap larger than the page", offset.Wrap{}, 40, 31),
			Entry("edge", offset.Edge{}, -4, 2),
			Entry("blank", offset.Blank{Color: color.White}, 3, 3),
		)

		It("should wrap pixels around to the opposite edge", func() {
			src := gradient(12, 9)
			out := offset.Wrap{}.Shift(src, 2, 1)

			Expect(out.NRGBAAt(2, 1)).To(Equal(src.NRGBAAt(0, 0)))
			Expect(out.NRGBAAt(0, 0)).To(Equal(src.NRGBAAt(10, 8)))
			Expect(out.NRGBAAt(1, 5)).To(Equal(src.NRGBAAt(11, 4)))
		})

		It("should map every pixel cyclically for negative shifts", func() {
			src := gradient(12, 9)
			out := offset.Wrap{}.Shift(src, -5, -7)

			for y := 0; y < 9; y++ {
				for x := 0; x < 12; x++ {
					Expect(out.NRGBAAt(x, y)).To(Equal(src.NRGBAAt((x+5)%12, (y+7)%9)))
				}
			}
		})

		It("should shift images whose bounds do not start at the origin", func() {
			src := gradient(12, 9).SubImage(image.Rect(2, 1, 12, 9))
			out := offset.Blank{Color: color.White}.Shift(src, 1, 0)

			Expect(out.Bounds()).To(Equal(image.Rect(0, 0, 10, 8)))
			Expect(out.NRGBAAt(0, 0)).To(Equal(color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
			Expect(out.NRGBAAt(1, 0)).To(Equal(gradient(12, 9).NRGBAAt(2, 1)))
		})

		It("should restore the original after an inverse wrap", func() {
			src := gradient(12, 9)
			out := offset.Wrap{}.Shift(offset.Wrap{}.Shift(src, 7, -4), -7, 4)
			Expect(utils.GenerateImageHash(out)).To(Equal(utils.GenerateImageHash(src)))
		})

		It("should repeat edge pixels into the uncovered area", func() {
			src := gradient(12, 9)
			out := offset.Edge{}.Shift(src, 3, 0)

			Expect(out.NRGBAAt(0, 4)).To(Equal(src.NRGBAAt(0, 4)))
			Expect(out.NRGBAAt(2, 4)).To(Equal(src.NRGBAAt(0, 4)))
			Expect(out.NRGBAAt(5, 4)).To(Equal(src.NRGBAAt(2, 4)))
		})

		It("should fill the uncovered area with the blank color", func() {
			src := gradient(12, 9)
			out := offset.Blank{Color: color.White}.Shift(src, -2, 0)

			Expect(out.NRGBAAt(11, 0)).To(Equal(color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
			Expect(out.NRGBAAt(0, 0)).To(Equal(src.NRGBAAt(2, 0)))
		})

		It("should parse policy names", func() {
			policy, err := offset.ParseFillPolicy("")
			Expect(err).NotTo(HaveOccurred())
			Expect(policy.Name()).To(Equal(offset.FillWrap))

			policy, err = offset.ParseFillPolicy("Edge")
			Expect(err).NotTo(HaveOccurred())
			Expect(policy.Name()).To(Equal(offset.FillEdge))

			_, err = offset.ParseFillPolicy("smear")
			Expect(errors.Is(err, models.ErrConfiguration)).To(BeTrue())
		})
	})

	Context("scaling", func() {
		DescribeTable("should scale calibrated offsets with floor rounding",
			func(in models.Offset, ppi int, expected models.Offset) {
				Expect(offset.ScaleForPPI(in, ppi)).To(Equal(expected))
			},
			Entry("reference resolution", models.Offset{X: 7, Y: -3}, 300, models.Offset{X: 7, Y: -3}),
			Entry("double resolution", models.Offset{X: 10, Y: -10}, 600, models.Offset{X: 20, Y: -20}),
			Entry("half resolution", models.Offset{X: 10, Y: -10}, 150, models.Offset{X: 5, Y: -5}),
			Entry("rounds toward negative infinity", models.Offset{X: 1, Y: -1}, 150, models.Offset{X: 0, Y: -1}),
		)
	})

	Context("corrector", func() {
		It("should only move back pages in a duplex run", func() {
			front, back := gradient(12, 9), gradient(12, 9)
			frontHash := utils.GenerateImageHash(front)
			pages := []*image.NRGBA{front, back}

			offset.New(offset.Wrap{}, testLogger).Apply(pages, models.Offset{X: 3, Y: 2}, true)

			Expect(utils.GenerateImageHash(pages[0])).To(Equal(frontHash))
			Expect(utils.GenerateImageHash(pages[1])).NotTo(Equal(frontHash))
			Expect(pages[1].NRGBAAt(3, 2)).To(Equal(front.NRGBAAt(0, 0)))
		})

		It("should move every page when printing only fronts", func() {
			pages := []*image.NRGBA{gradient(12, 9), gradient(12, 9)}
			original := utils.GenerateImageHash(pages[0])

			offset.New(nil, testLogger).Apply(pages, models.Offset{X: 1}, false)

			Expect(utils.GenerateImageHash(pages[0])).NotTo(Equal(original))
			Expect(utils.GenerateImageHash(pages[1])).NotTo(Equal(original))
		})

		It("should leave pages untouched for a zero offset", func() {
			page := gradient(12, 9)
			pages := []*image.NRGBA{page}

			offset.New(nil, testLogger).Apply(pages, models.Offset{}, false)
			Expect(pages[0]).To(BeIdenticalTo(page))
		})
	})
})
