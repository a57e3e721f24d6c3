package compose_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/cardsheet/internal/compose"
	"github.com/kpauljoseph/cardsheet/internal/layout"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
	"github.com/kpauljoseph/cardsheet/pkg/models"
)

var (
	red    = color.NRGBA{R: 255, A: 255}
	green  = color.NRGBA{G: 255, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
	yellow = color.NRGBA{R: 255, G: 255, A: 255}
	white  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black  = color.NRGBA{A: 255}
)

// At 254 PPI one millimeter is exactly ten pixels.
const testPPI = 254

var testCard = layout.CardSize{Name: "test", Width: 10, Height: 10}

func writeSolidPNG(path string, c color.NRGBA, size int) {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	writePNG(path, img)
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()
	Expect(png.Encode(f, img)).To(Succeed())
}

func pixel(img *image.NRGBA, x, y int) color.NRGBA {
	return img.NRGBAAt(x, y)
}

func pixelAt(img *image.NRGBA, p image.Point) color.NRGBA {
	return img.NRGBAAt(p.X, p.Y)
}

var _ = Describe("Compositor", func() {
	var (
		testDir    string
		testLogger *logger.Logger
		ctx        context.Context
		grid       layout.Grid
	)

	BeforeEach(func() {
		var err error
		testDir, err = os.MkdirTemp("", "compose-test-*")
		Expect(err).NotTo(HaveOccurred())

		testLogger = logger.New(
			logger.WithOutput(GinkgoWriter),
			logger.WithPrefix("[compose-test] "),
			logger.WithFlags(0),
		)
		ctx = context.Background()

		// 2x2 grid of 100px cells with 10px margins.
		grid, err = layout.NewGrid(testCard,
			layout.PaperSize{Name: "test", Width: 22, Height: 22},
			layout.GridOptions{PPI: testPPI})
		Expect(err).NotTo(HaveOccurred())
		Expect(grid.Columns).To(Equal(2))
		Expect(grid.Rows).To(Equal(2))
	})

	AfterEach(func() {
		os.RemoveAll(testDir)
	})

	path := func(name string) string {
		return filepath.Join(testDir, name)
	}

	centerOf := func(row, column int) image.Point {
		return image.Pt(grid.MarginLeft+column*grid.CellWidth+grid.CellWidth/2,
			grid.MarginTop+row*grid.CellHeight+grid.CellHeight/2)
	}

	Context("when composing fronts and backs", func() {
		var pairs []models.ImagePair

		BeforeEach(func() {
			fronts := []color.NRGBA{red, green, blue, yellow}
			backs := []color.NRGBA{yellow, blue, green, red}
			for i := range fronts {
				front := path(string(rune('a'+i)) + "-front.png")
				back := path(string(rune('a'+i)) + "-back.png")
				writeSolidPNG(front, fronts[i], 20)
				writeSolidPNG(back, backs[i], 20)
				pairs = append(pairs, models.ImagePair{Index: i, Front: front, Back: back})
			}
		})

		AfterEach(func() {
			pairs = nil
		})

		It("should place fronts in reading order", func() {
			c := compose.New(grid, compose.Options{}, testLogger)
			page, slotErrors, err := c.ComposePage(ctx, pairs, models.SideFront)
			Expect(err).NotTo(HaveOccurred())
			Expect(slotErrors).To(BeEmpty())
			Expect(page.Bounds()).To(Equal(grid.PageBounds()))

			Expect(pixelAt(page, centerOf(0, 0))).To(Equal(red))
			Expect(pixelAt(page, centerOf(0, 1))).To(Equal(green))
			Expect(pixelAt(page, centerOf(1, 0))).To(Equal(blue))
			Expect(pixelAt(page, centerOf(1, 1))).To(Equal(yellow))
			Expect(pixel(page, 2, 2)).To(Equal(white))
		})

		It("should mirror columns on the back", func() {
			c := compose.New(grid, compose.Options{}, testLogger)
			page, _, err := c.ComposePage(ctx, pairs, models.SideBack)
			Expect(err).NotTo(HaveOccurred())

			// Slot B's back lands top-left, slot A's back top-right.
			Expect(pixelAt(page, centerOf(0, 0))).To(Equal(blue))
			Expect(pixelAt(page, centerOf(0, 1))).To(Equal(yellow))
			Expect(pixelAt(page, centerOf(1, 0))).To(Equal(red))
			Expect(pixelAt(page, centerOf(1, 1))).To(Equal(green))
		})

		It("should leave unreadable slots blank and report them", func() {
			Expect(os.WriteFile(pairs[1].Front, []byte("garbage"), 0644)).To(Succeed())

			c := compose.New(grid, compose.Options{}, testLogger)
			page, slotErrors, err := c.ComposePage(ctx, pairs, models.SideFront)
			Expect(err).NotTo(HaveOccurred())
			Expect(slotErrors).To(HaveLen(1))
			Expect(slotErrors[0].Index).To(Equal(1))
			Expect(errors.Is(slotErrors[0], models.ErrResolution)).To(BeTrue())
			Expect(pixelAt(page, centerOf(0, 1))).To(Equal(white))
			Expect(pixelAt(page, centerOf(0, 0))).To(Equal(red))
		})

		It("should reuse one shared back for every slot", func() {
			shared := path("shared-back.png")
			writeSolidPNG(shared, green, 20)
			for i := range pairs {
				pairs[i].Back = shared
				pairs[i].BackShared = true
			}

			c := compose.New(grid, compose.Options{}, testLogger)
			page, _, err := c.ComposePage(ctx, pairs, models.SideBack)
			Expect(err).NotTo(HaveOccurred())

			// Later reads come from the prepared copy.
			Expect(os.Remove(shared)).To(Succeed())
			second, slotErrors, err := c.ComposePage(ctx, pairs, models.SideBack)
			Expect(err).NotTo(HaveOccurred())
			Expect(slotErrors).To(BeEmpty())
			Expect(second.Pix).To(Equal(page.Pix))
			Expect(pixelAt(second, centerOf(1, 1))).To(Equal(green))
		})

		It("should split a deck into pages and compose each side", func() {
			more := append([]models.ImagePair{}, pairs...)
			for i := 0; i < 3; i++ {
				p := pairs[i]
				p.Index = 4 + i
				more = append(more, p)
			}

			c := compose.New(grid, compose.Options{}, testLogger)
			Expect(c.Pages(more)).To(HaveLen(2))

			fronts, _, err := c.ComposeSide(ctx, more, models.SideFront)
			Expect(err).NotTo(HaveOccurred())
			backs, _, err := c.ComposeSide(ctx, more, models.SideBack)
			Expect(err).NotTo(HaveOccurred())
			Expect(fronts).To(HaveLen(2))
			Expect(backs).To(HaveLen(len(fronts)))

			// The third slot of the last page sits bottom-left on the front.
			Expect(pixelAt(backs[1], centerOf(1, 1))).To(Equal(green))
			Expect(pixelAt(backs[1], centerOf(1, 0))).To(Equal(white))
		})

		It("should reject more slots than a page holds", func() {
			c := compose.New(grid, compose.Options{}, testLogger)
			_, _, err := c.ComposePage(ctx, append(pairs, pairs[0]), models.SideFront)
			Expect(errors.Is(err, models.ErrLayout)).To(BeTrue())
		})

		It("should stop on a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			c := compose.New(grid, compose.Options{}, testLogger)
			_, _, err := c.ComposePage(cancelled, pairs, models.SideFront)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Context("when cropping", func() {
		It("should trim the card edge from every side", func() {
			cropped, err := layout.NewGrid(testCard,
				layout.PaperSize{Name: "test", Width: 22, Height: 22},
				layout.GridOptions{PPI: testPPI, Crop: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(cropped.CellWidth).To(Equal(80))

			// 100px card with a 10px red frame around a blue face.
			img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
			for y := 0; y < 100; y++ {
				for x := 0; x < 100; x++ {
					if x < 10 || y < 10 || x >= 90 || y >= 90 {
						img.SetNRGBA(x, y, red)
					} else {
						img.SetNRGBA(x, y, blue)
					}
				}
			}
			writePNG(path("framed.png"), img)

			c := compose.New(cropped, compose.Options{}, testLogger)
			page, _, err := c.ComposePage(ctx, []models.ImagePair{{Front: path("framed.png")}}, models.SideFront)
			Expect(err).NotTo(HaveOccurred())

			left, top := cropped.MarginLeft, cropped.MarginTop
			Expect(pixel(page, left+1, top+1)).To(Equal(blue))
			Expect(pixel(page, left+cropped.CellWidth-2, top+cropped.CellHeight-2)).To(Equal(blue))
		})
	})

	Context("when drawing registration marks", func() {
		var marked layout.Grid

		BeforeEach(func() {
			var err error
			marked, err = layout.NewGrid(testCard,
				layout.PaperSize{Name: "test", Width: 40, Height: 40},
				layout.GridOptions{PPI: testPPI})
			Expect(err).NotTo(HaveOccurred())
		})

		markCenter := func(rect image.Rectangle) image.Point {
			return image.Pt((rect.Min.X+rect.Max.X)/2, (rect.Min.Y+rect.Max.Y)/2)
		}

		It("should draw three corner marks identically on both sides", func() {
			marks := compose.RegistrationMarks(marked, layout.RegistrationThree)
			Expect(marks).To(HaveLen(3))

			c := compose.New(marked, compose.Options{Registration: layout.RegistrationThree}, testLogger)
			front, _, err := c.ComposePage(ctx, nil, models.SideFront)
			Expect(err).NotTo(HaveOccurred())
			back, _, err := c.ComposePage(ctx, nil, models.SideBack)
			Expect(err).NotTo(HaveOccurred())
			Expect(back.Pix).To(Equal(front.Pix))

			for _, mark := range marks {
				Expect(pixelAt(front, markCenter(mark))).To(Equal(black))
			}
			Expect(pixel(front, marked.PageWidth-40, marked.PageHeight-40)).To(Equal(white))
		})

		It("should draw a fourth mark bottom-right", func() {
			marks := compose.RegistrationMarks(marked, layout.RegistrationFour)
			Expect(marks).To(HaveLen(4))
			Expect(marks[3].Max).To(Equal(image.Pt(marked.PageWidth-30, marked.PageHeight-30)))
		})

		It("should draw nothing without registration", func() {
			Expect(compose.RegistrationMarks(marked, layout.RegistrationNone)).To(BeEmpty())
		})
	})
})

var _ = Describe("ExtendCorners", func() {
	It("should replicate the inner edge over the border", func() {
		img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 20), A: 255})
			}
		}

		compose.ExtendCorners(img, 2)

		Expect(img.Bounds()).To(Equal(image.Rect(0, 0, 10, 10)))
		Expect(img.NRGBAAt(0, 0)).To(Equal(img.NRGBAAt(2, 2)))
		Expect(img.NRGBAAt(9, 9)).To(Equal(img.NRGBAAt(7, 7)))
		Expect(img.NRGBAAt(0, 5)).To(Equal(img.NRGBAAt(2, 5)))
		Expect(img.NRGBAAt(5, 9)).To(Equal(img.NRGBAAt(5, 7)))
		Expect(img.NRGBAAt(5, 5)).To(Equal(color.NRGBA{R: 100, G: 100, A: 255}))
	})

	It("should leave an image alone when the border is too wide", func() {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		img.SetNRGBA(0, 0, red)
		compose.ExtendCorners(img, 2)
		Expect(img.NRGBAAt(0, 0)).To(Equal(red))
	})
})
