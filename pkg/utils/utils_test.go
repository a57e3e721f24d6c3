package utils_test

import (
	"image"
	"image/color"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/cardsheet/pkg/utils"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var _ = Describe("Utils", func() {
	Context("GenerateImageHash", func() {
		It("should be stable for identical pixels", func() {
			a := solidImage(4, 3, color.RGBA{10, 20, 30, 255})
			b := solidImage(4, 3, color.RGBA{10, 20, 30, 255})
			Expect(utils.GenerateImageHash(a)).To(Equal(utils.GenerateImageHash(b)))
		})

		It("should change when one pixel changes", func() {
			a := solidImage(4, 3, color.White)
			b := solidImage(4, 3, color.White)
			b.Set(2, 1, color.Black)
			Expect(utils.GenerateImageHash(a)).NotTo(Equal(utils.GenerateImageHash(b)))
		})

		It("should distinguish dimensions with the same pixel count", func() {
			a := solidImage(6, 2, color.White)
			b := solidImage(3, 4, color.White)
			Expect(utils.GenerateImageHash(a)).NotTo(Equal(utils.GenerateImageHash(b)))
		})
	})

	Context("GetDefaultDataDir", func() {
		var previous string

		BeforeEach(func() {
			previous = os.Getenv(utils.DataDirEnv)
		})

		AfterEach(func() {
			os.Setenv(utils.DataDirEnv, previous)
		})

		It("should prefer the environment override", func() {
			os.Setenv(utils.DataDirEnv, "/tmp/cardsheet-profiles")
			Expect(utils.GetDefaultDataDir()).To(Equal("/tmp/cardsheet-profiles"))
		})

		It("should fall back to a non-empty path", func() {
			os.Unsetenv(utils.DataDirEnv)
			Expect(utils.GetDefaultDataDir()).NotTo(BeEmpty())
		})
	})
})
