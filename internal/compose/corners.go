package compose

import "image"

// ExtendCorners rebuilds the outer border of img, e pixels wide, by
// replicating the nearest pixel of the inner region outward. Rounded card
// corners become square. The image size is unchanged.
func ExtendCorners(img *image.NRGBA, e int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if e <= 0 || 2*e >= w || 2*e >= h {
		return
	}

	for y := 0; y < h; y++ {
		sy := clamp(y, e, h-1-e)
		for x := 0; x < w; x++ {
			if y >= e && y < h-e && x >= e && x < w-e {
				// skip straight across the untouched interior
				x = w - e - 1
				continue
			}
			sx := clamp(x, e, w-1-e)
			dst := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			src := img.PixOffset(b.Min.X+sx, b.Min.Y+sy)
			copy(img.Pix[dst:dst+4], img.Pix[src:src+4])
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
