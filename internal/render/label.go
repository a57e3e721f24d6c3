package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelBasePPI is the resolution at which the bitmap font is drawn 1:1.
const labelBasePPI = 100

// SheetLabel is the text stamped on every page of sheet n (1-based).
func SheetLabel(label string, sheet int) string {
	return fmt.Sprintf("%s - sheet %d", label, sheet)
}

// renderText draws s in black on a transparent background, scaled up for ppi.
func renderText(s string, ppi int) *image.NRGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, s).Ceil()
	height := face.Metrics().Height.Ceil()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	scale := max(1, ppi/labelBasePPI)
	if scale == 1 {
		return img
	}
	return imaging.Resize(img, width*scale, height*scale, imaging.NearestNeighbor)
}

func qrImage(text string, size int) (image.Image, error) {
	pngBytes, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code: %w", err)
	}
	return img, nil
}

// stampLabel writes text centered near the bottom edge of page, with an
// optional QR code of qrText to its right.
func stampLabel(page *image.NRGBA, text, qrText string, ppi int) error {
	textImg := renderText(text, ppi)
	bounds := page.Bounds()
	pad := max(1, ppi/50)

	x := bounds.Min.X + (bounds.Dx()-textImg.Bounds().Dx())/2
	y := bounds.Max.Y - pad - textImg.Bounds().Dy()
	at := image.Rect(x, y, x+textImg.Bounds().Dx(), y+textImg.Bounds().Dy())
	draw.Draw(page, at, textImg, image.Point{}, draw.Over)

	if qrText == "" {
		return nil
	}
	size := 2 * textImg.Bounds().Dy()
	qr, err := qrImage(qrText, size)
	if err != nil {
		return err
	}
	qx := at.Max.X + pad
	qy := bounds.Max.Y - pad - qr.Bounds().Dy()
	draw.Draw(page, image.Rect(qx, qy, qx+qr.Bounds().Dx(), qy+qr.Bounds().Dy()), qr, qr.Bounds().Min, draw.Src)
	return nil
}
