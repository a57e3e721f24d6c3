package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/kpauljoseph/cardsheet/internal/layout"
)

const (
	// RegistrationMarkSize is the side of a square mark.
	RegistrationMarkSize layout.Length = 3
	// RegistrationMarkInset is the distance from the page edge to the mark.
	RegistrationMarkInset layout.Length = 3
)

// RegistrationMarks returns the mark rectangles for a page. The positions are
// page-relative, so front and back pages carry identical marks.
func RegistrationMarks(grid layout.Grid, reg layout.Registration) []image.Rectangle {
	if reg == layout.RegistrationNone || reg == "" {
		return nil
	}

	size := RegistrationMarkSize.Pixels(grid.PPI)
	inset := RegistrationMarkInset.Pixels(grid.PPI)
	left, top := inset, inset
	right, bottom := grid.PageWidth-inset-size, grid.PageHeight-inset-size

	marks := []image.Rectangle{
		image.Rect(left, top, left+size, top+size),
		image.Rect(right, top, right+size, top+size),
		image.Rect(left, bottom, left+size, bottom+size),
	}
	if reg == layout.RegistrationFour {
		marks = append(marks, image.Rect(right, bottom, right+size, bottom+size))
	}
	return marks
}

func drawRegistration(page draw.Image, grid layout.Grid, reg layout.Registration) {
	ink := image.NewUniform(color.Black)
	for _, mark := range RegistrationMarks(grid, reg) {
		draw.Draw(page, mark, ink, image.Point{}, draw.Src)
	}
}
