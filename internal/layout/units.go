package layout

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kpauljoseph/cardsheet/pkg/models"
)

const (
	MillimetersPerInch = 25.4
	PointsPerInch      = 72.0
)

// roundHalfUp rounds to the nearest integer, ties away from zero for positive values.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func MillimetersToPixels(mm float64, ppi int) int {
	return roundHalfUp(mm / MillimetersPerInch * float64(ppi))
}

func InchesToPixels(in float64, ppi int) int {
	return roundHalfUp(in * float64(ppi))
}

func PixelsToMillimeters(px, ppi int) float64 {
	return float64(px) / float64(ppi) * MillimetersPerInch
}

func PixelsToInches(px, ppi int) float64 {
	return float64(px) / float64(ppi)
}

func PointsToMillimeters(pt float64) float64 {
	return pt / PointsPerInch * MillimetersPerInch
}

// Length is a physical length in millimeters.
type Length float64

func (l Length) Millimeters() float64 {
	return float64(l)
}

func (l Length) Inches() float64 {
	return float64(l) / MillimetersPerInch
}

func (l Length) Pixels(ppi int) int {
	return MillimetersToPixels(float64(l), ppi)
}

func (l Length) String() string {
	return strconv.FormatFloat(float64(l), 'f', -1, 64) + "mm"
}

var lengthPattern = regexp.MustCompile(`^(\d+\.\d*|\.\d+|\d+)\s*(mm|in)?$`)

// ParseLength accepts "3mm", "0.125in" or a bare number of millimeters.
// An empty string is a zero length.
func ParseLength(s string) (Length, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}

	m := lengthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: invalid length %q (want e.g. 3mm, 0.125in or 2.5)", models.ErrConfiguration, s)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length %q: %v", models.ErrConfiguration, s, err)
	}

	if m[2] == "in" {
		return Length(v * MillimetersPerInch), nil
	}
	return Length(v), nil
}
