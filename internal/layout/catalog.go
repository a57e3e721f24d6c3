package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kpauljoseph/cardsheet/pkg/models"
)

// CardSize is a named physical card format.
type CardSize struct {
	Name string
	// Width and Height are in millimeters, portrait.
	Width  float64
	Height float64
	// CornerRadius hints how much corner extension a printed card of this size needs.
	CornerRadius float64
}

// PaperSize is a named physical sheet format, portrait.
type PaperSize struct {
	Name   string
	Width  float64
	Height float64
}

type Registration string

const (
	RegistrationNone  Registration = "none"
	RegistrationThree Registration = "3"
	RegistrationFour  Registration = "4"
)

var (
	CardStandard       = CardSize{Name: "standard", Width: 63, Height: 88, CornerRadius: 3}
	CardStandardDouble = CardSize{Name: "standard_double", Width: 126, Height: 88, CornerRadius: 3}
	CardJapanese       = CardSize{Name: "japanese", Width: 59, Height: 86, CornerRadius: 3}
	CardPoker          = CardSize{Name: "poker", Width: 63.5, Height: 88.9, CornerRadius: 3.175}
	CardPokerHalf      = CardSize{Name: "poker_half", Width: 44.45, Height: 63.5, CornerRadius: 3.175}
	CardBridge         = CardSize{Name: "bridge", Width: 57.15, Height: 88.9, CornerRadius: 3.175}
	CardBridgeSquare   = CardSize{Name: "bridge_square", Width: 57.15, Height: 57.15, CornerRadius: 3.175}
	CardTarot          = CardSize{Name: "tarot", Width: 69.85, Height: 120.65, CornerRadius: 4}
	CardDomino         = CardSize{Name: "domino", Width: 44.45, Height: 88.9, CornerRadius: 3.175}
	CardDominoSquare   = CardSize{Name: "domino_square", Width: 44.45, Height: 44.45, CornerRadius: 3.175}

	PaperLetter  = PaperSize{Name: "letter", Width: 215.9, Height: 279.4}
	PaperTabloid = PaperSize{Name: "tabloid", Width: 279.4, Height: 431.8}
	PaperA4      = PaperSize{Name: "a4", Width: 210, Height: 297}
	PaperA3      = PaperSize{Name: "a3", Width: 297, Height: 420}
	PaperArchB   = PaperSize{Name: "archb", Width: 304.8, Height: 457.2}
)

var cardSizes = map[string]CardSize{}
var paperSizes = map[string]PaperSize{}

func init() {
	for _, c := range []CardSize{
		CardStandard, CardStandardDouble, CardJapanese, CardPoker, CardPokerHalf,
		CardBridge, CardBridgeSquare, CardTarot, CardDomino, CardDominoSquare,
	} {
		cardSizes[c.Name] = c
	}
	for _, p := range []PaperSize{PaperLetter, PaperTabloid, PaperA4, PaperA3, PaperArchB} {
		paperSizes[p.Name] = p
	}
}

func LookupCardSize(name string) (CardSize, error) {
	c, ok := cardSizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CardSize{}, fmt.Errorf("%w: unsupported card size %q (choose from %s)",
			models.ErrConfiguration, name, strings.Join(CardSizeNames(), ", "))
	}
	return c, nil
}

func LookupPaperSize(name string) (PaperSize, error) {
	p, ok := paperSizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PaperSize{}, fmt.Errorf("%w: unsupported paper size %q (choose from %s)",
			models.ErrConfiguration, name, strings.Join(PaperSizeNames(), ", "))
	}
	return p, nil
}

func ParseRegistration(s string) (Registration, error) {
	switch Registration(strings.ToLower(strings.TrimSpace(s))) {
	case "", RegistrationNone:
		return RegistrationNone, nil
	case RegistrationThree:
		return RegistrationThree, nil
	case RegistrationFour:
		return RegistrationFour, nil
	}
	return "", fmt.Errorf("%w: unsupported registration %q (choose from none, 3, 4)", models.ErrConfiguration, s)
}

func CardSizes() []CardSize {
	out := make([]CardSize, 0, len(cardSizes))
	for _, name := range CardSizeNames() {
		out = append(out, cardSizes[name])
	}
	return out
}

func PaperSizes() []PaperSize {
	out := make([]PaperSize, 0, len(paperSizes))
	for _, name := range PaperSizeNames() {
		out = append(out, paperSizes[name])
	}
	return out
}

func CardSizeNames() []string {
	names := make([]string, 0, len(cardSizes))
	for name := range cardSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func PaperSizeNames() []string {
	names := make([]string, 0, len(paperSizes))
	for name := range paperSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MatchPaperSize finds the catalog paper whose size is within toleranceMM of
// width x height (either orientation).
func MatchPaperSize(widthMM, heightMM, toleranceMM float64) (PaperSize, bool) {
	for _, p := range PaperSizes() {
		direct := math.Abs(p.Width-widthMM) <= toleranceMM && math.Abs(p.Height-heightMM) <= toleranceMM
		rotated := math.Abs(p.Height-widthMM) <= toleranceMM && math.Abs(p.Width-heightMM) <= toleranceMM
		if direct || rotated {
			return p, true
		}
	}
	return PaperSize{}, false
}
