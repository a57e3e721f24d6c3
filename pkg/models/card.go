package models

// ImagePair is one deck slot: a front image and the back printed behind it.
type ImagePair struct {
	// Index is the 0-based position of the front in the scanned directory, before skip filtering.
	Index int
	Front string
	// Back is empty when only fronts are printed.
	Back string
	// BackShared is true when Back is the single default back rather than a double-sided match.
	BackShared bool
	Skipped    bool
}

func (p ImagePair) HasBack() bool {
	return p.Back != ""
}

type Side int

const (
	SideFront Side = iota
	SideBack
)

func (s Side) String() string {
	if s == SideBack {
		return "back"
	}
	return "front"
}

// Offset is a signed pixel translation.
type Offset struct {
	X int `json:"x_offset" yaml:"x"`
	Y int `json:"y_offset" yaml:"y"`
}

func (o Offset) IsZero() bool {
	return o.X == 0 && o.Y == 0
}
