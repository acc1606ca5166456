package domain

import "fmt"

const (
	// MinPip and MaxPip bound the pip values of a double-six set.
	MinPip = 0
	MaxPip = 6

	// SetSize is the number of tiles in a full double-six set.
	SetSize = 28
)

// Tile is a single domino: an unordered pair of pip values.
// A and B record the tile's current orientation inside the chain;
// equality of tiles ignores orientation (see Equals).
type Tile struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (t Tile) String() string {
	return fmt.Sprintf("%d-%d", t.A, t.B)
}

// Sum returns the combined pip count of the tile.
func (t Tile) Sum() int {
	return t.A + t.B
}

// IsDouble reports whether both halves carry the same pip value.
func (t Tile) IsDouble() bool {
	return t.A == t.B
}

// Reversed returns the tile with its halves swapped.
func (t Tile) Reversed() Tile {
	return Tile{A: t.B, B: t.A}
}

// Equals compares two tiles as unordered pairs.
func (t Tile) Equals(other Tile) bool {
	return (t.A == other.A && t.B == other.B) || (t.A == other.B && t.B == other.A)
}

// HasPip reports whether either half shows the given pip value.
func (t Tile) HasPip(pip int) bool {
	return t.A == pip || t.B == pip
}

// Valid reports whether both pip values are within the double-six range.
func (t Tile) Valid() bool {
	return t.A >= MinPip && t.A <= MaxPip && t.B >= MinPip && t.B <= MaxPip
}

// TileFromString parses a tile in "a-b" form.
func TileFromString(s string) (Tile, error) {
	var a, b int
	if _, err := fmt.Sscanf(s, "%d-%d", &a, &b); err != nil {
		return Tile{}, fmt.Errorf("malformed tile %q: %w", s, err)
	}
	t := Tile{A: a, B: b}
	if !t.Valid() {
		return Tile{}, fmt.Errorf("tile %q has pips outside 0..6", s)
	}
	return t, nil
}

// NewTileSet returns the ordered double-six set: every unordered pair of
// pip values 0..6 exactly once, 28 tiles total.
func NewTileSet() []Tile {
	set := make([]Tile, 0, SetSize)
	for a := MinPip; a <= MaxPip; a++ {
		for b := a; b <= MaxPip; b++ {
			set = append(set, Tile{A: a, B: b})
		}
	}
	return set
}
