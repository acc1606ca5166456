package domain

// HandContains reports whether the hand holds the tile, comparing as an
// unordered pip pair.
func HandContains(hand []Tile, tile Tile) bool {
	for _, t := range hand {
		if t.Equals(tile) {
			return true
		}
	}
	return false
}

// RemoveTile removes the first tile equal (as an unordered pair) to the
// given tile and returns the updated hand.
func RemoveTile(hand []Tile, tile Tile) []Tile {
	for i, t := range hand {
		if t.Equals(tile) {
			return append(hand[:i:i], hand[i+1:]...)
		}
	}
	return hand
}

// RemoveTileAt removes the tile at the given index. An out-of-range index
// is a no-op.
func RemoveTileAt(hand []Tile, index int) []Tile {
	if index < 0 || index >= len(hand) {
		return hand
	}
	return append(hand[:index:index], hand[index+1:]...)
}
