package domain

// PipScore sums both pip values over every tile in the hand.
// An empty or nil hand scores 0.
func PipScore(hand []Tile) int {
	total := 0
	for _, t := range hand {
		total += t.Sum()
	}
	return total
}

// HasPlayableTile reports whether any tile in the hand matches an open end.
func HasPlayableTile(hand []Tile, chain *Chain) bool {
	for _, t := range hand {
		if chain.CanPlace(t) {
			return true
		}
	}
	return false
}

// IsBlocked reports whether the game can no longer progress: the boneyard
// is empty and no active player holds a playable tile.
func IsBlocked(g *Game) bool {
	if g == nil || len(g.Boneyard) > 0 {
		return false
	}
	for _, p := range g.Players {
		if p.Finished {
			continue
		}
		if HasPlayableTile(p.Hand, g.Chain) {
			return false
		}
	}
	return true
}

// HeaviestDouble returns the seat holding the highest double and that
// tile's pip value, for the opening-lead convention. found is false when
// no hand contains a double.
func HeaviestDouble(g *Game) (seat, pip int, found bool) {
	best := -1
	for _, p := range g.Players {
		for _, t := range p.Hand {
			if t.IsDouble() && t.A > best {
				best = t.A
				seat = p.Seat
			}
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return seat, best, true
}
