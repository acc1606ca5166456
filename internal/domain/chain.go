package domain

import "errors"

var (
	// ErrInvalidPlacement is returned when a tile matches neither open end.
	ErrInvalidPlacement = errors.New("tile does not match either open end")
	// ErrChainNotReady is returned when a placement is attempted on an
	// uninitialized board. This is a caller bug, not a rule rejection.
	ErrChainNotReady = errors.New("chain not initialized")
)

// Chain is the board: the line of placed tiles with two open ends.
// The ends are kept in lockstep with the tile sequence; only Place mutates
// them, so external callers can never break the adjacency invariant.
type Chain struct {
	tiles    []Tile
	leftEnd  int
	rightEnd int
}

// NewChain returns an empty board.
func NewChain() *Chain {
	return &Chain{}
}

// Empty reports whether no tile has been placed yet.
func (c *Chain) Empty() bool {
	return c == nil || len(c.tiles) == 0
}

// Len returns the number of placed tiles.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tiles)
}

// Ends returns the open pip values at the left and right extremities.
// ok is false while the chain is empty.
func (c *Chain) Ends() (left, right int, ok bool) {
	if c.Empty() {
		return 0, 0, false
	}
	return c.leftEnd, c.rightEnd, true
}

// Tiles returns a copy of the placed sequence in board order.
func (c *Chain) Tiles() []Tile {
	if c == nil {
		return nil
	}
	return append([]Tile(nil), c.tiles...)
}

// CanPlace reports whether the tile could legally be placed right now:
// any tile opens an empty board, otherwise one of its halves must match
// an open end.
func (c *Chain) CanPlace(tile Tile) bool {
	if !tile.Valid() {
		return false
	}
	if c.Empty() {
		return true
	}
	return tile.HasPip(c.leftEnd) || tile.HasPip(c.rightEnd)
}

// Place applies a tile to the board. The first tile is taken in its given
// orientation and sets both ends. Otherwise the ends are tried in a fixed
// order: left end as-is, left end reversed, right end as-is, right end
// reversed. A tile matching both ends therefore always lands on the left;
// this tie-break is deliberate and stable so replays are deterministic.
func (c *Chain) Place(tile Tile) error {
	if c == nil {
		return ErrChainNotReady
	}
	if !tile.Valid() {
		return ErrInvalidPlacement
	}

	if len(c.tiles) == 0 {
		c.tiles = append(c.tiles, tile)
		c.leftEnd = tile.A
		c.rightEnd = tile.B
		return nil
	}

	switch {
	case tile.B == c.leftEnd:
		c.tiles = append([]Tile{tile}, c.tiles...)
		c.leftEnd = tile.A
	case tile.A == c.leftEnd:
		rev := tile.Reversed()
		c.tiles = append([]Tile{rev}, c.tiles...)
		c.leftEnd = rev.A
	case tile.A == c.rightEnd:
		c.tiles = append(c.tiles, tile)
		c.rightEnd = tile.B
	case tile.B == c.rightEnd:
		rev := tile.Reversed()
		c.tiles = append(c.tiles, rev)
		c.rightEnd = rev.B
	default:
		return ErrInvalidPlacement
	}
	return nil
}

// PreviewPlace returns the open ends that would result from placing the
// tile, without mutating the board. ok is false for an illegal placement.
// Bot strategies use this to evaluate blocking moves.
func (c *Chain) PreviewPlace(tile Tile) (left, right int, ok bool) {
	if c == nil || !c.CanPlace(tile) {
		return 0, 0, false
	}
	if c.Empty() {
		return tile.A, tile.B, true
	}
	switch {
	case tile.B == c.leftEnd:
		return tile.A, c.rightEnd, true
	case tile.A == c.leftEnd:
		return tile.B, c.rightEnd, true
	case tile.A == c.rightEnd:
		return c.leftEnd, tile.B, true
	default:
		return c.leftEnd, tile.A, true
	}
}
