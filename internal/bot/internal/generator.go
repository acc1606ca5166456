package internal

import (
	"dominoes/internal/domain"
)

// ValidMove represents a possible legal play.
type ValidMove struct {
	Tile domain.Tile
	// LeftEnd/RightEnd are the open ends the board would show after the
	// placement, as the engine's fixed end-priority would apply it.
	LeftEnd  int
	RightEnd int
}

// GetValidMoves returns all tiles in the hand that can legally be placed
// against the chain, with the resulting open ends precomputed.
func GetValidMoves(hand []domain.Tile, chain *domain.Chain) []ValidMove {
	var moves []ValidMove
	for _, t := range hand {
		left, right, ok := chain.PreviewPlace(t)
		if !ok {
			continue
		}
		moves = append(moves, ValidMove{Tile: t, LeftEnd: left, RightEnd: right})
	}
	return moves
}
