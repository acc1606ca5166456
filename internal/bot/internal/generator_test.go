package internal

import (
	"testing"

	"dominoes/internal/domain"
)

func chainOf(t *testing.T, tiles ...domain.Tile) *domain.Chain {
	t.Helper()
	c := domain.NewChain()
	for _, tile := range tiles {
		if err := c.Place(tile); err != nil {
			t.Fatalf("Place(%v) failed: %v", tile, err)
		}
	}
	return c
}

func TestGetValidMoves(t *testing.T) {
	chain := chainOf(t, domain.Tile{A: 3, B: 5})

	hand := []domain.Tile{
		{A: 2, B: 3}, // answers left end 3
		{A: 5, B: 5}, // answers right end 5
		{A: 1, B: 6}, // answers neither
	}

	moves := GetValidMoves(hand, chain)
	if len(moves) != 2 {
		t.Fatalf("got %d moves, want 2: %+v", len(moves), moves)
	}

	// 2-3 prepends, leaving ends 2 and 5.
	if moves[0].LeftEnd != 2 || moves[0].RightEnd != 5 {
		t.Errorf("2-3 should leave ends (2,5), got (%d,%d)", moves[0].LeftEnd, moves[0].RightEnd)
	}
	// 5-5 appends, leaving ends 3 and 5.
	if moves[1].LeftEnd != 3 || moves[1].RightEnd != 5 {
		t.Errorf("5-5 should leave ends (3,5), got (%d,%d)", moves[1].LeftEnd, moves[1].RightEnd)
	}
}

func TestGetValidMovesEmptyChain(t *testing.T) {
	chain := domain.NewChain()
	hand := []domain.Tile{{A: 1, B: 6}}

	moves := GetValidMoves(hand, chain)
	if len(moves) != 1 {
		t.Fatalf("every tile opens an empty chain, got %d moves", len(moves))
	}
	if moves[0].LeftEnd != 1 || moves[0].RightEnd != 6 {
		t.Errorf("opening tile sets ends (1,6), got (%d,%d)", moves[0].LeftEnd, moves[0].RightEnd)
	}
}
