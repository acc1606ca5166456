package internal

import (
	"testing"

	"dominoes/internal/domain"
)

var testWeights = PhaseWeights{
	PipReductionWeight: 1.0,
	FlexibilityWeight:  1.0,
	DoubleDumpBonus:    2.0,
	EndRepeatPenalty:   0.5,
	BlockBonus:         1.0,
	FinishBonus:        100.0,
}

func TestBuildScoredMovesFinishBonus(t *testing.T) {
	chain := chainOf(t, domain.Tile{A: 3, B: 5})
	hand := []domain.Tile{{A: 2, B: 3}}

	moves := GetValidMoves(hand, chain)
	scored := BuildScoredMoves(hand, moves, testWeights, false)
	if len(scored) != 1 {
		t.Fatalf("got %d scored moves, want 1", len(scored))
	}
	if len(scored[0].Remaining) != 0 {
		t.Fatalf("remaining hand should be empty, got %v", scored[0].Remaining)
	}
	if scored[0].Score < testWeights.FinishBonus {
		t.Errorf("finishing move score %v should include the finish bonus", scored[0].Score)
	}
}

func TestBuildScoredMovesPrefersFlexibility(t *testing.T) {
	// Both candidates weigh 7 pips; only one keeps an answer in hand.
	chain := chainOf(t, domain.Tile{A: 3, B: 5})
	hand := []domain.Tile{
		{A: 3, B: 4}, // leaves ends (4,5); 2-5 still answers
		{A: 2, B: 5}, // leaves ends (3,2); 3-4 still answers
		{A: 2, B: 0},
	}

	moves := GetValidMoves(hand, chain)
	scored := BuildScoredMoves(hand, moves, testWeights, false)

	byTile := make(map[domain.Tile]float64)
	for _, s := range scored {
		byTile[s.Move.Tile] = s.Score
	}
	if byTile[domain.Tile{A: 2, B: 5}] <= byTile[domain.Tile{A: 3, B: 4}] {
		t.Errorf("2-5 keeps more answers and should outscore 3-4: %v vs %v",
			byTile[domain.Tile{A: 2, B: 5}], byTile[domain.Tile{A: 3, B: 4}])
	}
}

func TestDetectThreat(t *testing.T) {
	game := gameWithCounts(5, 7, 2)

	if !DetectThreat(game, 0, 3) {
		t.Error("opponent holding 2 tiles should register as a threat")
	}
	if DetectThreat(game, 1, 3) {
		t.Error("a seat is not its own threat")
	}
	if DetectThreat(game, 0, 0) {
		t.Error("zero threshold disables threat detection")
	}
	if DetectThreat(nil, 0, 3) {
		t.Error("nil game never threatens")
	}
}
