package internal

import "dominoes/internal/domain"

// PhaseWeights tune move scoring for a specific phase.
type PhaseWeights struct {
	PipReductionWeight float64
	FlexibilityWeight  float64
	DoubleDumpBonus    float64
	EndRepeatPenalty   float64
	BlockBonus         float64
	FinishBonus        float64
}

// BotTuning defines phase weights and thresholds for a bot difficulty.
type BotTuning struct {
	Opening         PhaseWeights
	Mid             PhaseWeights
	End             PhaseWeights
	ThreatThreshold int
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// ScoredMove holds a move with its computed score and supporting metadata.
type ScoredMove struct {
	Move      ValidMove
	Score     float64
	Remaining []domain.Tile
}

// BuildScoredMoves scores each legal placement using phase weights.
// A move scores higher when it sheds pips, keeps the remaining hand
// flexible against the resulting open ends, and dumps doubles before
// they become dead weight.
func BuildScoredMoves(hand []domain.Tile, moves []ValidMove, weights PhaseWeights, threat bool) []ScoredMove {
	scored := make([]ScoredMove, 0, len(moves))
	for _, move := range moves {
		remaining := domain.RemoveTile(hand, move.Tile)

		score := weights.PipReductionWeight * float64(move.Tile.Sum())
		score += weights.FlexibilityWeight * float64(countAnswers(remaining, move.LeftEnd, move.RightEnd))

		if move.Tile.IsDouble() {
			score += weights.DoubleDumpBonus
		}
		if move.LeftEnd == move.RightEnd {
			// Both ends showing the same pip narrows everyone's options,
			// including ours.
			score -= weights.EndRepeatPenalty
		}
		if len(remaining) == 0 {
			score += weights.FinishBonus
		}
		if threat {
			// Under threat, prefer placements that leave the fewest open
			// answers in the unseen pool.
			score += weights.BlockBonus * float64(domain.MaxPip-countAnswers(remaining, move.LeftEnd, move.RightEnd))
		}

		scored = append(scored, ScoredMove{Move: move, Score: score, Remaining: remaining})
	}
	return scored
}

// DetectThreat reports whether any opponent is at or below the supplied tile threshold.
func DetectThreat(game *domain.Game, seat int, threshold int) bool {
	if threshold <= 0 || game == nil {
		return false
	}
	for _, player := range game.Players {
		if player == nil || player.Seat == seat || player.Finished || len(player.Hand) == 0 {
			continue
		}
		if len(player.Hand) <= threshold {
			return true
		}
	}
	return false
}

// countAnswers counts the tiles in hand that match either open end.
func countAnswers(hand []domain.Tile, leftEnd, rightEnd int) int {
	count := 0
	for _, t := range hand {
		if t.HasPip(leftEnd) || t.HasPip(rightEnd) {
			count++
		}
	}
	return count
}
