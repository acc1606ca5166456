package bot

import (
	"sort"

	"dominoes/internal/bot/internal"
	"dominoes/internal/domain"
)

type SmartBot struct{}

var smartBotTuning = DefaultTuning

func (b *SmartBot) CalculateMove(game *domain.Game, seat int) (Move, error) {
	// 1. Identify Context
	player := game.PlayerAtSeat(seat)
	if player == nil || len(player.Hand) == 0 {
		return Move{Pass: true}, nil
	}

	// 2. Generate all valid moves
	validMoves := internal.GetValidMoves(player.Hand, game.Chain)

	if len(validMoves) == 0 {
		if len(game.Boneyard) > 0 {
			return Move{Draw: true}, nil
		}
		return Move{Pass: true}, nil
	}

	// 3. Phase-aware scoring.
	phase := internal.DetectPhase(game)
	weights := smartBotTuning.ForPhase(phase)
	threat := internal.DetectThreat(game, seat, smartBotTuning.ThreatThreshold)
	scored := internal.BuildScoredMoves(player.Hand, validMoves, weights, threat)

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		// Shed heavier tiles when scores are equal.
		return scored[i].Move.Tile.Sum() > scored[j].Move.Tile.Sum()
	})

	return Move{Tile: scored[0].Move.Tile}, nil
}

func (b *SmartBot) OnEvent(event interface{}) {}
