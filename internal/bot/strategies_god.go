package bot

import (
	"sort"

	"dominoes/internal/bot/brain"
	"dominoes/internal/bot/internal"
	"dominoes/internal/domain"
)

type GodBot struct {
	SmartBot // Reuse the phase-aware baseline

	memory    *brain.GameMemory
	estimator *brain.Estimator
}

func NewGodBot() *GodBot {
	m := brain.NewMemory()
	return &GodBot{memory: m, estimator: brain.NewEstimator(m)}
}

func (b *GodBot) CalculateMove(game *domain.Game, seat int) (Move, error) {
	// 1. Identify Context
	player := game.PlayerAtSeat(seat)
	if player == nil || len(player.Hand) == 0 {
		return Move{Pass: true}, nil
	}

	// 2. Tile Counting
	b.memory.SyncView(player.Hand, game.Chain.Tiles())

	// 3. Generate & Score Moves
	validMoves := internal.GetValidMoves(player.Hand, game.Chain)
	if len(validMoves) == 0 {
		if len(game.Boneyard) > 0 {
			return Move{Draw: true}, nil
		}
		return Move{Pass: true}, nil
	}

	phase := internal.DetectPhase(game)
	weights := smartBotTuning.ForPhase(phase)
	threat := internal.DetectThreat(game, seat, smartBotTuning.ThreatThreshold)
	scored := internal.BuildScoredMoves(player.Hand, validMoves, weights, threat)

	// 4. Blocking Instinct
	// Bias each placement by how likely the opponents are void on the
	// ends it leaves open. Forcing a draw against a dry boneyard wins
	// the game outright, so a near-certain block outranks pip shedding.
	for i := range scored {
		for _, opp := range game.Players {
			if opp == nil || opp.Seat == seat || opp.Finished {
				continue
			}
			m := scored[i].Move
			scored[i].Score += 25.0 * b.estimator.BlockScore(opp.Seat, m.LeftEnd, m.RightEnd)
			if len(game.Boneyard) == 0 && b.estimator.LikelyBlocked(opp.Seat, m.LeftEnd, m.RightEnd) {
				// Only profitable while we expect to sit on the lighter hand.
				if float64(domain.PipScore(scored[i].Remaining)) < b.estimator.ExpectedPipCount(len(opp.Hand)) {
					scored[i].Score += 200.0
				}
			}
		}
	}

	// 5. Selection
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Move.Tile.Sum() > scored[j].Move.Tile.Sum()
	})

	return Move{Tile: scored[0].Move.Tile}, nil
}

func (b *GodBot) OnEvent(event interface{}) {
	switch ev := event.(type) {
	case GameStartObservation:
		b.memory.Reset(ev.HandSize)
	case PlacementObservation:
		b.memory.RecordPlacement(ev.Seat, ev.Tile)
	case DrawObservation:
		b.memory.RecordDraw(ev.Seat, ev.LeftEnd, ev.RightEnd)
	case PassObservation:
		b.memory.RecordPass(ev.Seat, ev.LeftEnd, ev.RightEnd)
	}
}
