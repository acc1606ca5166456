package bot

import (
	"sort"

	"dominoes/internal/bot/internal"
	"dominoes/internal/domain"
)

type GoodBot struct{}

func (b *GoodBot) CalculateMove(game *domain.Game, seat int) (Move, error) {
	// 1. Identify Context
	player := game.PlayerAtSeat(seat)
	if player == nil || len(player.Hand) == 0 {
		return Move{Pass: true}, nil
	}

	// 2. Generate moves
	validMoves := internal.GetValidMoves(player.Hand, game.Chain)

	if len(validMoves) == 0 {
		// Engine rule: draw while the boneyard holds tiles, pass only dry.
		if len(game.Boneyard) > 0 {
			return Move{Draw: true}, nil
		}
		return Move{Pass: true}, nil
	}

	// 3. Strategy: "Shed Heaviest"
	// Dump the highest pip count first so a blocked game counts fewer
	// pips against us. Ties resolve toward doubles, which are the
	// hardest tiles to place later.
	sort.Slice(validMoves, func(i, j int) bool {
		si, sj := validMoves[i].Tile.Sum(), validMoves[j].Tile.Sum()
		if si != sj {
			return si > sj
		}
		return validMoves[i].Tile.IsDouble() && !validMoves[j].Tile.IsDouble()
	})

	return Move{Tile: validMoves[0].Tile}, nil
}

func (b *GoodBot) OnEvent(event interface{}) {}
