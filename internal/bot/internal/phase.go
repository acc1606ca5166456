package internal

import "dominoes/internal/domain"

// GamePhase describes the current strategic stage of a game.
type GamePhase int

const (
	// PhaseOpening indicates the boneyard is still rich and hands are near full.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates the middle game.
	PhaseMid
	// PhaseEnd indicates the boneyard is empty or a player is close to going out.
	PhaseEnd
)

// DetectPhase infers the phase from boneyard depth and hand sizes.
func DetectPhase(game *domain.Game) GamePhase {
	if game == nil || len(game.Players) == 0 {
		return PhaseMid
	}

	if len(game.Boneyard) == 0 {
		return PhaseEnd
	}
	for _, player := range game.Players {
		if player == nil {
			continue
		}
		if player.Finished || len(player.Hand) <= 3 {
			return PhaseEnd
		}
	}
	if len(game.Boneyard) >= domain.SetSize/4 {
		return PhaseOpening
	}
	return PhaseMid
}
