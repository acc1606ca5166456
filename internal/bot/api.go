package bot

import (
	"dominoes/internal/domain"
)

// Move represents the decision made by the AI.
type Move struct {
	Pass bool
	Draw bool
	Tile domain.Tile
}

// BotLevel selects a strategy tier.
type BotLevel int

const (
	BotLevelGood BotLevel = iota
	BotLevelSmart
	BotLevelGod
)

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(game *domain.Game, seat int) (Move, error)
	OnEvent(event interface{})
}

// Observations are fed to a Brain via OnEvent so stateful strategies can
// track what opponents reveal. Stateless strategies ignore them.

// GameStartObservation signals a fresh game with the given opening hand size.
type GameStartObservation struct {
	HandSize int
}

// PlacementObservation records a tile placed by a seat.
type PlacementObservation struct {
	Seat int
	Tile domain.Tile
}

// DrawObservation records a seat drawing against the open ends it could not answer.
type DrawObservation struct {
	Seat     int
	LeftEnd  int
	RightEnd int
}

// PassObservation records a seat passing on the open ends with the boneyard dry.
type PassObservation struct {
	Seat     int
	LeftEnd  int
	RightEnd int
}
