package app

const (
	// PlayersPerGame is the number of seats a dominoes game is played with.
	PlayersPerGame = 2

	// DefaultHandSize is the opening hand size when the caller does not
	// choose one.
	DefaultHandSize = 7
)
