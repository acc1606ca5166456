package brain

import (
	"dominoes/internal/domain"
)

// TileStatus represents what the bot knows about a specific tile.
type TileStatus int

const (
	StatusUnknown TileStatus = iota // Could be in the boneyard or an opponent's hand
	StatusMine                      // In the bot's hand
	StatusPlayed                    // Already on the chain
)

// OpponentProfile tracks what a seat's observable behaviour reveals
// about its hidden hand.
type OpponentProfile struct {
	Seat           int
	TilesRemaining int
	// Draws counts boneyard draws observed for this seat.
	Draws int
	// Voids maps a pip value to the Draws count at the moment the seat
	// revealed it held no tile carrying that pip. Later draws can break
	// the void, so the estimator decays confidence by draws since.
	Voids map[int]int
}

// NewOpponentProfile creates an empty profile for a seat.
func NewOpponentProfile(seat int) *OpponentProfile {
	return &OpponentProfile{Seat: seat, Voids: make(map[int]int)}
}

// GameMemory stores the bot's private view of the game.
type GameMemory struct {
	// SetStatus tracks all 28 tiles of the double-six set.
	SetStatus [domain.SetSize]TileStatus
	// Opponents tracks behavioural profiles by seat index.
	Opponents map[int]*OpponentProfile
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	return &GameMemory{
		Opponents: make(map[int]*OpponentProfile),
	}
}

// Reset clears the memory for a new game.
func (m *GameMemory) Reset(handSize int) {
	for i := range m.SetStatus {
		m.SetStatus[i] = StatusUnknown
	}
	for _, p := range m.Opponents {
		p.Voids = make(map[int]int)
		p.Draws = 0
		p.TilesRemaining = handSize
	}
}

// MarkMine records the tiles currently in the bot's hand.
func (m *GameMemory) MarkMine(hand []domain.Tile) {
	for _, t := range hand {
		m.SetStatus[tileToIndex(t)] = StatusMine
	}
}

// MarkPlayed records tiles that sit on the chain.
func (m *GameMemory) MarkPlayed(tiles []domain.Tile) {
	for _, t := range tiles {
		m.SetStatus[tileToIndex(t)] = StatusPlayed
	}
}

// SyncView reconciles the memory with what the bot can see directly:
// its own hand and the chain. Tiles previously marked Mine that are no
// longer held revert to Unknown before re-marking.
func (m *GameMemory) SyncView(hand []domain.Tile, chain []domain.Tile) {
	for i, status := range m.SetStatus {
		if status == StatusMine {
			m.SetStatus[i] = StatusUnknown
		}
	}
	m.MarkMine(hand)
	m.MarkPlayed(chain)
}

// RecordPlacement logs that a seat placed a tile on the chain.
func (m *GameMemory) RecordPlacement(seat int, tile domain.Tile) {
	m.SetStatus[tileToIndex(tile)] = StatusPlayed

	p := m.profile(seat)
	p.TilesRemaining--
	if p.TilesRemaining < 0 {
		p.TilesRemaining = 0
	}
}

// RecordDraw notes that a seat drew because it could not answer either
// open end. Both end pips become voids as of this draw.
func (m *GameMemory) RecordDraw(seat, leftEnd, rightEnd int) {
	p := m.profile(seat)
	p.Draws++
	p.TilesRemaining++
	p.Voids[leftEnd] = p.Draws
	p.Voids[rightEnd] = p.Draws
}

// RecordPass notes that a seat passed with the boneyard dry. Unlike a
// draw, no new tile arrives, so these voids hold until the seat places.
func (m *GameMemory) RecordPass(seat, leftEnd, rightEnd int) {
	p := m.profile(seat)
	p.Voids[leftEnd] = p.Draws
	p.Voids[rightEnd] = p.Draws
}

// IsAccounted reports whether the tile's location is known.
func (m *GameMemory) IsAccounted(t domain.Tile) bool {
	return m.SetStatus[tileToIndex(t)] != StatusUnknown
}

// UnseenCount returns how many tiles are neither in the bot's hand nor
// on the chain.
func (m *GameMemory) UnseenCount() int {
	count := 0
	for _, status := range m.SetStatus {
		if status == StatusUnknown {
			count++
		}
	}
	return count
}

func (m *GameMemory) profile(seat int) *OpponentProfile {
	p, ok := m.Opponents[seat]
	if !ok {
		p = NewOpponentProfile(seat)
		m.Opponents[seat] = p
	}
	return p
}

// tileToIndex converts a tile to a 0-27 index over the canonical
// (low, high) ordering of the double-six set.
func tileToIndex(t domain.Tile) int {
	lo, hi := t.A, t.B
	if lo > hi {
		lo, hi = hi, lo
	}
	// Row lo starts after the rows for all lower pips.
	idx := 0
	for p := 0; p < lo; p++ {
		idx += domain.MaxPip + 1 - p
	}
	return idx + (hi - lo)
}
