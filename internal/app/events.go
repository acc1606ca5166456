package app

import "dominoes/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted  EventKind = "game_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventTilePlaced   EventKind = "tile_placed"
	EventTileDrawn    EventKind = "tile_drawn"
	EventTileReceived EventKind = "tile_received"
	EventTurnPassed   EventKind = "turn_passed"
	EventGameEnded    EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	Phase         domain.Phase
	FirstTurnSeat int
	HandSize      int
	BoneyardSize  int
}

type HandDealtPayload struct {
	UserID string
	Hand   []domain.Tile
}

type TilePlacedPayload struct {
	Seat         int
	Tile         domain.Tile
	LeftEnd      int
	RightEnd     int
	NextTurnSeat int
}

// TileDrawnPayload is broadcast; the drawn tile itself goes only to the
// drawer via TileReceivedPayload.
type TileDrawnPayload struct {
	Seat              int
	BoneyardRemaining int
}

type TileReceivedPayload struct {
	UserID string
	Tile   domain.Tile
}

type TurnPassedPayload struct {
	Seat         int
	NextTurnSeat int
}

type GameEndedPayload struct {
	WinnerSeat     int // -1 on a drawn blocked game
	Reason         domain.EndReason
	PipCounts      map[string]int // userID -> remaining pips
	BalanceChanges map[string]int64
}
