package nakama

import (
	"dominoes/internal/domain"
)

// Wire types for match messages. Tiles marshal through the domain type,
// which carries its own a/b JSON tags.

// MatchLabel is the JSON label indexed by Nakama's match listings.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// PlayerState describes one occupied seat in a state snapshot.
type PlayerState struct {
	UserID         string `json:"user_id"`
	Seat           int    `json:"seat"`
	IsOwner        bool   `json:"is_owner"`
	TilesRemaining int    `json:"tiles_remaining"`
	DisplayName    string `json:"display_name"`
	Balance        int64  `json:"balance"`
}

// MatchStateSnapshot is broadcast after seat changes.
type MatchStateSnapshot struct {
	Seats     []string      `json:"seats"`
	OwnerSeat int           `json:"owner_seat"`
	Tick      int64         `json:"tick"`
	Players   []PlayerState `json:"players"`
}

// PlayerLeftMsg tells remaining clients a seat was vacated.
type PlayerLeftMsg struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

// StartGameRequest is the optional OpStartGame payload.
type StartGameRequest struct {
	Tier     string `json:"tier,omitempty"`
	HandSize int    `json:"hand_size,omitempty"`
}

// PlaceTileRequest is the OpPlaceTile payload. Clients may send the tile
// either as an object or as a "a-b" code; the code wins when both are set.
type PlaceTileRequest struct {
	Tile     domain.Tile `json:"tile"`
	TileCode string      `json:"tile_code,omitempty"`
}

// GameStartedMsg announces a new game to every seat.
type GameStartedMsg struct {
	FirstTurnSeat int `json:"first_turn_seat"`
	HandSize      int `json:"hand_size"`
	BoneyardSize  int `json:"boneyard_size"`
}

// HandDealtMsg delivers a hand privately.
type HandDealtMsg struct {
	Hand []domain.Tile `json:"hand"`
}

// TilePlacedMsg announces a placement and the new open ends.
type TilePlacedMsg struct {
	Seat         int         `json:"seat"`
	Tile         domain.Tile `json:"tile"`
	LeftEnd      int         `json:"left_end"`
	RightEnd     int         `json:"right_end"`
	NextTurnSeat int         `json:"next_turn_seat"`
}

// TileDrawnMsg announces a draw without revealing the tile.
type TileDrawnMsg struct {
	Seat              int `json:"seat"`
	BoneyardRemaining int `json:"boneyard_remaining"`
}

// TileReceivedMsg delivers a drawn tile privately to the drawer.
type TileReceivedMsg struct {
	Tile domain.Tile `json:"tile"`
}

// TurnPassedMsg announces a forced pass.
type TurnPassedMsg struct {
	Seat         int `json:"seat"`
	NextTurnSeat int `json:"next_turn_seat"`
}

// GameEndedMsg carries the result and chip settlement.
type GameEndedMsg struct {
	WinnerSeat     int              `json:"winner_seat"`
	Reason         string           `json:"reason"`
	PipCounts      map[string]int   `json:"pip_counts"`
	BalanceChanges map[string]int64 `json:"balance_changes"`
}

// GameErrorMsg is sent privately when a client request is rejected.
type GameErrorMsg struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
