package app

import (
	"errors"
	"math/rand"
	"time"

	"dominoes/internal/domain"
)

// Service contains dominoes use-cases operating on domain state.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrNoGame          = errors.New("game not started")
	ErrNotPlaying      = errors.New("game not in playing phase")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrTooManyPlayers  = errors.New("dominoes is played with two seats")
	ErrInvalidHandSize = errors.New("hand size must leave tiles in the boneyard")
	ErrUnknownSeat     = errors.New("no player at that seat")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidTile     = errors.New("tile argument missing or out of range")
	ErrTileNotInHand   = errors.New("tile is not in your hand")
	ErrMustPlace       = errors.New("a playable tile is in hand")
	ErrCannotPass      = errors.New("boneyard still has tiles to draw")
)

// StartGame initializes a new Game for the provided players.
// playerIDs are user IDs in seat order; empty strings mark empty seats and
// are skipped. lastWinnerSeat carries the winner of the previous game at
// this table (-1 when there is none) and takes the opening lead on a
// rematch. handSize 0 selects DefaultHandSize.
func (s *Service) StartGame(playerIDs []string, lastWinnerSeat int, handSize int, baseStake int64) (*domain.Game, []Event, error) {
	var seats []string
	for _, userID := range playerIDs {
		if userID == "" {
			continue
		}
		seats = append(seats, userID)
	}

	if len(seats) < PlayersPerGame {
		return nil, nil, ErrTooFewPlayers
	}
	if len(seats) > PlayersPerGame {
		return nil, nil, ErrTooManyPlayers
	}

	if handSize == 0 {
		handSize = DefaultHandSize
	}
	if handSize < 1 || handSize*len(seats) > domain.SetSize {
		return nil, nil, ErrInvalidHandSize
	}

	boneyard := domain.NewTileSet()
	s.rng.Shuffle(len(boneyard), func(i, j int) { boneyard[i], boneyard[j] = boneyard[j], boneyard[i] })

	game := &domain.Game{
		Phase:      domain.PhasePlaying,
		Players:    make(map[string]*domain.Player, len(seats)),
		Seats:      seats,
		FirstMove:  true,
		Boneyard:   boneyard,
		Chain:      domain.NewChain(),
		WinnerSeat: -1,
		BaseStake:  baseStake,
	}
	for i, userID := range seats {
		game.Players[userID] = &domain.Player{UserID: userID, Seat: i}
	}

	// Deal one tile per player per round, in seat order; stop silently
	// should the boneyard run out.
	for round := 0; round < handSize; round++ {
		for _, userID := range seats {
			tile, ok := game.Draw()
			if !ok {
				break
			}
			game.Players[userID].Hand = append(game.Players[userID].Hand, tile)
		}
	}

	// The previous winner leads a rematch; otherwise the opening lead
	// goes to the heaviest double when one was dealt.
	if lastWinnerSeat >= 0 && lastWinnerSeat < len(seats) {
		game.CurrentTurnSeat = lastWinnerSeat
	} else if seat, _, found := domain.HeaviestDouble(game); found {
		game.CurrentTurnSeat = seat
	}

	events := make([]Event, 0, len(seats)+1)
	for _, userID := range seats {
		pl := game.Players[userID]
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				UserID: pl.UserID,
				Hand:   append([]domain.Tile(nil), pl.Hand...),
			},
			Recipients: []string{pl.UserID},
		})
	}
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:         game.Phase,
			FirstTurnSeat: game.CurrentTurnSeat,
			HandSize:      handSize,
			BoneyardSize:  len(game.Boneyard),
		},
	})

	return game, events, nil
}

// PlaceTile validates and applies a placement for the player at seat.
// Rule violations surface as errors; the caller decides whether to
// re-prompt or force a draw.
func (s *Service) PlaceTile(game *domain.Game, seat int, tile domain.Tile) ([]Event, error) {
	pl, err := s.actingPlayer(game, seat)
	if err != nil {
		return nil, err
	}
	if !tile.Valid() {
		return nil, ErrInvalidTile
	}
	if !domain.HandContains(pl.Hand, tile) {
		return nil, ErrTileNotInHand
	}

	if err := game.Chain.Place(tile); err != nil {
		return nil, err
	}

	pl.Hand = domain.RemoveTile(pl.Hand, tile)
	game.FirstMove = false
	game.ConsecutivePasses = 0
	for _, p := range game.Players {
		p.HasPassed = false
	}

	next := s.advanceTurn(game)
	left, right, _ := game.Chain.Ends()
	events := []Event{{
		Kind: EventTilePlaced,
		Payload: TilePlacedPayload{
			Seat:         seat,
			Tile:         tile,
			LeftEnd:      left,
			RightEnd:     right,
			NextTurnSeat: next,
		},
	}}

	if len(pl.Hand) == 0 {
		pl.Finished = true
		events = append(events, s.endGame(game, seat, domain.EndReasonDominoed))
	}

	return events, nil
}

// DrawTile moves one tile from the boneyard into the acting player's hand.
// Drawing is only legal while the player holds no playable tile; the turn
// is kept so the player can draw again or place the drawn tile.
// drawn is false (with no error) when the boneyard is empty.
func (s *Service) DrawTile(game *domain.Game, seat int) (bool, []Event, error) {
	pl, err := s.actingPlayer(game, seat)
	if err != nil {
		return false, nil, err
	}
	if domain.HasPlayableTile(pl.Hand, game.Chain) {
		return false, nil, ErrMustPlace
	}

	tile, ok := game.Draw()
	if !ok {
		return false, nil, nil
	}

	pl.Hand = append(pl.Hand, tile)
	pl.DrawCount++

	events := []Event{
		{
			Kind: EventTileDrawn,
			Payload: TileDrawnPayload{
				Seat:              seat,
				BoneyardRemaining: len(game.Boneyard),
			},
		},
		{
			Kind:       EventTileReceived,
			Payload:    TileReceivedPayload{UserID: pl.UserID, Tile: tile},
			Recipients: []string{pl.UserID},
		},
	}
	return true, events, nil
}

// PassTurn gives up the turn. Passing is only legal once the boneyard is
// empty and the hand holds no playable tile. Two consecutive passes block
// the game and end it on pip count.
func (s *Service) PassTurn(game *domain.Game, seat int) ([]Event, error) {
	pl, err := s.actingPlayer(game, seat)
	if err != nil {
		return nil, err
	}
	if domain.HasPlayableTile(pl.Hand, game.Chain) {
		return nil, ErrMustPlace
	}
	if len(game.Boneyard) > 0 {
		return nil, ErrCannotPass
	}

	pl.HasPassed = true
	game.ConsecutivePasses++
	next := s.advanceTurn(game)

	events := []Event{{
		Kind:    EventTurnPassed,
		Payload: TurnPassedPayload{Seat: seat, NextTurnSeat: next},
	}}

	if game.ConsecutivePasses >= len(game.Seats) {
		winner := s.blockedWinner(game)
		events = append(events, s.endGame(game, winner, domain.EndReasonBlocked))
	}

	return events, nil
}

// actingPlayer runs the shared guards for mutating operations.
func (s *Service) actingPlayer(game *domain.Game, seat int) (*domain.Player, error) {
	if game == nil || game.Chain == nil {
		return nil, ErrNoGame
	}
	if game.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	pl := game.PlayerAtSeat(seat)
	if pl == nil {
		return nil, ErrUnknownSeat
	}
	if game.CurrentTurnSeat != seat {
		return nil, ErrNotYourTurn
	}
	return pl, nil
}

func (s *Service) advanceTurn(game *domain.Game) int {
	game.CurrentTurnSeat = (game.CurrentTurnSeat + 1) % len(game.Seats)
	return game.CurrentTurnSeat
}

// blockedWinner picks the seat with the lower remaining pip count, or -1
// for a dead heat.
func (s *Service) blockedWinner(game *domain.Game) int {
	bestSeat := -1
	bestScore := 0
	tied := false
	for _, p := range game.Players {
		score := domain.PipScore(p.Hand)
		switch {
		case bestSeat == -1 || score < bestScore:
			bestSeat = p.Seat
			bestScore = score
			tied = false
		case score == bestScore:
			tied = true
		}
	}
	if tied {
		return -1
	}
	return bestSeat
}

func (s *Service) endGame(game *domain.Game, winnerSeat int, reason domain.EndReason) Event {
	game.Phase = domain.PhaseEnded
	game.WinnerSeat = winnerSeat
	game.Reason = reason

	pipCounts := make(map[string]int, len(game.Players))
	for _, p := range game.Players {
		pipCounts[p.UserID] = domain.PipScore(p.Hand)
	}

	settlement := game.CalculateSettlement()
	return Event{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			WinnerSeat:     winnerSeat,
			Reason:         reason,
			PipCounts:      pipCounts,
			BalanceChanges: settlement.BalanceChanges,
		},
	}
}
