package domain

// Phase represents the lifecycle stage of a dominoes match.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the active game state where tiles are placed.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after a game concludes.
	PhaseEnded Phase = "ended"
)

// EndReason describes how a game reached PhaseEnded.
type EndReason string

const (
	// EndReasonDominoed means a player emptied their hand.
	EndReasonDominoed EndReason = "dominoed"
	// EndReasonBlocked means nobody could place and the boneyard was empty.
	EndReasonBlocked EndReason = "blocked"
)

// Player holds the domain state for a participant in the game.
type Player struct {
	UserID    string
	Seat      int // 0-based seat index
	Hand      []Tile
	DrawCount int // tiles drawn from the boneyard this game
	HasPassed bool
	Finished  bool
}

// HasTiles reports whether the player still holds any tile.
func (p *Player) HasTiles() bool {
	return p != nil && len(p.Hand) > 0
}

// Game captures the authoritative state for a single dominoes game.
// It lives from StartGame until the game ends and is never reused.
type Game struct {
	Phase           Phase
	Players         map[string]*Player // userID -> player
	Seats           []string           // seat index -> userID
	CurrentTurnSeat int
	FirstMove       bool // no tile placed yet

	Boneyard []Tile
	Chain    *Chain

	ConsecutivePasses int
	WinnerSeat        int // -1 until decided
	Reason            EndReason
	BaseStake         int64
}

// PlayerAtSeat returns the player occupying the given seat, or nil.
func (g *Game) PlayerAtSeat(seat int) *Player {
	if g == nil || seat < 0 || seat >= len(g.Seats) {
		return nil
	}
	return g.Players[g.Seats[seat]]
}

// Draw removes and returns the front tile of the boneyard.
// ok is false when the boneyard is empty; running dry is an expected
// end-of-resource condition, not an error.
func (g *Game) Draw() (Tile, bool) {
	if g == nil || len(g.Boneyard) == 0 {
		return Tile{}, false
	}
	t := g.Boneyard[0]
	g.Boneyard = g.Boneyard[1:]
	return t, true
}

// Settlement captures wallet changes produced by a finished game.
type Settlement struct {
	BalanceChanges map[string]int64 // userID -> chip delta
}

// CalculateSettlement derives chip movements from the finished game.
// A dominoed win pays the loser's remaining pip count times the base
// stake. A blocked game pays the pip-count margin to the lower hand;
// equal counts settle as a wash.
func (g *Game) CalculateSettlement() Settlement {
	s := Settlement{BalanceChanges: make(map[string]int64)}
	if g == nil || g.Phase != PhaseEnded || g.WinnerSeat < 0 {
		return s
	}

	winner := g.PlayerAtSeat(g.WinnerSeat)
	if winner == nil {
		return s
	}

	var amount int64
	switch g.Reason {
	case EndReasonDominoed:
		for _, p := range g.Players {
			if p.Seat != g.WinnerSeat {
				amount += int64(PipScore(p.Hand))
			}
		}
	case EndReasonBlocked:
		winnerScore := PipScore(winner.Hand)
		for _, p := range g.Players {
			if p.Seat != g.WinnerSeat {
				amount += int64(PipScore(p.Hand) - winnerScore)
			}
		}
	}
	amount *= g.BaseStake
	if amount <= 0 {
		return s
	}

	s.BalanceChanges[winner.UserID] = amount
	for _, p := range g.Players {
		if p.Seat != g.WinnerSeat {
			s.BalanceChanges[p.UserID] = -amount
		}
	}
	return s
}
