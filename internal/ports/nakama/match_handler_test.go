package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dominoes/internal/app"
	"dominoes/internal/bot"
	"dominoes/internal/domain"
	"dominoes/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastOpCode     int64
	lastData       []byte
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

type mockEconomy struct {
	balances map[string]int64
	calls    map[string]int
	updates  []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	if me.calls == nil {
		me.calls = make(map[string]int)
	}
	me.calls[userID]++
	if balance, ok := me.balances[userID]; ok {
		return balance, nil
	}
	return 0, errors.New("balance not found")
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

// mockPresence satisfies runtime.Presence for join/leave tests.
type mockPresence struct {
	userID   string
	username string
}

func (mp mockPresence) GetUserId() string                 { return mp.userID }
func (mp mockPresence) GetSessionId() string              { return "session-" + mp.userID }
func (mp mockPresence) GetNodeId() string                 { return "node-1" }
func (mp mockPresence) GetHidden() bool                   { return false }
func (mp mockPresence) GetPersistence() bool              { return true }
func (mp mockPresence) GetUsername() string               { return mp.username }
func (mp mockPresence) GetStatus() string                 { return "" }
func (mp mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

func init() {
	// Load bot identities for testing.
	if err := bot.LoadIdentities("test_bot_identities.json"); err != nil {
		panic("Failed to load bot identities for tests: " + err.Error())
	}
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{
			name:  "FirstHumanAfterBot",
			seats: []string{bot1, "user-1"},
			want:  1,
		},
		{
			name:  "AllBots",
			seats: []string{bot1, bot2},
			want:  -1,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", ""},
			want:  -1,
		},
		{
			name:  "FirstHumanIsSeatZero",
			seats: []string{"user-1", bot1},
			want:  0,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(test.seats); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestShouldTerminateNoHumans(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  bool
	}{
		{
			name:  "BotsOnly",
			seats: []string{bot1, bot2},
			want:  true,
		},
		{
			name:  "BotAndEmpty",
			seats: []string{bot1, ""},
			want:  true,
		},
		{
			name:  "HumanPresent",
			seats: []string{bot1, "user-1"},
			want:  false,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", ""},
			want:  true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := shouldTerminateNoHumans(test.seats); got != test.want {
				t.Fatalf("shouldTerminateNoHumans() = %t, want %t", got, test.want)
			}
		})
	}
}

func TestMatchLabel_Marshal(t *testing.T) {
	tests := []struct {
		name     string
		label    *MatchLabel
		expected string
	}{
		{
			name:     "LobbyState",
			label:    &MatchLabel{Open: 1, Game: "dominoes", Phase: "lobby"},
			expected: `{"open":1,"game":"dominoes","phase":"lobby"}`,
		},
		{
			name:     "PlayingState",
			label:    &MatchLabel{Open: 0, Game: "dominoes", Phase: "playing"},
			expected: `{"open":0,"game":"dominoes","phase":"playing"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload, err := json.Marshal(test.label)
			if err != nil {
				t.Fatalf("Failed to marshal label: %v", err)
			}
			if string(payload) != test.expected {
				t.Errorf("Got %s, want %s", payload, test.expected)
			}
		})
	}
}

func TestResetTurnSecondsRemainingWithBonus(t *testing.T) {
	handler := &matchHandler{}
	state := &MatchState{
		Game: &domain.Game{
			Phase:           domain.PhasePlaying,
			CurrentTurnSeat: 1,
		},
	}

	handler.resetTurnSecondsRemainingWithBonus(state, noopLogger{}, gameStartTurnTimerBonusSeconds)

	want := int64(defaultTurnDurationSeconds + gameStartTurnTimerBonusSeconds)
	if state.TurnSecondsRemaining != want {
		t.Fatalf("TurnSecondsRemaining = %d, want %d", state.TurnSecondsRemaining, want)
	}
}

func TestProcessBots_AddsBotForSoloHuman(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Seats:                [app.PlayersPerGame]string{"user-1", ""},
		Presences:            make(map[string]runtime.Presence),
		Bots:                 make(map[string]*bot.Agent),
		BotsEnabled:          true,
		BotAutoFillDelay:     2,
		LastSinglePlayerTick: 8,
		Tick:                 10,
	}

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			botCount++
		}
	}

	if botCount != 1 {
		t.Fatalf("Expected 1 bot, got %d", botCount)
	}
	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("Expected 0 open seats after auto-fill, got %d", state.GetOpenSeatsCount())
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.LastSinglePlayerTick)
	}
	if dispatcher.broadcastCount == 0 || dispatcher.labelUpdates == 0 {
		t.Fatalf("Expected match state broadcast and label update after auto-fill")
	}
	if len(state.Bots) != 1 {
		t.Fatalf("Expected a bot agent to be registered, got %d", len(state.Bots))
	}
}

func TestBroadcastMatchState_IncludesBalances(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	botID := bot.GetBotIdentity(0).UserID
	economy := &mockEconomy{
		balances: map[string]int64{
			"user-1": 1200,
			botID:    5000,
		},
	}
	state := &MatchState{
		Seats:     [app.PlayersPerGame]string{"user-1", botID},
		OwnerSeat: 0,
		Tick:      42,
		Presences: make(map[string]runtime.Presence),
		Economy:   economy,
	}

	handler.broadcastMatchState(context.Background(), state, dispatcher, noopLogger{})

	if dispatcher.lastOpCode != OpPlayerJoined {
		t.Fatalf("Expected opcode %d, got %d", OpPlayerJoined, dispatcher.lastOpCode)
	}
	if len(dispatcher.lastData) == 0 {
		t.Fatalf("Expected snapshot payload to be broadcast")
	}

	var snapshot MatchStateSnapshot
	if err := json.Unmarshal(dispatcher.lastData, &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}

	balances := make(map[string]int64)
	for _, player := range snapshot.Players {
		balances[player.UserID] = player.Balance
	}

	if got := balances["user-1"]; got != 1200 {
		t.Fatalf("Expected human balance 1200, got %d", got)
	}
	if got := balances[botID]; got != 5000 {
		t.Fatalf("Expected bot balance 5000, got %d", got)
	}
	if economy.calls["user-1"] != 1 {
		t.Fatalf("Expected balance lookup for human, got %d", economy.calls["user-1"])
	}
	if economy.calls[botID] != 1 {
		t.Fatalf("Expected balance lookup for bot, got %d", economy.calls[botID])
	}
}

func TestBroadcastEvent_GameEndedSettlesAndClearsGame(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	botID := bot.GetBotIdentity(0).UserID
	economy := &mockEconomy{balances: map[string]int64{}}
	state := &MatchState{
		Seats:          [app.PlayersPerGame]string{"user-1", botID},
		Presences:      make(map[string]runtime.Presence),
		Economy:        economy,
		LastWinnerSeat: -1,
		Game: &domain.Game{
			Phase: domain.PhaseEnded,
		},
	}

	ev := app.Event{
		Kind: app.EventGameEnded,
		Payload: app.GameEndedPayload{
			WinnerSeat: 0,
			Reason:     domain.EndReasonDominoed,
			PipCounts:  map[string]int{"user-1": 0, botID: 12},
			BalanceChanges: map[string]int64{
				"user-1": 120,
				botID:    -120,
			},
		},
	}

	handler.broadcastEvent(context.Background(), state, dispatcher, noopLogger{}, ev)

	if dispatcher.lastOpCode != OpGameEnded {
		t.Fatalf("Expected opcode %d, got %d", OpGameEnded, dispatcher.lastOpCode)
	}
	if state.Game != nil {
		t.Fatal("Expected game state cleared after game end")
	}
	if state.LastWinnerSeat != 0 {
		t.Fatalf("Expected last winner seat 0, got %d", state.LastWinnerSeat)
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatal("Expected label update back to lobby")
	}

	// Bots keep their winnings virtual; only the human wallet settles.
	if len(economy.updates) != 1 {
		t.Fatalf("Expected 1 wallet update, got %d", len(economy.updates))
	}
	if economy.updates[0].UserID != "user-1" || economy.updates[0].Amount != 120 {
		t.Fatalf("Unexpected wallet update: %+v", economy.updates[0])
	}
}

func TestProcessTurnTimer_AutoPlaysOnExpiry(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	svc := app.NewService(nil)

	chain := domain.NewChain()
	if err := chain.Place(domain.Tile{A: 3, B: 5}); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	game := &domain.Game{
		Phase: domain.PhasePlaying,
		Players: map[string]*domain.Player{
			"user-1": {UserID: "user-1", Seat: 0, Hand: []domain.Tile{{A: 2, B: 3}, {A: 0, B: 1}}},
			"user-2": {UserID: "user-2", Seat: 1, Hand: []domain.Tile{{A: 6, B: 6}}},
		},
		Seats:      []string{"user-1", "user-2"},
		Chain:      chain,
		WinnerSeat: -1,
	}

	state := &MatchState{
		Seats:                [app.PlayersPerGame]string{"user-1", "user-2"},
		Presences:            make(map[string]runtime.Presence),
		App:                  svc,
		Game:                 game,
		LastTurnSeat:         0,
		TurnSecondsRemaining: 1,
	}

	handler.processTurnTimer(context.Background(), state, dispatcher, noopLogger{})

	if game.CurrentTurnSeat != 1 {
		t.Fatalf("Expected turn to advance to seat 1, got %d", game.CurrentTurnSeat)
	}
	if len(game.Players["user-1"].Hand) != 1 {
		t.Fatalf("Expected auto-play to shed a tile, hand size %d", len(game.Players["user-1"].Hand))
	}
	if dispatcher.broadcastCount == 0 {
		t.Fatal("Expected placement broadcast")
	}
}

func TestMatchJoinAttempt_SeatLockDuringGame(t *testing.T) {
	handler := &matchHandler{}
	game := &domain.Game{
		Phase: domain.PhasePlaying,
		Seats: []string{"user-1", "user-2"},
		Players: map[string]*domain.Player{
			"user-1": {UserID: "user-1", Seat: 0, Hand: []domain.Tile{{A: 1, B: 2}}},
			"user-2": {UserID: "user-2", Seat: 1, Hand: []domain.Tile{{A: 3, B: 4}}},
		},
		Chain:      domain.NewChain(),
		WinnerSeat: -1,
	}
	// user-2 dropped mid-game and their seat was freed.
	state := &MatchState{
		Seats:       [app.PlayersPerGame]string{"user-1", ""},
		Presences:   make(map[string]runtime.Presence),
		JoinedRoles: make(map[string]string),
		Game:        game,
	}

	_, allowed, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, state, mockPresence{userID: "intruder"}, nil)
	if allowed {
		t.Fatal("A newcomer must not take over a seat mid-game")
	}
	if reason != "game in progress" {
		t.Fatalf("reason = %q, want game in progress", reason)
	}

	_, allowed, _ = handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, state, mockPresence{userID: "user-2"}, nil)
	if !allowed {
		t.Fatal("A seated player must be able to reconnect mid-game")
	}
}

func TestMatchJoin_ReseatsReturningPlayer(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	game := &domain.Game{
		Phase: domain.PhasePlaying,
		Seats: []string{"user-1", "user-2"},
		Players: map[string]*domain.Player{
			"user-1": {UserID: "user-1", Seat: 0, Hand: []domain.Tile{{A: 1, B: 2}}},
			"user-2": {UserID: "user-2", Seat: 1, Hand: []domain.Tile{{A: 3, B: 4}}},
		},
		Chain:      domain.NewChain(),
		WinnerSeat: -1,
	}
	state := &MatchState{
		Seats:       [app.PlayersPerGame]string{"user-1", ""},
		OwnerSeat:   0,
		Presences:   map[string]runtime.Presence{"user-1": mockPresence{userID: "user-1"}},
		JoinedRoles: make(map[string]string),
		Game:        game,
	}

	handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.Presence{mockPresence{userID: "user-2"}})

	if state.Seats[1] != "user-2" {
		t.Fatalf("Seats[1] = %q, want returning player back in seat 1", state.Seats[1])
	}
	if game.Players["user-2"].Seat != 1 || len(game.Players["user-2"].Hand) != 1 {
		t.Fatal("Reconnect must not disturb the domain game state")
	}
}

func TestMatchLeave_BroadcastsDeparture(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Seats:     [app.PlayersPerGame]string{"user-1", "user-2"},
		OwnerSeat: 0,
		Presences: map[string]runtime.Presence{
			"user-1": mockPresence{userID: "user-1"},
			"user-2": mockPresence{userID: "user-2"},
		},
		JoinedRoles: make(map[string]string),
	}

	result := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 3, state, []runtime.Presence{mockPresence{userID: "user-2"}})
	if result == nil {
		t.Fatal("Match with a remaining human must not terminate")
	}

	if dispatcher.lastOpCode != OpPlayerLeft {
		t.Fatalf("Expected opcode %d, got %d", OpPlayerLeft, dispatcher.lastOpCode)
	}
	var msg PlayerLeftMsg
	if err := json.Unmarshal(dispatcher.lastData, &msg); err != nil {
		t.Fatalf("Failed to unmarshal PlayerLeftMsg: %v", err)
	}
	if msg.UserID != "user-2" || msg.Seat != 1 {
		t.Fatalf("PlayerLeftMsg = %+v, want user-2 at seat 1", msg)
	}
	if state.Seats[1] != "" {
		t.Fatalf("Seat 1 should be freed, got %q", state.Seats[1])
	}
}

func TestHandleStartGame_RematchWinnerLeads(t *testing.T) {
	svc := app.NewService(nil)
	game, _, err := svc.StartGame([]string{"user-1", "user-2"}, 1, 7, 10)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if game.CurrentTurnSeat != 1 {
		t.Fatalf("CurrentTurnSeat = %d, want last winner seat 1", game.CurrentTurnSeat)
	}
}
