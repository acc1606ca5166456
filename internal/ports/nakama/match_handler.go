package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"dominoes/internal/app"
	"dominoes/internal/bot"
	"dominoes/internal/config"
	"dominoes/internal/domain"
	"dominoes/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	// gameStartTurnTimerBonusSeconds pads the very first turn so clients
	// can finish their deal animation.
	gameStartTurnTimerBonusSeconds = 5

	defaultTurnDurationSeconds = 16
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats          [app.PlayersPerGame]string  `json:"seats"`            // Array of user IDs, empty string means seat is empty
	OwnerSeat      int                         `json:"owner_seat"`       // Seat index of the match owner
	LastWinnerSeat int                         `json:"last_winner_seat"` // Seat index of the winner of the last game
	Tick           int64                       `json:"tick"`             // Current tick of the match for turn-based logic
	Presences      map[string]runtime.Presence `json:"-"`                // Map UserId -> Presence for targeted messaging
	App            *app.Service                `json:"-"`                // Dominoes app service with game logic
	Game           *domain.Game                `json:"-"`                // Current active game state (nil if in lobby)

	Private     bool               `json:"private"` // Invite-only match
	Invites     *app.InviteService `json:"-"`       // Verifies invite tokens for private matches
	JoinedRoles map[string]string  `json:"-"`       // UserId -> invite role granted at join-attempt time

	TurnSecondsRemaining int64 `json:"turn_seconds_remaining"` // Countdown before the current turn is auto-played
	LastTurnSeat         int   `json:"last_turn_seat"`         // Seat the countdown is tracking

	BotsEnabled          bool                  `json:"bots_enabled"`            // Whether AI players are allowed
	BotMinDelay          int                   `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                   `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                   `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64                 `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent `json:"-"`                       // Active bot agents

	Economy ports.EconomyPort `json:"-"` // Interface to Nakama wallet
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load bot identities from data folder
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	// Load stake configuration
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Tick:           time.Now().Unix(),
		Presences:      make(map[string]runtime.Presence),
		App:            app.NewService(nil),
		OwnerSeat:      -1,
		LastWinnerSeat: -1,
		JoinedRoles:    make(map[string]string),
		Bots:           make(map[string]*bot.Agent),
		Economy:        NewNakamaEconomyAdapter(nk),
	}

	if private, ok := params["private"].(bool); ok && private {
		state.Private = true
		state.Invites = inviteServiceFromEnv(ctx, logger)
	}

	// Read environment variables for bot configuration
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["dominoes_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["dominoes_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["dominoes_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["dominoes_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}

	// Defaults if not set
	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		if cfg := config.GetGameConfig(); cfg != nil && cfg.BotAutoFillDelaySeconds > 0 {
			state.BotAutoFillDelay = cfg.BotAutoFillDelaySeconds
		} else {
			state.BotAutoFillDelay = 5
		}
	}

	labelBytes, err := json.Marshal(&MatchLabel{
		Open:  state.GetOpenSeatsCount(),
		Game:  "dominoes",
		Phase: "lobby",
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // 1 tick per second
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.Private {
		invite, err := matchState.Invites.Verify(metadata["invite_token"])
		if err != nil {
			logger.Warn("MatchJoinAttempt: Rejected %s: %v", presence.GetUserId(), err)
			return state, false, "invite required"
		}
		if invite.UserID != presence.GetUserId() {
			return state, false, "invite issued for another user"
		}
		if matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string); matchID != "" && invite.MatchID != matchID {
			return state, false, "invite is for another match"
		}
		matchState.JoinedRoles[presence.GetUserId()] = invite.Role

		// Spectators never take a seat, so the seat check below does not apply.
		if invite.Role == app.InviteRoleSpectator {
			return matchState, true, ""
		}
	}

	// Mid-game, the only seat join allowed is a reconnect by one of the
	// seated players. A newcomer on a freed seat would inherit the
	// departed player's hand.
	if matchState.Game != nil {
		if matchState.Game.Players[presence.GetUserId()] != nil {
			return matchState, true, ""
		}
		return state, false, "game in progress"
	}

	// Allow join if there is an empty seat OR a bot to replace (if game hasn't started)
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if matchState.JoinedRoles[p.GetUserId()] == app.InviteRoleSpectator {
			logger.Debug("MatchJoin: %s joined as spectator.", p.GetUserId())
			continue
		}

		// A reconnecting player goes back to their original seat.
		if matchState.Game != nil {
			if pl := matchState.Game.Players[p.GetUserId()]; pl != nil && pl.Seat >= 0 && pl.Seat < len(matchState.Seats) {
				matchState.Seats[pl.Seat] = p.GetUserId()
				logger.Info("MatchJoin: %s reconnected to seat %d.", p.GetUserId(), pl.Seat)
				continue
			}
		}

		// Assign seat: Try empty seats first, then bots (if lobby)
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId) // Cleanup AI
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)

	// Broadcast the current match state to all presences after join.
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	ownerLeft := false
	var departures []PlayerLeftMsg
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		delete(matchState.JoinedRoles, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
				departures = append(departures, PlayerLeftMsg{UserID: p.GetUserId(), Seat: i})

				if matchState.OwnerSeat == i {
					ownerLeft = true
				}
				break
			}
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		} else if ownerLeft {
			logger.Debug("MatchLeave: Owner left and no human owner is available.")
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	for _, departure := range departures {
		bytes, err := json.Marshal(departure)
		if err != nil {
			logger.Error("MatchLeave: Failed to marshal PlayerLeftMsg: %v", err)
			continue
		}
		dispatcher.BroadcastMessage(OpPlayerLeft, bytes, nil, nil, true)
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Handle incoming messages
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame, OpRequestNewGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlaceTile:
			mh.handlePlaceTile(ctx, matchState, dispatcher, logger, msg)
		case OpDrawTile:
			mh.handleDrawTile(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// AI Logic
	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	// Turn countdown for human seats
	mh.processTurnTimer(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with a bot if there's only one human player after delay
	if state.Game == nil {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						identity := bot.GetBotIdentity(i)
						botID := identity.UserID
						state.Seats[i] = botID

						agent, err := bot.NewAgent(botID)
						if err != nil {
							logger.Error("Failed to create bot agent for %s: %v", botID, err)
						} else {
							state.Bots[botID] = agent
						}

						logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, botID, i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(ctx, state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			// Reset timer if 0 or >1 humans
			state.LastSinglePlayerTick = 0
		}
	}

	// 2. Handle bot turns in-game
	if state.Game != nil && state.Game.Phase == domain.PhasePlaying {
		currentTurn := state.Game.CurrentTurnSeat
		currentUserID := state.Seats[currentTurn]

		if isBotUserId(currentUserID) {
			if state.BotWaitUntil == 0 {
				delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
				state.BotWaitUntil = state.Tick + int64(delay)
				logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", currentUserID, currentTurn, state.BotWaitUntil, state.Tick)
			}

			if state.Tick >= state.BotWaitUntil {
				state.BotWaitUntil = 0 // Reset for next turn

				agent, exists := state.Bots[currentUserID]
				if !exists {
					// Fallback if agent missing (shouldn't happen for new bots)
					var err error
					agent, err = bot.NewAgent(currentUserID)
					if err != nil {
						logger.Error("processBots: Failed to create fallback agent: %v", err)
						return
					}
					state.Bots[currentUserID] = agent
				}

				move, err := agent.Play(state.Game)
				if err != nil {
					logger.Error("processBots: Bot %s failed to calculate move: %v", currentUserID, err)
					return
				}

				mh.applyMove(ctx, state, dispatcher, logger, currentTurn, move)
			}
		} else {
			// Not a bot turn, reset wait if it was set
			state.BotWaitUntil = 0
		}
	}
}

// processTurnTimer counts down the active turn and auto-plays it on expiry
// so a stalled client cannot freeze the match.
func (mh *matchHandler) processTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.Game.Phase != domain.PhasePlaying {
		state.TurnSecondsRemaining = 0
		return
	}

	currentTurn := state.Game.CurrentTurnSeat
	if currentTurn != state.LastTurnSeat {
		state.LastTurnSeat = currentTurn
		mh.resetTurnSecondsRemainingWithBonus(state, logger, 0)
		return
	}

	// Bots run on their own delay window.
	if isBotUserId(state.Seats[currentTurn]) {
		return
	}

	state.TurnSecondsRemaining--
	if state.TurnSecondsRemaining > 0 {
		return
	}

	logger.Info("processTurnTimer: Seat %d timed out, auto-playing.", currentTurn)
	fallback := &bot.GoodBot{}
	move, err := fallback.CalculateMove(state.Game, currentTurn)
	if err != nil {
		logger.Error("processTurnTimer: Fallback move failed: %v", err)
		return
	}
	mh.applyMove(ctx, state, dispatcher, logger, currentTurn, move)

	// A forced draw keeps the turn; pace follow-up draws one per tick.
	if state.Game != nil && state.Game.CurrentTurnSeat == currentTurn {
		state.TurnSecondsRemaining = 1
	}
}

// resetTurnSecondsRemainingWithBonus restarts the countdown from the
// configured turn duration plus the given bonus seconds.
func (mh *matchHandler) resetTurnSecondsRemainingWithBonus(state *MatchState, logger runtime.Logger, bonus int) {
	duration := defaultTurnDurationSeconds
	if cfg := config.GetGameConfig(); cfg != nil && cfg.TurnDurationSeconds > 0 {
		duration = cfg.TurnDurationSeconds
	}
	state.TurnSecondsRemaining = int64(duration + bonus)
}

// applyMove routes a bot or fallback move through the app service.
func (mh *matchHandler) applyMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int, move bot.Move) {
	switch {
	case move.Draw:
		drawn, events, err := state.App.DrawTile(state.Game, seat)
		if err != nil {
			logger.Warn("applyMove: Draw for seat %d failed: %v", seat, err)
			return
		}
		if !drawn {
			// Boneyard dry; the pass path takes over.
			events, err = state.App.PassTurn(state.Game, seat)
			if err != nil {
				logger.Warn("applyMove: Pass for seat %d failed: %v", seat, err)
				return
			}
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	case move.Pass:
		events, err := state.App.PassTurn(state.Game, seat)
		if err != nil {
			logger.Warn("applyMove: Pass for seat %d failed: %v", seat, err)
			return
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	default:
		events, err := state.App.PlaceTile(state.Game, seat, move.Tile)
		if err != nil {
			logger.Warn("applyMove: Placement %v for seat %d failed: %v", move.Tile, seat, err)
			return
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	}
}

func (mh *matchHandler) broadcastMatchState(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var playerStates []PlayerState
	for i, userId := range state.Seats {
		if userId == "" {
			continue
		}

		displayName := userId
		if p, exists := state.Presences[userId]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotUsername(userId); name != "" {
			displayName = name
		}

		tilesRemaining := 0
		if state.Game != nil {
			if p := state.Game.PlayerAtSeat(i); p != nil {
				tilesRemaining = len(p.Hand)
			}
		}

		var balance int64
		if state.Economy != nil {
			if b, err := state.Economy.GetBalance(ctx, userId); err == nil {
				balance = b
			}
		}

		playerStates = append(playerStates, PlayerState{
			UserID:         userId,
			Seat:           i,
			IsOwner:        i == state.OwnerSeat,
			TilesRemaining: tilesRemaining,
			DisplayName:    displayName,
			Balance:        balance,
		})
	}

	snapshot := MatchStateSnapshot{
		Seats:     state.Seats[:],
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Players:   playerStates,
	}
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("Failed to marshal match state snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpPlayerJoined, bytes, nil, nil, true)
}

func (mh *matchHandler) senderSeat(state *MatchState, userID string) int {
	for i, seatUserId := range state.Seats {
		if seatUserId == userID {
			return i
		}
	}
	return -1
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	request := StartGameRequest{}
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &request); err != nil {
			logger.Warn("StartGame: Invalid StartGameRequest from %s: %v", senderID, err)
			return
		}
	}

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}

	if state.Game != nil && state.Game.Phase == domain.PhasePlaying {
		logger.Warn("StartGame: Game already in progress.")
		return
	}

	if state.GetOccupiedSeatCount() < app.PlayersPerGame {
		logger.Warn("StartGame: Cannot start with %d players. Need %d.", state.GetOccupiedSeatCount(), app.PlayersPerGame)
		return
	}

	baseStake := config.GetBaseStake(request.Tier)
	handSize := request.HandSize
	if handSize == 0 {
		handSize = config.GetDefaultHandSize()
	}

	game, events, err := state.App.StartGame(state.Seats[:], state.LastWinnerSeat, handSize, baseStake)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.Game = game
	state.LastTurnSeat = game.CurrentTurnSeat
	mh.resetTurnSecondsRemainingWithBonus(state, logger, gameStartTurnTimerBonusSeconds)

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Game started with %d players.", app.PlayersPerGame)
}

func (mh *matchHandler) handlePlaceTile(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	if state.Game == nil {
		logger.Warn("handlePlaceTile: Game not started.")
		return
	}

	request := PlaceTileRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Error("handlePlaceTile: Failed to unmarshal PlaceTileRequest: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed tile payload")
		return
	}

	tile := request.Tile
	if request.TileCode != "" {
		var err error
		if tile, err = domain.TileFromString(request.TileCode); err != nil {
			logger.Warn("handlePlaceTile: Bad tile code %q from %s: %v", request.TileCode, senderID, err)
			mh.sendError(state, dispatcher, logger, senderID, 400, "malformed tile payload")
			return
		}
	}

	events, err := state.App.PlaceTile(state.Game, senderSeat, tile)
	if err != nil {
		logger.Warn("handlePlaceTile: User %s (seat %d) failed to place %v: %v", senderID, senderSeat, tile, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleDrawTile(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	if state.Game == nil {
		logger.Warn("handleDrawTile: Game not started.")
		return
	}

	drawn, events, err := state.App.DrawTile(state.Game, senderSeat)
	if err != nil {
		logger.Warn("handleDrawTile: User %s (seat %d) failed to draw: %v", senderID, senderSeat, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	if !drawn {
		mh.sendError(state, dispatcher, logger, senderID, 404, "boneyard is empty")
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	if state.Game == nil {
		logger.Warn("handlePassTurn: Game not started.")
		return
	}

	events, err := state.App.PassTurn(state.Game, senderSeat)
	if err != nil {
		logger.Warn("handlePassTurn: User %s (seat %d) failed to pass turn: %v", senderID, senderSeat, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// dispatchEvents feeds each event to the bot agents and then broadcasts it.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.notifyAgents(state, ev)
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// notifyAgents converts app events into bot observations. Agents only see
// what a player at the table would see.
func (mh *matchHandler) notifyAgents(state *MatchState, ev app.Event) {
	if len(state.Bots) == 0 {
		return
	}

	var observation interface{}
	switch ev.Kind {
	case app.EventGameStarted:
		p := ev.Payload.(app.GameStartedPayload)
		observation = bot.GameStartObservation{HandSize: p.HandSize}
	case app.EventTilePlaced:
		p := ev.Payload.(app.TilePlacedPayload)
		observation = bot.PlacementObservation{Seat: p.Seat, Tile: p.Tile}
	case app.EventTileDrawn:
		p := ev.Payload.(app.TileDrawnPayload)
		left, right, ok := mh.currentEnds(state)
		if !ok {
			return
		}
		observation = bot.DrawObservation{Seat: p.Seat, LeftEnd: left, RightEnd: right}
	case app.EventTurnPassed:
		p := ev.Payload.(app.TurnPassedPayload)
		left, right, ok := mh.currentEnds(state)
		if !ok {
			return
		}
		observation = bot.PassObservation{Seat: p.Seat, LeftEnd: left, RightEnd: right}
	default:
		return
	}

	for _, agent := range state.Bots {
		agent.OnGameEvent(observation)
	}
}

func (mh *matchHandler) currentEnds(state *MatchState) (int, int, bool) {
	if state.Game == nil {
		return 0, 0, false
	}
	return state.Game.Chain.Ends()
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var payload interface{}

	switch ev.Kind {
	case app.EventGameStarted:
		opCode = OpGameStarted
		p := ev.Payload.(app.GameStartedPayload)
		logger.Debug("Event: game_started (firstTurnSeat=%d, handSize=%d, boneyard=%d)", p.FirstTurnSeat, p.HandSize, p.BoneyardSize)
		payload = GameStartedMsg{
			FirstTurnSeat: p.FirstTurnSeat,
			HandSize:      p.HandSize,
			BoneyardSize:  p.BoneyardSize,
		}
	case app.EventHandDealt:
		opCode = OpHandDealt
		p := ev.Payload.(app.HandDealtPayload)
		payload = HandDealtMsg{Hand: p.Hand}
	case app.EventTilePlaced:
		opCode = OpTilePlaced
		p := ev.Payload.(app.TilePlacedPayload)
		payload = TilePlacedMsg{
			Seat:         p.Seat,
			Tile:         p.Tile,
			LeftEnd:      p.LeftEnd,
			RightEnd:     p.RightEnd,
			NextTurnSeat: p.NextTurnSeat,
		}
	case app.EventTileDrawn:
		opCode = OpTileDrawn
		p := ev.Payload.(app.TileDrawnPayload)
		payload = TileDrawnMsg{Seat: p.Seat, BoneyardRemaining: p.BoneyardRemaining}
	case app.EventTileReceived:
		opCode = OpTileReceived
		p := ev.Payload.(app.TileReceivedPayload)
		payload = TileReceivedMsg{Tile: p.Tile}
	case app.EventTurnPassed:
		opCode = OpTurnPassed
		p := ev.Payload.(app.TurnPassedPayload)
		payload = TurnPassedMsg{Seat: p.Seat, NextTurnSeat: p.NextTurnSeat}
	case app.EventGameEnded:
		opCode = OpGameEnded
		p := ev.Payload.(app.GameEndedPayload)
		payload = GameEndedMsg{
			WinnerSeat:     p.WinnerSeat,
			Reason:         string(p.Reason),
			PipCounts:      p.PipCounts,
			BalanceChanges: p.BalanceChanges,
		}

		// Apply Balance Changes to Nakama Wallets
		if state.Economy != nil {
			updates := make([]ports.WalletUpdate, 0, len(p.BalanceChanges))
			for userID, amount := range p.BalanceChanges {
				// Skip bots
				if isBotUserId(userID) {
					continue
				}
				updates = append(updates, ports.WalletUpdate{
					UserID: userID,
					Amount: amount,
					Metadata: map[string]interface{}{
						"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
						"reason":   "game_settlement",
					},
				})
			}
			if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
				logger.Error("Failed to update balances: %v", err)
			}
		}

		// Save the winner for the next game
		if p.WinnerSeat >= 0 {
			state.LastWinnerSeat = p.WinnerSeat
		}
		// Game ended, clear game state and update label back to lobby
		state.Game = nil
		state.TurnSecondsRemaining = 0
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they are bots),
		// we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendError sends a GameErrorMsg to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(GameErrorMsg{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorMsg: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := "lobby"
	if state.Game != nil {
		phase = "playing"
	}

	labelBytes, err := json.Marshal(&MatchLabel{
		Open:  state.GetOpenSeatsCount(),
		Game:  "dominoes",
		Phase: phase,
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
