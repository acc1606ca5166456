package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is one entry of the bot roster JSON file. Difficulty selects
// the strategy tier an Agent is built with.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

var (
	rosterPool []BotIdentity
	rosterByID map[string]BotIdentity
	rosterOnce sync.Once
	seedOnce   sync.Once
	rosterErr  error
)

// LoadIdentities reads the bot roster from the given path. Entries without
// a user ID stay unmapped until ProvisionBots assigns them one.
func LoadIdentities(path string) error {
	rosterOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			rosterErr = fmt.Errorf("read bot roster: %w", err)
			return
		}
		if err := json.Unmarshal(data, &rosterPool); err != nil {
			rosterErr = fmt.Errorf("parse bot roster: %w", err)
			return
		}

		rosterByID = make(map[string]BotIdentity, len(rosterPool))
		for _, identity := range rosterPool {
			if identity.UserID != "" {
				rosterByID[identity.UserID] = identity
			}
		}
	})
	return rosterErr
}

// ProvisionBots seeds a Nakama account for every roster entry that names a
// device ID, tagging it with is_bot metadata so clients can tell seats
// apart. Runs once per process.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) error {
	var err error
	seedOnce.Do(func() {
		for i := range rosterPool {
			identity := &rosterPool[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, authErr := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if authErr != nil {
				logger.Error("bot roster: seeding account for %s failed: %v", identity.Username, authErr)
				continue
			}

			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if authErr = nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); authErr != nil {
				logger.Warn("bot roster: profile update for %s failed: %v", userID, authErr)
			}

			rosterByID[userID] = *identity
			logger.Info("bot roster: %s (%s) seated, difficulty %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
	return err
}

// GetBotConfig returns the roster entry for a bot user ID.
func GetBotConfig(userID string) (BotIdentity, bool) {
	identity, ok := rosterByID[userID]
	return identity, ok
}

// GetBotUsername returns the username for a bot ID, or "" for non-bots.
func GetBotUsername(userID string) string {
	return rosterByID[userID].Username
}

// GetBotDisplayName returns the display name for a bot ID, falling back to
// the username when the roster entry has none.
func GetBotDisplayName(userID string) string {
	identity := rosterByID[userID]
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}

// GetBotIdentity returns a roster entry by index (mod pool size), with a
// synthetic fallback when no roster was loaded.
func GetBotIdentity(index int) BotIdentity {
	if len(rosterPool) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	return rosterPool[index%len(rosterPool)]
}

// IsBot reports whether the user ID belongs to the roster.
func IsBot(userID string) bool {
	_, ok := rosterByID[userID]
	return ok
}
