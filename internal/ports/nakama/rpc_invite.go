package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"dominoes/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchInviteRequest asks for an invite token admitting a user into a
// private match. With no match_id a fresh private match is created.
type MatchInviteRequest struct {
	MatchID string `json:"match_id,omitempty"`
	UserID  string `json:"user_id"`
	Role    string `json:"role,omitempty"`
}

// MatchInviteResponse carries the signed token clients attach as
// join metadata under "invite_token". OwnerToken is set when a fresh
// private match was created, so the caller can join it too.
type MatchInviteResponse struct {
	MatchID    string `json:"match_id"`
	Token      string `json:"token"`
	OwnerToken string `json:"owner_token,omitempty"`
}

// inviteServiceFromEnv builds the invite signer from runtime env vars,
// falling back to test credentials outside production.
func inviteServiceFromEnv(ctx context.Context, logger runtime.Logger) *app.InviteService {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["invite_secret"]
	issuer := env["invite_issuer"]
	if secret == "" || issuer == "" {
		secret = "test-secret"
		issuer = "test-issuer"
		logger.Warn("Invite credentials missing from env, using test defaults.")
	}
	return app.NewInviteService(secret, issuer)
}

// rpcMatchInvite mints an invite token for a private match.
// Payload: {"match_id": "...", "user_id": "...", "role": "opponent"|"spectator"}
func rpcMatchInvite(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	callerID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req MatchInviteRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}
	if req.UserID == "" {
		return "", runtime.NewError("user_id required", 3)
	}
	if req.Role == "" {
		req.Role = app.InviteRoleOpponent
	}

	matchID := req.MatchID
	created := false
	if matchID == "" {
		var err error
		matchID, err = nk.MatchCreate(ctx, MatchNameDominoes, map[string]interface{}{"private": true})
		if err != nil {
			logger.Error("rpcMatchInvite [User:%s]: Failed to create private match: %v", callerID, err)
			return "", runtime.NewError("Internal error", 13) // INTERNAL
		}
		created = true
	}

	invites := inviteServiceFromEnv(ctx, logger)
	token, err := invites.GenerateToken(matchID, req.UserID, req.Role)
	if err != nil {
		logger.Error("rpcMatchInvite [User:%s]: Failed to sign invite: %v", callerID, err)
		return "", runtime.NewError("Internal error", 13)
	}

	res := MatchInviteResponse{MatchID: matchID, Token: token}
	if created && callerID != "" && callerID != req.UserID {
		ownerToken, err := invites.GenerateToken(matchID, callerID, app.InviteRoleOpponent)
		if err != nil {
			logger.Error("rpcMatchInvite [User:%s]: Failed to sign owner invite: %v", callerID, err)
			return "", runtime.NewError("Internal error", 13)
		}
		res.OwnerToken = ownerToken
	}

	resBytes, _ := json.Marshal(res)
	return string(resBytes), nil
}
