package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// InviteService issues and verifies signed tokens that admit a specific
// user into a private match. Tokens are HS256 JWTs so clients can pass
// them around as opaque strings.
type InviteService struct {
	secret string
	issuer string
	ttl    time.Duration
}

const (
	// InviteRoleOpponent admits the bearer into an open seat.
	InviteRoleOpponent = "opponent"
	// InviteRoleSpectator admits the bearer as a watcher only.
	InviteRoleSpectator = "spectator"

	defaultInviteTTL = time.Hour
)

// Invite carries the verified contents of an invite token.
type Invite struct {
	TokenID string
	MatchID string
	UserID  string
	Role    string
}

func NewInviteService(secret, issuer string) *InviteService {
	return &InviteService{
		secret: secret,
		issuer: issuer,
		ttl:    defaultInviteTTL,
	}
}

// GenerateToken signs an invite for the given user and match.
func (s *InviteService) GenerateToken(matchID, userID, role string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("invite service is nil")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("invite config is incomplete")
	}
	if matchID == "" || userID == "" {
		return "", fmt.Errorf("match id and user id are required")
	}
	switch role {
	case InviteRoleOpponent, InviteRoleSpectator:
	default:
		return "", fmt.Errorf("unsupported invite role: %s", role)
	}

	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  userID,
		"exp":  time.Now().Add(s.ttl).Unix(),
		"jti":  uuid.NewString(),
		"mid":  matchID,
		"role": role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify parses and validates an invite token, returning its contents.
func (s *InviteService) Verify(tokenString string) (Invite, error) {
	if s == nil || s.secret == "" {
		return Invite{}, fmt.Errorf("invite config is incomplete")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return Invite{}, fmt.Errorf("invalid invite token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Invite{}, fmt.Errorf("invalid invite claims")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return Invite{}, fmt.Errorf("invite issued by %q, want %q", claims["iss"], s.issuer)
	}

	invite := Invite{}
	invite.TokenID, _ = claims["jti"].(string)
	invite.MatchID, _ = claims["mid"].(string)
	invite.UserID, _ = claims["sub"].(string)
	invite.Role, _ = claims["role"].(string)
	if invite.MatchID == "" || invite.UserID == "" {
		return Invite{}, fmt.Errorf("invite claims missing match or user")
	}
	return invite, nil
}
