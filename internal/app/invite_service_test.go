package app

import (
	"testing"
)

func TestInviteServiceRoundTrip(t *testing.T) {
	svc := NewInviteService("test-secret", "dominoes-server")

	tokenString, err := svc.GenerateToken("match-123", "user-1", InviteRoleOpponent)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	invite, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify token error: %v", err)
	}
	if invite.MatchID != "match-123" {
		t.Fatalf("match id = %s, want match-123", invite.MatchID)
	}
	if invite.UserID != "user-1" {
		t.Fatalf("user id = %s, want user-1", invite.UserID)
	}
	if invite.Role != InviteRoleOpponent {
		t.Fatalf("role = %s, want %s", invite.Role, InviteRoleOpponent)
	}
	if invite.TokenID == "" {
		t.Fatal("token id should be populated")
	}
}

func TestInviteServiceTokenIDsAreUnique(t *testing.T) {
	svc := NewInviteService("test-secret", "dominoes-server")

	first, err := svc.GenerateToken("match-123", "user-1", InviteRoleSpectator)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}
	second, err := svc.GenerateToken("match-123", "user-1", InviteRoleSpectator)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	a, _ := svc.Verify(first)
	b, _ := svc.Verify(second)
	if a.TokenID == b.TokenID {
		t.Fatalf("token ids should differ, both %s", a.TokenID)
	}
}

func TestInviteServiceRejectsWrongSecret(t *testing.T) {
	issuing := NewInviteService("secret-a", "dominoes-server")
	verifying := NewInviteService("secret-b", "dominoes-server")

	tokenString, err := issuing.GenerateToken("match-123", "user-1", InviteRoleOpponent)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}
	if _, err := verifying.Verify(tokenString); err == nil {
		t.Fatal("expected verification failure for wrong secret")
	}
}

func TestInviteServiceRejectsWrongIssuer(t *testing.T) {
	issuing := NewInviteService("secret", "other-server")
	verifying := NewInviteService("secret", "dominoes-server")

	tokenString, err := issuing.GenerateToken("match-123", "user-1", InviteRoleOpponent)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}
	if _, err := verifying.Verify(tokenString); err == nil {
		t.Fatal("expected verification failure for wrong issuer")
	}
}

func TestInviteServiceRejectsUnknownRole(t *testing.T) {
	svc := NewInviteService("secret", "dominoes-server")
	if _, err := svc.GenerateToken("match-123", "user-1", "referee"); err == nil {
		t.Fatal("expected error for unsupported role")
	}
}

func TestInviteServiceRequiresConfig(t *testing.T) {
	svc := NewInviteService("", "dominoes-server")
	if _, err := svc.GenerateToken("match-123", "user-1", InviteRoleOpponent); err == nil {
		t.Fatal("expected error for missing invite config")
	}
}
