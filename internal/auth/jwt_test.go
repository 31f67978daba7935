package auth

import (
	"testing"
	"time"
)

func newTestSigner() *Signer {
	return &Signer{
		Issuer:     "schoolms-test",
		Key:        "test-signing-key",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestIssueAndParse(t *testing.T) {
	s := newTestSigner()
	pair, err := s.Issue("user-1", RoleTeacher)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty tokens")
	}
	if !pair.RefreshExp.After(pair.AccessExp) {
		t.Fatal("refresh should outlive access")
	}

	claims, err := s.Parse(pair.AccessToken)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != RoleTeacher {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	s := newTestSigner()
	pair, _ := s.Issue("user-1", RoleAdmin)

	other := newTestSigner()
	other.Key = "different-key"
	if _, err := other.Parse(pair.AccessToken); err == nil {
		t.Fatal("expected parse failure with wrong key")
	}
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	s := newTestSigner()
	pair, _ := s.Issue("user-1", RoleAdmin)

	other := newTestSigner()
	other.Issuer = "someone-else"
	if _, err := other.Parse(pair.AccessToken); err == nil {
		t.Fatal("expected parse failure with issuer mismatch")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	s := newTestSigner()
	s.AccessTTL = -time.Minute
	pair, err := s.Issue("user-1", RoleStudent)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := s.Parse(pair.AccessToken); err == nil {
		t.Fatal("expected parse failure for expired token")
	}
}
