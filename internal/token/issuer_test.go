package token

import (
	"errors"
	"testing"
	"time"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

func newTestIssuer(t *testing.T, now func() time.Time) *Issuer {
	t.Helper()
	sec, err := NewSecurityContext("test-secret", "HS256")
	if err != nil {
		t.Fatalf("NewSecurityContext: %v", err)
	}
	if now != nil {
		sec.Now = now
	}
	return NewIssuer(sec, 30*time.Minute, 10*time.Minute)
}

func TestSessionRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, nil)

	tok, err := issuer.IssueSession(42, "alice@example.com")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	sess, err := issuer.VerifySession(tok)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if sess.UserID != 42 {
		t.Errorf("user id = %d, want 42", sess.UserID)
	}
	if sess.Login != "alice@example.com" {
		t.Errorf("login = %q, want alice@example.com", sess.Login)
	}
}

func TestVerifySessionRejectsGarbage(t *testing.T) {
	issuer := newTestIssuer(t, nil)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.VerifySession(tok); !errors.Is(err, domain.ErrInvalidCredential) {
			t.Errorf("VerifySession(%q) = %v, want ErrInvalidCredential", tok, err)
		}
	}
}

func TestVerifySessionRejectsWrongSecret(t *testing.T) {
	issuer := newTestIssuer(t, nil)
	other, err := NewSecurityContext("another-secret", "HS256")
	if err != nil {
		t.Fatalf("NewSecurityContext: %v", err)
	}
	forger := NewIssuer(other, 30*time.Minute, 10*time.Minute)

	tok, err := forger.IssueSession(42, "alice@example.com")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if _, err := issuer.VerifySession(tok); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Errorf("VerifySession = %v, want ErrInvalidCredential", err)
	}
}

func TestVerifySessionRejectsExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := newTestIssuer(t, func() time.Time { return past })

	tok, err := issuer.IssueSession(42, "alice@example.com")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	verifier := newTestIssuer(t, nil)
	if _, err := verifier.VerifySession(tok); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Errorf("VerifySession = %v, want ErrInvalidCredential", err)
	}
}

func TestVerifyExpiresAgainstInjectedClock(t *testing.T) {
	issuer := newTestIssuer(t, nil)

	session, err := issuer.IssueSession(42, "alice@example.com")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	invite, err := issuer.IssueInvite(7, 42)
	if err != nil {
		t.Fatalf("IssueInvite: %v", err)
	}

	// The verifier's clock, not the wall clock, decides expiry.
	future := time.Now().Add(2 * time.Hour)
	verifier := newTestIssuer(t, func() time.Time { return future })
	if _, err := verifier.VerifySession(session); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Errorf("VerifySession = %v, want ErrInvalidCredential", err)
	}
	if _, err := verifier.VerifyInvite(invite); !errors.Is(err, domain.ErrExpiredToken) {
		t.Errorf("VerifyInvite = %v, want ErrExpiredToken", err)
	}
}

func TestInviteRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, nil)

	tok, err := issuer.IssueInvite(7, 42)
	if err != nil {
		t.Fatalf("IssueInvite: %v", err)
	}
	inv, err := issuer.VerifyInvite(tok)
	if err != nil {
		t.Fatalf("VerifyInvite: %v", err)
	}
	if inv.ProjectID != 7 || inv.UserID != 42 {
		t.Errorf("invite = %+v, want project 7 user 42", inv)
	}
}

func TestVerifyInviteDistinguishesExpiredFromMalformed(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	backdated := newTestIssuer(t, func() time.Time { return past })

	expired, err := backdated.IssueInvite(7, 42)
	if err != nil {
		t.Fatalf("IssueInvite: %v", err)
	}
	issuer := newTestIssuer(t, nil)
	if _, err := issuer.VerifyInvite(expired); !errors.Is(err, domain.ErrExpiredToken) {
		t.Errorf("VerifyInvite(expired) = %v, want ErrExpiredToken", err)
	}
	if _, err := issuer.VerifyInvite("not-a-token"); !errors.Is(err, domain.ErrMalformedToken) {
		t.Errorf("VerifyInvite(garbage) = %v, want ErrMalformedToken", err)
	}
}

func TestVerifyInviteRejectsSessionToken(t *testing.T) {
	issuer := newTestIssuer(t, nil)

	// A session token parses but carries no project claim.
	tok, err := issuer.IssueSession(42, "alice@example.com")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if _, err := issuer.VerifyInvite(tok); !errors.Is(err, domain.ErrMalformedToken) {
		t.Errorf("VerifyInvite(session token) = %v, want ErrMalformedToken", err)
	}
}

func TestNewSecurityContextRejectsAsymmetric(t *testing.T) {
	if _, err := NewSecurityContext("secret", "RS256"); err == nil {
		t.Fatal("NewSecurityContext accepted RS256 with a shared secret")
	}
	if _, err := NewSecurityContext("secret", "bogus"); err == nil {
		t.Fatal("NewSecurityContext accepted an unknown algorithm")
	}
}
