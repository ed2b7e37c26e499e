package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"
)

func newHS256Manager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("test-secret-key-at-least-32-bytes!"),
		Issuer:        "kiosk-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero ttl", Config{SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"refresh not exceeding access", Config{AccessTTL: time.Hour, RefreshTTL: time.Hour, SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"hs256 without key", Config{AccessTTL: time.Hour, RefreshTTL: 2 * time.Hour, SigningMethod: MethodHS256}},
		{"unsupported method", Config{AccessTTL: time.Hour, RefreshTTL: 2 * time.Hour, SigningMethod: "rs512", PrivateKey: []byte("k")}},
		{"excessive leeway", Config{AccessTTL: time.Hour, RefreshTTL: 2 * time.Hour, SigningMethod: MethodHS256, PrivateKey: []byte("k"), Leeway: 5 * time.Minute}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newHS256Manager(t)

	token, err := m.CreateAccess("a1", "9876543210", "", "CON-9", "citizen")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.UID != "a1" || claims.Mobile != "9876543210" || claims.ConsumerID != "CON-9" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Role != "citizen" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := newHS256Manager(t)

	token, err := m.CreateRefresh("a1")
	if err != nil {
		t.Fatalf("CreateRefresh failed: %v", err)
	}

	claims, err := m.ParseRefresh(token)
	if err != nil {
		t.Fatalf("ParseRefresh failed: %v", err)
	}
	if claims.UID != "a1" {
		t.Fatalf("unexpected uid %q", claims.UID)
	}
}

func TestTokenUseDiscriminator(t *testing.T) {
	m := newHS256Manager(t)

	access, err := m.CreateAccess("a1", "", "", "", "citizen")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}
	refresh, err := m.CreateRefresh("a1")
	if err != nil {
		t.Fatalf("CreateRefresh failed: %v", err)
	}

	if _, err := m.ParseAccess(refresh); err == nil {
		t.Fatal("refresh token must not parse as access token")
	}
	if _, err := m.ParseRefresh(access); err == nil {
		t.Fatal("access token must not parse as refresh token")
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	m := newHS256Manager(t)

	other, err := NewManager(Config{
		AccessTTL:     time.Hour,
		RefreshTTL:    2 * time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("another-secret-key-32-bytes-long!!"),
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := m.CreateAccess("a1", "", "", "", "citizen")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	if _, err := other.ParseAccess(token); err == nil {
		t.Fatal("expected signature verification failure")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	issuing, err := NewManager(Config{
		AccessTTL:     time.Hour,
		RefreshTTL:    2 * time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("test-secret-key-at-least-32-bytes!"),
		Issuer:        "someone-else",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := issuing.CreateAccess("a1", "", "", "", "citizen")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	m := newHS256Manager(t)
	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expected issuer mismatch failure")
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	m, err := NewManager(Config{
		AccessTTL:     time.Hour,
		RefreshTTL:    2 * time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := m.CreateAccess("a1", "9876543210", "", "", "operator")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.UID != "a1" || claims.Role != "operator" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m, err := NewManager(Config{
		AccessTTL:     time.Nanosecond,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("test-secret-key-at-least-32-bytes!"),
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := m.CreateAccess("a1", "", "", "", "citizen")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
