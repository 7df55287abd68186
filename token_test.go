package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	tok := &oauth2.Token{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}

	if err := SaveToken(path, tok); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	loaded, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken failed: %v", err)
	}

	if loaded.AccessToken != tok.AccessToken {
		t.Errorf("access token = %q, want %q", loaded.AccessToken, tok.AccessToken)
	}
	if loaded.RefreshToken != tok.RefreshToken {
		t.Errorf("refresh token = %q, want %q", loaded.RefreshToken, tok.RefreshToken)
	}
	if loaded.TokenType != tok.TokenType {
		t.Errorf("token type = %q, want %q", loaded.TokenType, tok.TokenType)
	}
	if !loaded.Expiry.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", loaded.Expiry, expiry)
	}
	if !loaded.Valid() {
		t.Errorf("expected reloaded token to be valid")
	}
}

func TestSaveTokenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "token.json")

	if err := SaveToken(path, &oauth2.Token{AccessToken: "a"}); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 0600", perm)
	}
}

func TestLoadTokenMissingFile(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestLoadTokenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := LoadToken(path)
	if err == nil {
		t.Fatalf("expected an error for a corrupt token file")
	}
	if errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("corrupt file must not be reported as absent, got %v", err)
	}
}
