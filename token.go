// ABOUTME: Persistence for OAuth2 tokens.
// ABOUTME: Stores the access/refresh token bundle as JSON so it survives between runs.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var ErrTokenNotFound = errors.New("no persisted token")

// LoadToken reads a previously saved token. An absent file is reported as
// ErrTokenNotFound; a file that exists but does not parse is a distinct
// error, so the caller can log it before discarding the token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken overwrites the token file, creating parent directories as
// needed. The file holds credentials, so it is kept user-readable only.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
