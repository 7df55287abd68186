// ABOUTME: Configuration management for blogpush.
// ABOUTME: Resolves credentials file, token file, and blog ID from flags, environment, and the config file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	envCredentialsFile = "BLOGGER_CREDENTIALS_FILE"
	envTokenFile       = "BLOGGER_TOKEN_FILE"
	envBlogID          = "BLOGGER_BLOG_ID"
)

var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	BlogID          string `yaml:"blog_id"`
}

// Overrides carries explicit values that take precedence over the
// environment and the config file.
type Overrides struct {
	CredentialsFile string
	TokenFile       string
	BlogID          string
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "blogpush"), nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func defaultTokenPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token.json"), nil
}

// LoadConfig resolves configuration in precedence order: explicit overrides,
// then environment variables, then the config file. The config file is
// optional; only the credentials file and blog ID are required, and the
// token file falls back to a path under ~/.config/blogpush.
func LoadConfig(ov Overrides) (*Config, error) {
	cfg := &Config{}

	if path, err := configPath(); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(envCredentialsFile); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv(envTokenFile); v != "" {
		cfg.TokenFile = v
	}
	if v := os.Getenv(envBlogID); v != "" {
		cfg.BlogID = v
	}

	if ov.CredentialsFile != "" {
		cfg.CredentialsFile = ov.CredentialsFile
	}
	if ov.TokenFile != "" {
		cfg.TokenFile = ov.TokenFile
	}
	if ov.BlogID != "" {
		cfg.BlogID = ov.BlogID
	}

	var missing []string
	if cfg.CredentialsFile == "" {
		missing = append(missing, envCredentialsFile)
	}
	if cfg.BlogID == "" {
		missing = append(missing, envBlogID)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: set %s", ErrMissingConfig, strings.Join(missing, " and "))
	}

	if cfg.TokenFile == "" {
		path, err := defaultTokenPath()
		if err != nil {
			return nil, err
		}
		cfg.TokenFile = path
	}

	return cfg, nil
}
