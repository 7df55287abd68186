// ABOUTME: OAuth2 credential management for blogpush.
// ABOUTME: Loads, refreshes, or interactively obtains a token and builds the authenticated API client.

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// bloggerScope grants posting permission on the Blogger platform.
const bloggerScope = "https://www.googleapis.com/auth/blogger"

var ErrMissingCredentialsFile = errors.New("credentials file not found")

// AuthorizationProvider obtains a fresh token through user consent. The
// default implementation opens a local callback listener and blocks until
// the user completes the flow in a browser.
type AuthorizationProvider interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

type Authenticator struct {
	cfg      *Config
	provider AuthorizationProvider
	logger   *logrus.Logger
	apiBase  string
}

func NewAuthenticator(cfg *Config, provider AuthorizationProvider, logger *logrus.Logger) *Authenticator {
	return &Authenticator{cfg: cfg, provider: provider, logger: logger}
}

// Authenticate produces a client for the configured blog. It reuses the
// persisted token while valid, refreshes it when expired, and falls back to
// the interactive authorization flow when neither works. Whatever token
// comes out the other end is persisted for the next run.
func (a *Authenticator) Authenticate(ctx context.Context) (*BloggerClient, error) {
	tok, err := LoadToken(a.cfg.TokenFile)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		a.logger.WithError(err).Warn("Could not load persisted token, starting fresh")
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return a.buildClient(ctx, nil, tok), nil
	}

	oauthCfg, cfgErr := a.loadOAuthConfig()

	if tok != nil && tok.RefreshToken != "" && cfgErr == nil {
		refreshed, err := oauthCfg.TokenSource(ctx, tok).Token()
		if err != nil {
			a.logger.WithError(err).Warn("Token refresh failed, re-running authorization")
		} else {
			a.persist(refreshed)
			return a.buildClient(ctx, oauthCfg, refreshed), nil
		}
	}

	if cfgErr != nil {
		return nil, cfgErr
	}

	tok, err = a.provider.Authorize(ctx, oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("authorization flow: %w", err)
	}

	a.persist(tok)
	return a.buildClient(ctx, oauthCfg, tok), nil
}

func (a *Authenticator) loadOAuthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(a.cfg.CredentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingCredentialsFile, a.cfg.CredentialsFile)
		}
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(data, bloggerScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", a.cfg.CredentialsFile, err)
	}
	return oauthCfg, nil
}

// A persist failure is not fatal: the token in hand still covers this run.
func (a *Authenticator) persist(tok *oauth2.Token) {
	if err := SaveToken(a.cfg.TokenFile, tok); err != nil {
		a.logger.WithError(err).Warn("Could not persist token")
		return
	}
	a.logger.WithField("path", a.cfg.TokenFile).Debug("Persisted token")
}

func (a *Authenticator) buildClient(ctx context.Context, oauthCfg *oauth2.Config, tok *oauth2.Token) *BloggerClient {
	var httpClient *http.Client
	if oauthCfg != nil {
		httpClient = oauthCfg.Client(ctx, tok)
	} else {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	}
	httpClient.Timeout = 30 * time.Second

	a.logger.WithField("blog_id", a.cfg.BlogID).Info("Authenticated with the Blogger API")
	return NewBloggerClient(a.apiBase, a.cfg.BlogID, httpClient)
}

// localServerProvider drives the installed-app authorization-code flow with
// a throwaway callback listener on a loopback port.
type localServerProvider struct {
	logger *logrus.Logger
}

func NewLocalServerProvider(logger *logrus.Logger) AuthorizationProvider {
	return &localServerProvider{logger: logger}
}

func (p *localServerProvider) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}
	defer ln.Close()

	flowCfg := *cfg
	flowCfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callback{err: errors.New("authorization state mismatch")}
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "authorization failed", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("authorization denied: %s", errMsg)}
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		results <- callback{code: q.Get("code")}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	p.logger.Infof("Open the following URL in your browser to authorize:\n\n  %s\n", flowCfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return flowCfg.Exchange(ctx, res.code)
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
