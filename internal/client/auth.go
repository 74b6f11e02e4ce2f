package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// Auth holds the credentials and the current session token. The token is a
// single mutex-guarded cell: replaced wholesale on every login, never merged.
type Auth struct {
	loginURL   string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.Mutex
	token string
}

// NewAuth creates an authenticator for the given login endpoint.
func NewAuth(loginURL, username, password string, httpClient *http.Client, logger *slog.Logger) *Auth {
	return &Auth{
		loginURL:   loginURL,
		username:   username,
		password:   password,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Token returns the current session token, or "" before the first login.
func (a *Auth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// Login exchanges the configured credentials for a fresh session token and
// stores it as the current session state.
func (a *Auth) Login(ctx context.Context) error {
	a.logger.Debug("logging in", "username", a.username)

	payload, err := json.Marshal(map[string]string{
		"username": a.username,
		"password": a.password,
	})
	if err != nil {
		return &AuthError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL, bytes.NewReader(payload))
	if err != nil {
		return &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Err: fmt.Errorf("login returned HTTP %d", resp.StatusCode)}
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return &AuthError{Err: fmt.Errorf("decode login response: %w", err)}
	}
	if body.Token == "" {
		return &AuthError{Err: fmt.Errorf("login response contained no token")}
	}

	a.mu.Lock()
	a.token = body.Token
	a.mu.Unlock()
	return nil
}
