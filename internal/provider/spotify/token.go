// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTokenURL = "https://accounts.spotify.com/api/token"

// tokenExpirySlack renews the token slightly before the provider's deadline
// so in-flight requests never race the expiry.
const tokenExpirySlack = 30 * time.Second

// tokenSource caches a client-credentials access token until expiry.
//
// # Concurrency
//
// Token reads are frequent (every request); refreshes are rare. A single
// mutex around both is sufficient at catalog-ingestion call rates.
type tokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	client       *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenSource(clientID, clientSecret, tokenURL string) *tokenSource {
	return &tokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Token returns a valid access token, refreshing it if needed.
func (source *tokenSource) Token(context context.Context) (string, error) {
	source.mu.Lock()
	defer source.mu.Unlock()

	if source.token != "" && time.Now().Before(source.expiresAt) {
		return source.token, nil
	}

	return source.refreshLocked(context)
}

// refreshLocked performs the client-credentials exchange. Caller holds mu.
func (source *tokenSource) refreshLocked(context context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	request, err := http.NewRequestWithContext(context, http.MethodPost, source.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("spotify: token request: %w", err)
	}

	request.SetBasicAuth(source.clientID, source.clientSecret)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := source.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("spotify: token exchange: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, response.Body)
		return "", fmt.Errorf("spotify: token exchange failed with HTTP %d", response.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("spotify: token payload: %w", err)
	}

	source.token = payload.AccessToken
	source.expiresAt = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - tokenExpirySlack)

	return source.token, nil
}
