package instance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"snake-arena/handlers"
)

// TokenURL derives the relay's token endpoint from its WebSocket url.
func TokenURL(relayURL string) (string, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/ws") + "/token"
	u.RawQuery = ""
	return u.String(), nil
}

// FetchToken asks the relay for an identity.
func FetchToken(ctx context.Context, relayURL string, req handlers.TokenRequest) (handlers.TokenResponse, error) {
	endpoint, err := TokenURL(relayURL)
	if err != nil {
		return handlers.TokenResponse{}, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return handlers.TokenResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return handlers.TokenResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return handlers.TokenResponse{}, fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return handlers.TokenResponse{}, fmt.Errorf("request token: status %d", resp.StatusCode)
	}

	var tok handlers.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return handlers.TokenResponse{}, fmt.Errorf("decode token: %w", err)
	}
	return tok, nil
}
