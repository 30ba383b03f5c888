package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrRejected is returned when the API answers with a domain failure
// (400 with success=false). Result.Errors carries the messages.
var ErrRejected = errors.New("identity request rejected")

// Client calls the identity endpoints of the notes API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type Result struct {
	Success      bool     `json:"success"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	Errors       []string `json:"errors"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*Result, error) {
	return c.post(ctx, "/api/v1/identity/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func (c *Client) Login(ctx context.Context, email, password string) (*Result, error) {
	return c.post(ctx, "/api/v1/identity/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// RefreshTokens exchanges an expired access token and its refresh token for a new pair.
func (c *Client) RefreshTokens(ctx context.Context, accessToken, refreshToken string) (*Result, error) {
	return c.post(ctx, "/api/v1/identity/refreshToken", map[string]string{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

func (c *Client) post(ctx context.Context, path string, body any) (*Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, fmt.Errorf("%s failed with status: %d", path, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !result.Success {
		return &result, ErrRejected
	}
	return &result, nil
}
