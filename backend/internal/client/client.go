// Package client talks to the tracker HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/carbontracker/backend/internal/auth"
	"github.com/user/carbontracker/backend/internal/models"
)

// Market sources served by the API.
const (
	SourceExchange   = "exchange"
	SourceAggregator = "aggregator"
)

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Client is a tracker API client. Token, when set, is sent as a bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	Token   string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.Identity, error) {
	var resp struct {
		User models.Identity `json:"user"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login opens a session and stores its token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	var session auth.Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/session", body, &session); err != nil {
		return nil, err
	}
	c.Token = session.Token
	return &session, nil
}

// Session returns the identity of the current token, nil when signed out.
func (c *Client) Session(ctx context.Context) (*models.Identity, error) {
	var identity *models.Identity
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Market returns the snapshot of source.
func (c *Client) Market(ctx context.Context, source string) ([]models.Crypto, error) {
	var list []models.Crypto
	if err := c.do(ctx, http.MethodGet, "/api/market/"+url.PathEscape(source), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Portfolio returns the saved holdings of the signed in user.
func (c *Client) Portfolio(ctx context.Context) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := c.do(ctx, http.MethodGet, "/api/portfolio", nil, &holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

// SavePortfolio replaces the saved holdings with items.
func (c *Client) SavePortfolio(ctx context.Context, items []models.Holding) error {
	if items == nil {
		items = []models.Holding{}
	}
	return c.do(ctx, http.MethodPost, "/api/portfolio", map[string]interface{}{"items": items}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cannot %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &msg) == nil {
			apiErr.Message = msg.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
