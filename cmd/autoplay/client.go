package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/acrohunt/game/engine"
	"github.com/wricardo/acrohunt/game/service"
)

// Client talks to the REST API on behalf of one session.
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays, empty before CreateSession.
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// CreateSession creates a session with configID (empty for the default preset)
// and plays it from now on.
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	req := map[string]string{}
	if configID != "" {
		req["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return &info, nil
}

// Resume plays an existing session.
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	c.sessionID = sessionID
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath(""), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

type lifecycleResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

func (c *Client) Start(ctx context.Context) (*engine.GameState, error) {
	var resp lifecycleResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/start"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

func (c *Client) Restart(ctx context.Context) (*engine.GameState, error) {
	var resp lifecycleResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/restart"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

func (c *Client) State(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Hints lists abbreviations spellable on the current grid.
func (c *Client) Hints(ctx context.Context, maxLen int) ([]engine.Found, error) {
	path := c.sessionPath("/hints")
	if maxLen > 0 {
		path += fmt.Sprintf("?max_len=%d", maxLen)
	}

	var resp struct {
		Words []engine.Found `json:"words"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Words, nil
}

// Spell selects path and submits it in one request.
func (c *Client) Spell(ctx context.Context, path []engine.Coord) (*service.PathResult, error) {
	req := map[string]interface{}{
		"cells":  path,
		"submit": true,
	}
	var result service.PathResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/select-path"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Clear drops whatever is selected.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.sessionPath("/clear"), nil, nil)
}
