// Package agent talks to the remote conversational agent service: it
// creates remote sessions and runs turns against the /run endpoint.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iksnae/agent-chat/internal"
)

// DefaultTimeout bounds a single request to the agent service
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// Options configures a Client
type Options struct {
	Endpoint   string
	AppName    string
	Author     string // event author whose text forms the reply; defaults to AppName
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is an HTTP client for the agent service
type Client struct {
	base    string
	appName string
	author  string
	http    *http.Client
}

// NewClient creates a client from opts
func NewClient(opts Options) *Client {
	if opts.Author == "" {
		opts.Author = opts.AppName
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:    strings.TrimRight(opts.Endpoint, "/"),
		appName: opts.AppName,
		author:  opts.Author,
		http:    hc,
	}
}

// NewClientFromConfig creates a client from the agent section of cfg
func NewClientFromConfig(cfg *internal.Config) *Client {
	return NewClient(Options{
		Endpoint: cfg.Agent.Endpoint,
		AppName:  cfg.Agent.AppName,
		Author:   cfg.Agent.Author,
		Timeout:  cfg.Agent.Timeout,
	})
}

// Endpoint returns the base URL of the agent service
func (c *Client) Endpoint() string {
	return c.base
}

// AppName returns the agent application the client addresses
func (c *Client) AppName() string {
	return c.appName
}

// CreateSession registers userID/sessionID with the agent service
func (c *Client) CreateSession(ctx context.Context, userID, sessionID string) error {
	path := fmt.Sprintf("%s/apps/%s/users/%s/sessions/%s",
		c.base, url.PathEscape(c.appName), url.PathEscape(userID), url.PathEscape(sessionID))

	resp, err := c.post(ctx, "create_session", path, createSessionBody{State: map[string]any{}})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus("create_session", resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Run sends one turn and returns the agent's reply text. The reply is empty
// when the service answered with no text from the agent.
func (c *Client) Run(ctx context.Context, req RunRequest) (string, error) {
	history := req.History
	if history == nil {
		history = []internal.Message{}
	}
	body := runBody{
		AppName:   c.appName,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		History:   history,
		NewMessage: Content{
			Role:  string(internal.RoleUser),
			Parts: []Part{{Text: req.NewMessage}},
		},
	}

	internal.LogDebug("Running turn for session %s (%d history messages)", req.SessionID, len(history))
	resp, err := c.post(ctx, "run", c.base+"/run", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus("run", resp); err != nil {
		return "", err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &internal.TransportError{Op: "run", Err: err}
	}
	events, err := decodeEvents(raw)
	if err != nil {
		return "", err
	}
	return ExtractReply(events, c.author), nil
}

// Ping checks that the agent service answers HTTP at all. Any response
// counts as reachable; its status is returned for diagnostics.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/list-apps", nil)
	if err != nil {
		return 0, &internal.TransportError{Op: "ping", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &internal.TransportError{Op: "ping", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return resp.StatusCode, nil
}

func (c *Client) post(ctx context.Context, op, target string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(b))
	if err != nil {
		return nil, &internal.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &internal.TransportError{Op: op, Err: err}
	}
	return resp, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &internal.BackendError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// decodeEvents requires a JSON array; anything else is malformed
func decodeEvents(raw []byte) ([]Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected an event list", internal.ErrMalformedResponse)
	}
	var events []Event
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrMalformedResponse, err)
	}
	return events, nil
}
