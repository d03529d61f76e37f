package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/agent-chat/internal"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{Endpoint: srv.URL + "/", AppName: "ce_agent"})
}

func TestClient_CreateSession(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.CreateSession(context.Background(), "u-1", "s-1"))
	assert.Equal(t, "/apps/ce_agent/users/u-1/sessions/s-1", gotPath)
	assert.Equal(t, map[string]any{"state": map[string]any{}}, gotBody)
}

func TestClient_CreateSessionBackendError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session exists", http.StatusConflict)
	})

	err := c.CreateSession(context.Background(), "u", "s")
	var backendErr *internal.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusConflict, backendErr.Status)
	assert.Equal(t, "session exists", backendErr.Body)
	assert.Equal(t, "create_session", backendErr.Op)
}

func TestClient_RunSendsHistoryAndExtractsReply(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/run", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `[
			{"author":"user","content":{"parts":[{"text":"Hello"}]}},
			{"author":"ce_agent","content":{"parts":[{"text":"Hi "}]}},
			{"author":"search_tool","content":{"parts":[{"text":"ignored"}]}},
			{"author":"ce_agent","content":null},
			{"author":"ce_agent","content":{"parts":[{"text":"there"},{"text":"not first"}]}}
		]`)
	})

	history := []internal.Message{internal.UserMessage("Hello")}
	reply, err := c.Run(context.Background(), RunRequest{
		UserID:     "u-1",
		SessionID:  "s-1",
		History:    history,
		NewMessage: "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)

	assert.Equal(t, "ce_agent", body["app_name"])
	assert.Equal(t, "u-1", body["user_id"])
	assert.Equal(t, "s-1", body["session_id"])
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "Hello"}}, body["history"])
	assert.Equal(t, map[string]any{
		"role":  "user",
		"parts": []any{map[string]any{"text": "Hello"}},
	}, body["new_message"])
}

func TestClient_RunEmptyHistoryIsArray(t *testing.T) {
	var body map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `[]`)
	})

	reply, err := c.Run(context.Background(), RunRequest{UserID: "u", SessionID: "s", NewMessage: "hi"})
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.JSONEq(t, `[]`, string(body["history"]))
}

func TestClient_RunFaults(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantClass string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantClass: "backend"},
		{name: "not found", status: http.StatusNotFound, body: "no such session", wantClass: "backend"},
		{name: "object instead of list", status: http.StatusOK, body: `{"error":"nope"}`, wantClass: "malformed"},
		{name: "invalid json", status: http.StatusOK, body: `[{"author":`, wantClass: "malformed"},
		{name: "empty body", status: http.StatusOK, body: ``, wantClass: "malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Run(context.Background(), RunRequest{UserID: "u", SessionID: "s", NewMessage: "hi"})
			require.Error(t, err)
			assert.Equal(t, tt.wantClass, internal.FaultClass(err))
		})
	}
}

func TestClient_RunTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c := NewClient(Options{Endpoint: endpoint, AppName: "ce_agent", Timeout: time.Second})
	_, err := c.Run(context.Background(), RunRequest{UserID: "u", SessionID: "s", NewMessage: "hi"})

	var transportErr *internal.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "run", transportErr.Op)
}

func TestClient_RunHonoursContext(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Run(ctx, RunRequest{UserID: "u", SessionID: "s", NewMessage: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_AuthorOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"author":"root_agent","content":{"parts":[{"text":"from root"}]}}]`)
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoint: srv.URL, AppName: "ce_agent", Author: "root_agent"})
	reply, err := c.Run(context.Background(), RunRequest{UserID: "u", SessionID: "s", NewMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from root", reply)
}

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   string
	}{
		{name: "no events", events: nil, want: ""},
		{name: "only other authors", events: []Event{{Author: "tool", Content: &Content{Parts: []Part{{Text: "x"}}}}}, want: ""},
		{name: "no parts", events: []Event{{Author: "a", Content: &Content{}}}, want: ""},
		{name: "concatenates in order", events: []Event{
			{Author: "a", Content: &Content{Parts: []Part{{Text: "one "}}}},
			{Author: "a", Content: &Content{Parts: []Part{{Text: "two"}}}},
		}, want: "one two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractReply(tt.events, "a"))
		})
	}
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list-apps", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	status, err := c.Ping(context.Background())
	require.NoError(t, err, "any HTTP answer means reachable")
	assert.Equal(t, http.StatusNotFound, status)
}
