package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RunCall is one /run request seen by a FakeAgent
type RunCall struct {
	UserID     string
	SessionID  string
	History    []map[string]any
	NewMessage string
}

// FakeAgent is an httptest stand-in for the agent service. It answers
// session creation, /run and /list-apps, and records what it was sent.
type FakeAgent struct {
	*httptest.Server

	mu       sync.Mutex
	reply    string
	runCode  int
	sessCode int
	sessions []string
	runs     []RunCall
}

// NewFakeAgent starts a fake agent whose /run replies with reply
func NewFakeAgent(t *testing.T, appName, reply string) *FakeAgent {
	t.Helper()
	f := &FakeAgent{reply: reply, runCode: http.StatusOK, sessCode: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/apps/"+appName+"/users/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		code := f.sessCode
		if code == http.StatusOK {
			f.sessions = append(f.sessions, strings.TrimPrefix(r.URL.Path, "/apps/"+appName+"/users/"))
		}
		f.mu.Unlock()
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID     string           `json:"user_id"`
			SessionID  string           `json:"session_id"`
			History    []map[string]any `json:"history"`
			NewMessage struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"new_message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		call := RunCall{UserID: body.UserID, SessionID: body.SessionID, History: body.History}
		if len(body.NewMessage.Parts) > 0 {
			call.NewMessage = body.NewMessage.Parts[0].Text
		}

		f.mu.Lock()
		f.runs = append(f.runs, call)
		code, reply := f.runCode, f.reply
		f.mu.Unlock()

		if code != http.StatusOK {
			http.Error(w, "agent failure", code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"author":  appName,
			"content": map[string]any{"role": "model", "parts": []map[string]string{{"text": reply}}},
		}})
	})
	mux.HandleFunc("/list-apps", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{appName})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// FailRuns makes /run answer with status code
func (f *FakeAgent) FailRuns(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runCode = code
}

// FailSessions makes session creation answer with status code
func (f *FakeAgent) FailSessions(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessCode = code
}

// Sessions returns the "<user>/sessions/<session>" paths created so far
func (f *FakeAgent) Sessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sessions...)
}

// Runs returns the /run calls received so far
func (f *FakeAgent) Runs() []RunCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RunCall(nil), f.runs...)
}
