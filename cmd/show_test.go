package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/testutil"
)

func TestDisplaySessionHeader(t *testing.T) {
	bound := internal.CreateTestSession("3f1c2a9e")
	local := internal.CreateTestSession("session-1700000000000")
	local.UserID = "user-1700000000000"

	tests := []struct {
		name    string
		session *internal.Session
		want    []string
		notWant []string
	}{
		{
			name:    "nil session",
			session: nil,
		},
		{
			name:    "bound session",
			session: bound,
			want:    []string{"Hello, how are you?", "Created:", "Messages: 2"},
			notWant: []string{"Not linked"},
		},
		{
			name:    "local session",
			session: local,
			want:    []string{"Not linked to the agent service"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			displaySessionHeader(&buf, tt.session)
			out := buf.String()
			if tt.session == nil && out != "" {
				t.Errorf("expected no output for nil session, got %q", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestDisplayMessage(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		msg     internal.Message
		total   int
		want    []string
		notWant []string
	}{
		{
			name:  "user message",
			index: 1,
			msg:   internal.UserMessage("Hello, world!"),
			total: 2,
			want:  []string{"You", "[1/2]", "Hello, world!"},
		},
		{
			name:  "assistant message",
			index: 2,
			msg:   internal.AssistantMessage("Hi there!"),
			total: 2,
			want:  []string{"Assistant", "[2/2]", "Hi there!"},
		},
		{
			name:  "empty message",
			index: 1,
			msg:   internal.UserMessage(""),
			total: 1,
			want:  []string{"(empty message)"},
		},
		{
			name:    "live reply has no counter",
			msg:     internal.AssistantMessage("..."),
			want:    []string{"..."},
			notWant: []string{"/0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			displayMessage(&buf, tt.index, tt.msg, tt.total)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{
			name:  "short text",
			text:  "Hello world",
			width: 80,
			want:  "Hello world",
		},
		{
			name:  "long text",
			text:  "This is a very long line of text",
			width: 15,
			want:  "This is a very\nlong line of\ntext",
		},
		{
			name:  "text with newlines",
			text:  "Line 1\nLine 2",
			width: 80,
			want:  "Line 1\nLine 2",
		},
		{
			name:  "empty text",
			text:  "",
			width: 80,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShowCommand(t *testing.T) {
	isolate(t)
	path := testutil.StoragePath(t)
	testutil.SeedSessions(t, path, internal.CreateTestSessionWithMessages("abc", []internal.Message{
		internal.UserMessage("first question"),
		internal.AssistantMessage("first answer"),
		internal.UserMessage("second question"),
		internal.AssistantMessage("second answer"),
	}))

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    []string
		notWant []string
	}{
		{
			name: "full transcript",
			args: []string{"show", "abc"},
			want: []string{"first question", "second answer", "[4/4]"},
		},
		{
			name:    "limited",
			args:    []string{"show", "abc", "-n", "2"},
			want:    []string{"first answer", "(2 more message(s))"},
			notWant: []string{"second question"},
		},
		{
			name:    "unknown session",
			args:    []string{"show", "missing"},
			wantErr: true,
		},
		{
			name:    "missing argument",
			args:    []string{"show"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", append([]string{"--storage", path}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("show error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}
