package internal

import (
	"strings"
	"testing"
)

func TestGenerateTitle(t *testing.T) {
	long := strings.Repeat("a", 80)
	tests := []struct {
		name     string
		messages []Message
		want     string
	}{
		{
			name:     "no messages",
			messages: nil,
			want:     DefaultTitle,
		},
		{
			name:     "only assistant messages",
			messages: []Message{AssistantMessage("Welcome!")},
			want:     DefaultTitle,
		},
		{
			name:     "short first user message",
			messages: []Message{UserMessage("Hello"), AssistantMessage("Hi there")},
			want:     "Hello",
		},
		{
			name:     "uses first user message only",
			messages: []Message{AssistantMessage("Hi"), UserMessage("first"), UserMessage("second")},
			want:     "first",
		},
		{
			name:     "exactly fifty characters is not truncated",
			messages: []Message{UserMessage(strings.Repeat("b", 50))},
			want:     strings.Repeat("b", 50),
		},
		{
			name:     "eighty characters truncated to fifty plus ellipsis",
			messages: []Message{UserMessage(long)},
			want:     strings.Repeat("a", 50) + "...",
		},
		{
			name:     "multibyte content truncated by rune",
			messages: []Message{UserMessage(strings.Repeat("é", 60))},
			want:     strings.Repeat("é", 50) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateTitle(tt.messages)
			if got != tt.want {
				t.Errorf("GenerateTitle() = %q, want %q", got, tt.want)
			}
			if again := GenerateTitle(tt.messages); again != got {
				t.Errorf("GenerateTitle() not stable: %q then %q", got, again)
			}
		})
	}
}
