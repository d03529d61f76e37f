package internal

import (
	"time"
)

// testTime is a fixed instant so transcripts and file names are reproducible
var testTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// CreateTestSession creates a bound test session with one full turn
func CreateTestSession(id string) *Session {
	return &Session{
		ID:     id,
		UserID: "user-" + id,
		Title:  "Hello, how are you?",
		Messages: []Message{
			UserMessage("Hello, how are you?"),
			AssistantMessage("I'm doing well, thank you!"),
		},
		CreatedAt: testTime,
		UpdatedAt: testTime.Add(time.Minute),
	}
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) *Session {
	return &Session{
		ID:        id,
		UserID:    "user-" + id,
		Title:     GenerateTitle(messages),
		Messages:  messages,
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
}

// TestTime returns the fixed instant used by the test fixtures
func TestTime() time.Time {
	return testTime
}
