package export

import (
	"io"
	"strings"

	"github.com/iksnae/agent-chat/internal"
)

// TextExporter exports sessions as a plain-text transcript
type TextExporter struct{}

// Export exports a session to plain text
func (e *TextExporter) Export(session *internal.Session, w io.Writer) error {
	bw := &errWriter{w: w}

	bw.printf("Chat: %s\n", session.Title)
	bw.printf("Created: %s\n", formatTime(session.CreatedAt))
	bw.printf("Updated: %s\n", formatTime(session.UpdatedAt))
	bw.printf("%s\n\n", strings.Repeat("=", 50))

	for _, msg := range session.Messages {
		bw.printf("[%s]: %s\n\n", msg.Label(), msg.Content)
	}

	return bw.err
}

// Extension returns the file extension for this format
func (e *TextExporter) Extension() string {
	return "txt"
}
