package export

import (
	"fmt"
	"io"

	"github.com/iksnae/agent-chat/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format. Message content is written
// verbatim so code blocks and formatting from the agent survive.
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	bw := &errWriter{w: w}

	bw.printf("# %s\n\n", session.Title)
	bw.printf("**Created:** %s\n", formatTime(session.CreatedAt))
	bw.printf("**Updated:** %s\n\n", formatTime(session.UpdatedAt))
	bw.printf("---\n\n")

	for _, msg := range session.Messages {
		bw.printf("### **%s**\n\n", msg.Label())
		bw.printf("%s\n\n", msg.Content)
		bw.printf("---\n\n")
	}

	return bw.err
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

// errWriter keeps the first write error so renderers can check once
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
