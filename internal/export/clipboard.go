package export

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/iksnae/agent-chat/internal"
)

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

// ClipboardText renders the short transcript placed on the clipboard
func ClipboardText(session *internal.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chat: %s\n", session.Title)
	fmt.Fprintf(&b, "Created: %s\n\n", formatTime(session.CreatedAt))

	for _, msg := range session.Messages {
		fmt.Fprintf(&b, "%s: %s\n\n", msg.Label(), msg.Content)
	}
	return b.String()
}

// CopyToClipboard places ClipboardText(session) on the system clipboard
func CopyToClipboard(session *internal.Session) error {
	if err := writeClipboard(ClipboardText(session)); err != nil {
		return &internal.ExportError{Format: "clipboard", Err: err}
	}
	return nil
}
