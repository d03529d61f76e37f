package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/agent-chat/internal"
)

// TimestampLayout is used wherever a transcript shows a time
const TimestampLayout = "2006-01-02 15:04:05"

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(session *internal.Session, w io.Writer) error
	Extension() string
}

// Formats lists the accepted format names
var Formats = []string{"json", "md", "txt", "yaml", "jsonl"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "txt", "text":
		return &TextExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

func formatTime(t time.Time) string {
	return t.Format(TimestampLayout)
}
