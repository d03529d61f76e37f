package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/iksnae/agent-chat/internal"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slugify lowercases title and replaces each whitespace run with "-".
// Path separators are replaced too so the result is a single file name.
func Slugify(title string) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
	return strings.NewReplacer("/", "-", `\`, "-").Replace(slug)
}

// Filename returns chat-<slug>-<YYYY-MM-DD>.<ext> for an export made at now
func Filename(session *internal.Session, ext string, now time.Time) string {
	return fmt.Sprintf("chat-%s-%s.%s", Slugify(session.Title), now.UTC().Format("2006-01-02"), ext)
}

// WriteFile exports session into dir using exporter and returns the file path
func WriteFile(session *internal.Session, exporter Exporter, dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, Filename(session, exporter.Extension(), now))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: dir, Err: err}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return path, nil
}
