// Package results persists one summary record per completed session to a
// uniquely named JSON file.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opetrenko/vivavoce/internal/model"
)

// Writer writes summary files into a results directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir. The directory is created on
// first use.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Persist writes the summary as an indented JSON file named by session ID
// and sanitized student email, so repeated runs never collide. The file
// path is returned; write failures are reported, never swallowed.
func (w *Writer) Persist(summary *model.Summary) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", summary.SessionID, sanitize(summary.StudentEmail))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

// sanitize maps every rune outside [A-Za-z0-9._-] to an underscore so the
// email is safe as a filename component.
func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
