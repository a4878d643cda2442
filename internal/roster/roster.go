package roster

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Roster is the list of students registered for the exam.
type Roster struct {
	names map[string]struct{}
}

// Load reads one registered student name per non-empty line. A missing or
// unreadable roster is a configuration error: without it no registration
// check is possible, so the caller is expected to abort startup.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()

	names := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			names[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}

	slog.Info("loaded student roster", "path", path, "count", len(names))
	return &Roster{names: names}, nil
}

// IsRegistered reports whether name appears on the roster. Side-effect-free.
func (r *Roster) IsRegistered(name string) bool {
	_, ok := r.names[strings.TrimSpace(name)]
	return ok
}

// Size returns the number of registered students.
func (r *Roster) Size() int {
	return len(r.names)
}
