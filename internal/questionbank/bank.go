package questionbank

import (
	"bufio"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
)

// fallbackQuestions is served when the themes file cannot be read, so an
// exam can always be assembled.
var fallbackQuestions = []string{
	"Sample theme 1",
	"Sample theme 2",
	"Sample theme 3",
}

// Bank holds the pool of examination themes.
type Bank struct {
	questions []string
}

// Load reads one theme per non-empty line from path. A missing or empty
// file is not fatal: the bank falls back to a fixed placeholder set.
func Load(path string) *Bank {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("themes file unavailable, using fallback set", "path", path, "error", err)
		return &Bank{questions: append([]string(nil), fallbackQuestions...)}
	}
	defer f.Close()

	var questions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			questions = append(questions, line)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("reading themes file failed, using fallback set", "path", path, "error", err)
		return &Bank{questions: append([]string(nil), fallbackQuestions...)}
	}
	if len(questions) == 0 {
		slog.Warn("themes file has no questions, using fallback set", "path", path)
		return &Bank{questions: append([]string(nil), fallbackQuestions...)}
	}

	slog.Info("loaded examination themes", "path", path, "count", len(questions))
	return &Bank{questions: questions}
}

// Size returns the number of themes in the pool.
func (b *Bank) Size() int {
	return len(b.questions)
}

// Sample returns n distinct themes drawn uniformly at random without
// replacement. Requests larger than the pool are clamped to the pool size;
// n <= 0 yields an empty result.
func (b *Bank) Sample(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(b.questions) {
		n = len(b.questions)
	}
	shuffled := append([]string(nil), b.questions...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
