package exam

import (
	"fmt"
	"strings"

	"github.com/opetrenko/vivavoce/internal/transcript"
)

// Event is a proposed state transition decoded from a reasoning-service
// tool invocation. The manager validates and applies events; the service
// never mutates session state directly.
type Event interface {
	event()
}

// StartEvent requests activation of a new session.
type StartEvent struct {
	Email string
	Name  string
}

// NextEvent requests the next question of the active session.
type NextEvent struct{}

// EndEvent requests completion with a final score and the raw history to
// normalize into the durable record.
type EndEvent struct {
	Email   string
	Score   float64
	History transcript.History
}

func (StartEvent) event() {}
func (NextEvent) event()  {}
func (EndEvent) event()   {}

// Apply validates an event against the current state and executes the
// corresponding operation, returning a textual result suitable for a
// tool-result turn. Rejections come back as errors; the exhausted-questions
// sentinel and a completed-but-unsaved exam are reported in the result text
// because neither should read as a protocol failure to the service.
func (m *Manager) Apply(ev Event) (string, error) {
	switch e := ev.(type) {
	case StartEvent:
		questions, err := m.Activate(e.Email, e.Name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Examination started for %s (%s). Selected %d questions: %s",
			e.Name, e.Email, len(questions), strings.Join(questions, "; ")), nil

	case NextEvent:
		q, ok := m.NextQuestion()
		if !ok {
			return "No more questions. All questions for this session have been asked.", nil
		}
		return q, nil

	case EndEvent:
		summary, err := m.Complete(e.Email, e.Score, e.History)
		if err != nil {
			if summary == nil {
				return "", err
			}
			return fmt.Sprintf("Examination completed for %s with final score %.1f/10, but saving the results failed: %v",
				summary.StudentName, summary.Score, err), nil
		}
		return fmt.Sprintf("Examination completed for %s. Final score: %.1f/10. Results recorded.",
			summary.StudentName, summary.Score), nil

	default:
		return "", fmt.Errorf("unsupported event type %T", ev)
	}
}
