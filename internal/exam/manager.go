package exam

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opetrenko/vivavoce/internal/model"
	"github.com/opetrenko/vivavoce/internal/questionbank"
	"github.com/opetrenko/vivavoce/internal/roster"
	"github.com/opetrenko/vivavoce/internal/transcript"
)

const (
	// DefaultNumQuestions is the canonical session size.
	DefaultNumQuestions = 3
	// MaxScore is the upper bound of the canonical scoring scale.
	MaxScore = 10.0
)

// Persister writes a completed session summary to durable storage and
// returns the location it was written to.
type Persister interface {
	Persist(summary *model.Summary) (string, error)
}

// Archiver keeps a secondary queryable record of summaries. Archive
// failures are logged, never fatal.
type Archiver interface {
	SaveSummary(summary *model.Summary) error
}

// Manager owns a single examination session and enforces its lifecycle:
// Idle -> Active -> Completed, with Reset returning to Idle. All mutation
// goes through the manager under one mutex; the reasoning service only
// proposes events (see Apply), it never touches session state directly.
type Manager struct {
	bank         *questionbank.Bank
	roster       *roster.Roster
	persister    Persister
	archive      Archiver
	numQuestions int

	mu          sync.Mutex
	session     model.Session
	lastSummary *model.Summary
}

// NewManager creates a manager in the Idle state.
func NewManager(bank *questionbank.Bank, reg *roster.Roster, persister Persister, numQuestions int) *Manager {
	if numQuestions <= 0 {
		numQuestions = DefaultNumQuestions
	}
	return &Manager{
		bank:         bank,
		roster:       reg,
		persister:    persister,
		numQuestions: numQuestions,
		session:      model.Session{Status: model.StatusIdle},
	}
}

// WithArchive attaches a secondary summary archive.
func (m *Manager) WithArchive(a Archiver) *Manager {
	m.archive = a
	return m
}

// Activate starts a new session for a registered student. It is the only
// Idle -> Active edge: a second call while a session is active is rejected
// without altering the existing session, and a roster failure leaves the
// state untouched.
func (m *Manager) Activate(email, name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.session.Status {
	case model.StatusActive:
		return nil, ErrSessionActive
	case model.StatusCompleted:
		return nil, ErrSessionClosed
	}
	if !m.roster.IsRegistered(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnregistered, name)
	}

	questions := m.bank.Sample(m.numQuestions)
	m.session = model.Session{
		ID:           uuid.NewString(),
		StudentName:  name,
		StudentEmail: email,
		Status:       model.StatusActive,
		Questions:    questions,
		StartedAt:    time.Now(),
	}
	m.lastSummary = nil

	slog.Info("examination started",
		"session_id", m.session.ID,
		"student", name,
		"email", email,
		"questions", len(questions),
	)
	return append([]string(nil), questions...), nil
}

// NextQuestion returns the question at the cursor and advances it. The
// second return value is false when the set is exhausted or no session is
// active; exhaustion is a sentinel for the caller to move toward
// completion, not an error.
func (m *Manager) NextQuestion() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Status != model.StatusActive || m.session.Cursor >= len(m.session.Questions) {
		return "", false
	}
	q := m.session.Questions[m.session.Cursor]
	m.session.Cursor++
	return q, true
}

// Complete finishes the active session: it clamps the score into [0, 10],
// normalizes the raw history (falling back to the session's own transcript
// when none is supplied), persists the summary, and transitions to
// Completed. A persistence failure is returned to the caller but never
// rolls the completion back.
func (m *Manager) Complete(email string, score float64, raw transcript.History) (*model.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Status != model.StatusActive {
		return nil, ErrNoActiveSession
	}
	if email != m.session.StudentEmail {
		slog.Warn("completion rejected",
			"session_id", m.session.ID,
			"claimed_email", email,
		)
		return nil, ErrEmailMismatch
	}

	score = clampScore(score)
	now := time.Now()

	if len(raw) == 0 {
		raw = transcript.FromTurns(m.session.Transcript)
	}
	history := transcript.Normalize(raw, now)

	summary := &model.Summary{
		SessionID:           m.session.ID,
		StudentName:         m.session.StudentName,
		StudentEmail:        m.session.StudentEmail,
		Score:               score,
		Timestamp:           now,
		ConversationHistory: history,
	}

	// The scoring decision is made before persistence: from here on the
	// session is completed regardless of write outcomes.
	m.session = model.Session{Status: model.StatusCompleted}
	m.lastSummary = summary

	path, err := m.persister.Persist(summary)
	m.archiveSummary(summary)
	if err != nil {
		slog.Error("failed to persist exam results",
			"session_id", summary.SessionID,
			"error", err,
		)
		return summary, fmt.Errorf("persist summary: %w", err)
	}

	slog.Info("examination completed",
		"session_id", summary.SessionID,
		"student", summary.StudentName,
		"score", summary.Score,
		"path", path,
	)
	return summary, nil
}

// Reset forces the manager back to Idle and clears all fields, whatever
// the prior state. Used for a retake.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.ID != "" {
		slog.Info("examination state reset", "session_id", m.session.ID)
	}
	m.session = model.Session{Status: model.StatusIdle}
	m.lastSummary = nil
}

// RecordTurn appends a turn to the active session's transcript. Calls
// outside the Active state are no-ops.
func (m *Manager) RecordTurn(turn model.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Status != model.StatusActive {
		return
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	m.session.Transcript = append(m.session.Transcript, turn)
}

// NoteAnswer counts one received answer while the session is active.
func (m *Manager) NoteAnswer() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Status == model.StatusActive {
		m.session.AnswersReceived++
	}
}

// Status returns the current lifecycle state.
func (m *Manager) Status() model.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Status
}

// Snapshot returns a copy of the current session with cloned slices.
func (m *Manager) Snapshot() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session
	s.Questions = append([]string(nil), m.session.Questions...)
	s.Transcript = append([]model.Turn(nil), m.session.Transcript...)
	return s
}

// LastSummary returns the summary retained from the most recent
// completion, or nil.
func (m *Manager) LastSummary() *model.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSummary
}

func (m *Manager) archiveSummary(s *model.Summary) {
	if m.archive == nil {
		return
	}
	if err := m.archive.SaveSummary(s); err != nil {
		slog.Warn("failed to archive exam summary", "session_id", s.SessionID, "error", err)
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
