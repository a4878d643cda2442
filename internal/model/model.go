package model

import "time"

// Role identifies who produced a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
	RoleUnknown   Role = "unknown"
)

// Status represents the lifecycle state of an examination session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Turn is one message of a session transcript.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one examination attempt by one student, from activation to
// completion or reset. Identity fields and the question set are fixed at
// activation; the transcript is append-only while the session is active.
type Session struct {
	ID              string
	StudentName     string
	StudentEmail    string
	Status          Status
	Questions       []string
	Cursor          int
	AnswersReceived int
	Transcript      []Turn
	FinalScore      *float64
	StartedAt       time.Time
}

// Summary is the durable record produced when a session completes.
type Summary struct {
	SessionID           string    `json:"session_id"`
	StudentName         string    `json:"student_name"`
	StudentEmail        string    `json:"student_email"`
	Score               float64   `json:"score"`
	Timestamp           time.Time `json:"timestamp"`
	ConversationHistory []Turn    `json:"conversation_history"`
}

// ExamConfig holds runtime exam parameters set via CLI flags.
type ExamConfig struct {
	Course       string
	NumQuestions int
	Questions    string // path to the themes file
	Roster       string // path to the registered students file
	ResultsDir   string
	Lang         string
}

// ResultsExport is the top-level JSON structure for the export command.
type ResultsExport struct {
	ExamID     string    `json:"exam_id"`
	Subject    string    `json:"subject"`
	ExportedAt time.Time `json:"exported_at"`
	Results    []Summary `json:"results"`
}
