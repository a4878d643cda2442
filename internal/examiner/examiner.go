// Package examiner drives the turn-by-turn dialogue with the reasoning
// service. It formats the transcript, lets the service propose tool
// invocations, applies them to the session manager as validated events,
// and returns the reply actually shown to the student.
package examiner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/opetrenko/vivavoce/internal/exam"
	"github.com/opetrenko/vivavoce/internal/i18n"
	"github.com/opetrenko/vivavoce/internal/llm"
	"github.com/opetrenko/vivavoce/internal/llm/prompts"
	"github.com/opetrenko/vivavoce/internal/model"
	"github.com/opetrenko/vivavoce/internal/transcript"
)

// Tool names declared to the reasoning service.
const (
	toolStartExam    = "start_exam"
	toolNextQuestion = "get_next_question"
	toolEndExam      = "end_exam"
)

// ChatCompleter produces a reply for a transcript and a set of declared
// tools. Implemented by llm.Client.
type ChatCompleter interface {
	Chat(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error)
}

// Examiner turns one user message plus running history into one assistant
// reply. It holds no session state of its own: all side effects go through
// the manager.
type Examiner struct {
	llm     ChatCompleter
	manager *exam.Manager
	persona string
	tools   []llm.Tool
}

// New creates an examiner with the persona rendered for the configured
// course and question count.
func New(c ChatCompleter, m *exam.Manager, cfg model.ExamConfig) (*Examiner, error) {
	persona, err := prompts.Persona(prompts.PersonaData{
		Course:       cfg.Course,
		NumQuestions: cfg.NumQuestions,
	})
	if err != nil {
		return nil, fmt.Errorf("render persona: %w", err)
	}
	return &Examiner{
		llm:     c,
		manager: m,
		persona: persona,
		tools:   toolDeclarations(),
	}, nil
}

// ProcessMessage handles one chat turn. A completed session short-circuits
// with the closed-session notice without contacting the reasoning service.
func (e *Examiner) ProcessMessage(ctx context.Context, message string, history []transcript.Pair) (string, error) {
	if e.manager.Status() == model.StatusCompleted {
		return i18n.T(ctx, "exam.session_closed"), nil
	}

	msgs := make([]llm.Message, 0, 2*len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: e.persona})
	for _, p := range history {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: p.User},
			llm.Message{Role: llm.RoleAssistant, Content: p.Assistant},
		)
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	if e.manager.Status() == model.StatusActive {
		e.manager.RecordTurn(model.Turn{Role: model.RoleUser, Content: message})
		e.manager.NoteAnswer()
	}

	resp, err := e.llm.Chat(ctx, msgs, e.tools)
	if err != nil {
		return "", fmt.Errorf("reasoning service: %w", err)
	}

	if len(resp.ToolCalls) > 0 {
		msgs = append(msgs, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			result := e.dispatch(call)
			msgs = append(msgs, llm.Message{
				Role:       llm.RoleTool,
				Name:       call.Name,
				ToolCallID: call.ID,
				Content:    result,
			})
		}

		// Tool results are never shown raw: one more round produces the
		// reply the student sees.
		resp, err = e.llm.Chat(ctx, msgs, e.tools)
		if err != nil {
			return "", fmt.Errorf("reasoning service after tools: %w", err)
		}
	}

	if e.manager.Status() == model.StatusActive {
		e.manager.RecordTurn(model.Turn{Role: model.RoleAssistant, Content: resp.Content})
	}
	return resp.Content, nil
}

// Reset clears the examination state for a retake.
func (e *Examiner) Reset() {
	e.manager.Reset()
}

// dispatch maps one requested tool invocation onto a session event and
// applies it. Failures come back as result text so the reasoning service
// can relay them; they never abort the message flow.
func (e *Examiner) dispatch(call llm.ToolCall) string {
	ev, err := decodeEvent(call)
	if err != nil {
		slog.Warn("bad tool invocation", "tool", call.Name, "error", err)
		return "Error: " + err.Error()
	}
	result, err := e.manager.Apply(ev)
	if err != nil {
		slog.Info("tool invocation rejected", "tool", call.Name, "error", err)
		return "Error: " + err.Error()
	}
	return result
}

func decodeEvent(call llm.ToolCall) (exam.Event, error) {
	switch call.Name {
	case toolStartExam:
		var args struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return nil, fmt.Errorf("parse %s arguments: %w", call.Name, err)
		}
		return exam.StartEvent{Email: args.Email, Name: args.Name}, nil

	case toolNextQuestion:
		return exam.NextEvent{}, nil

	case toolEndExam:
		var args struct {
			Email   string          `json:"email"`
			Score   float64         `json:"score"`
			History json.RawMessage `json:"history"`
		}
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return nil, fmt.Errorf("parse %s arguments: %w", call.Name, err)
		}
		var history transcript.History
		if len(args.History) > 0 && string(args.History) != "null" {
			history = transcript.ParseJSON(args.History)
		}
		return exam.EndEvent{Email: args.Email, Score: args.Score, History: history}, nil

	default:
		return nil, fmt.Errorf("unknown tool %q", call.Name)
	}
}

func toolDeclarations() []llm.Tool {
	return []llm.Tool{
		{
			Name: toolStartExam,
			Description: "Start a new examination session for a student. Returns the questions " +
				"selected for the session, or an error if the student is not registered for this exam.",
			Parameters: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"email": {Type: jsonschema.String, Description: "Student's email address"},
					"name":  {Type: jsonschema.String, Description: "Student's full name"},
				},
				Required: []string{"email", "name"},
			},
		},
		{
			Name:        toolNextQuestion,
			Description: "Get the next question for the examination.",
			Parameters: &jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: map[string]jsonschema.Definition{},
			},
		},
		{
			Name:        toolEndExam,
			Description: "End the examination session and record the results.",
			Parameters: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"email": {Type: jsonschema.String, Description: "Student's email address"},
					"score": {Type: jsonschema.Number, Description: "Final score (0-10)"},
					"history": {
						Type:        jsonschema.Array,
						Description: "Conversation history to record with the results",
						Items:       &jsonschema.Definition{Type: jsonschema.Object},
					},
				},
				Required: []string{"email", "score"},
			},
		},
	}
}
