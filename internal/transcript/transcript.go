// Package transcript reconciles differently-shaped chat history
// representations into one canonical sequence of timestamped turns.
//
// Raw history arrives in a small closed set of tagged variants produced at
// the boundary (chat pairs, structured messages, nested batches) and is
// converted exactly once. Normalization never fails: a corrupt transcript
// must not block recording a score, so malformed input degrades to a
// diagnostic system turn instead of an error.
package transcript

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/opetrenko/vivavoce/internal/model"
)

// Entry is one element of a raw, possibly heterogeneous chat history.
type Entry interface {
	entry()
}

// Pair is a (user, assistant) exchange as produced by a chat widget.
type Pair struct {
	User      string
	Assistant string
}

// Message is a structured role/content record.
type Message struct {
	Role    string
	Content string
}

// Batch is a nested list of structured messages, flattened one level.
type Batch []Message

func (Pair) entry()    {}
func (Message) entry() {}
func (Batch) entry()   {}

// History is an ordered raw chat history awaiting normalization.
type History []Entry

// Normalize converts raw history into canonical timestamped turns. It never
// fails: an internal fault is recovered into a single diagnostic system turn
// and an empty result is replaced by one explanatory turn.
func Normalize(raw History, now time.Time) (turns []model.Turn) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("transcript normalization failed", "panic", r)
			turns = []model.Turn{{
				Role:      model.RoleSystem,
				Content:   fmt.Sprintf("Error processing conversation: %v", r),
				Timestamp: now,
			}}
		}
	}()

	for _, e := range raw {
		switch v := e.(type) {
		case Pair:
			turns = append(turns,
				model.Turn{Role: model.RoleUser, Content: v.User, Timestamp: now},
				model.Turn{Role: model.RoleAssistant, Content: v.Assistant, Timestamp: now},
			)
		case Message:
			turns = appendMessage(turns, v, now)
		case Batch:
			for _, m := range v {
				turns = appendMessage(turns, m, now)
			}
		default:
			slog.Warn("unrecognized history entry", "type", fmt.Sprintf("%T", e))
		}
	}

	if len(turns) == 0 {
		turns = []model.Turn{{
			Role:      model.RoleSystem,
			Content:   "No conversation history captured",
			Timestamp: now,
		}}
	}
	return turns
}

func appendMessage(turns []model.Turn, m Message, now time.Time) []model.Turn {
	if m.Content == "" {
		return turns
	}
	role := model.Role(m.Role)
	if m.Role == "" {
		role = model.RoleUnknown
	}
	return append(turns, model.Turn{Role: role, Content: m.Content, Timestamp: now})
}

// FromTurns re-tags already-canonical turns as structured entries so they
// can flow through the same normalization path as external history.
func FromTurns(turns []model.Turn) History {
	h := make(History, 0, len(turns))
	for _, t := range turns {
		h = append(h, Message{Role: string(t.Role), Content: t.Content})
	}
	return h
}

type rawMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ParseJSON converts a free-form JSON history argument, as sent by the
// reasoning service, into tagged entries. It recognizes two-element string
// arrays as chat pairs, objects as structured messages, and arrays of
// objects as nested batches. Anything else becomes a diagnostic message;
// ParseJSON never returns an error.
func ParseJSON(data []byte) History {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("history argument is not a JSON array", "error", err)
		return History{Message{
			Role:    string(model.RoleSystem),
			Content: fmt.Sprintf("Error processing conversation: %v", err),
		}}
	}

	h := make(History, 0, len(items))
	for _, item := range items {
		h = append(h, parseEntry(item))
	}
	return h
}

func parseEntry(item json.RawMessage) Entry {
	var m rawMessage
	if err := json.Unmarshal(item, &m); err == nil && (m.Role != "" || m.Content != "") {
		return Message{Role: m.Role, Content: m.Content}
	}

	var pair []string
	if err := json.Unmarshal(item, &pair); err == nil && len(pair) == 2 {
		return Pair{User: pair[0], Assistant: pair[1]}
	}

	var batch []rawMessage
	if err := json.Unmarshal(item, &batch); err == nil {
		b := make(Batch, 0, len(batch))
		for _, bm := range batch {
			b = append(b, Message{Role: bm.Role, Content: bm.Content})
		}
		return b
	}

	slog.Warn("unrecognized history entry shape", "raw", string(item))
	return Message{
		Role:    string(model.RoleSystem),
		Content: "Unrecognized history entry: " + string(item),
	}
}
