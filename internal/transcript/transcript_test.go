package transcript

import (
	"testing"
	"time"

	"github.com/opetrenko/vivavoce/internal/model"
)

func TestNormalizePairs(t *testing.T) {
	now := time.Now()
	turns := Normalize(History{Pair{User: "hi", Assistant: "hello"}}, now)

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != model.RoleUser || turns[0].Content != "hi" {
		t.Errorf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != model.RoleAssistant || turns[1].Content != "hello" {
		t.Errorf("unexpected second turn: %+v", turns[1])
	}
	if !turns[0].Timestamp.Equal(now) {
		t.Errorf("expected timestamp %v, got %v", now, turns[0].Timestamp)
	}
}

func TestNormalizeMessages(t *testing.T) {
	now := time.Now()
	raw := History{
		Message{Role: "user", Content: "an answer"},
		Message{Role: "", Content: "who said this"},
		Message{Role: "assistant", Content: ""}, // empty content is skipped
	}
	turns := Normalize(raw, now)

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != model.RoleUser {
		t.Errorf("expected role user, got %q", turns[0].Role)
	}
	if turns[1].Role != model.RoleUnknown {
		t.Errorf("expected missing role to default to unknown, got %q", turns[1].Role)
	}
}

func TestNormalizeBatchFlattensOneLevel(t *testing.T) {
	raw := History{
		Batch{
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "second"},
		},
		Message{Role: "user", Content: "third"},
	}
	turns := Normalize(raw, time.Now())
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Content != "first" || turns[2].Content != "third" {
		t.Errorf("unexpected order: %+v", turns)
	}
}

func TestNormalizeEmptyProducesDiagnosticTurn(t *testing.T) {
	for _, raw := range []History{nil, {}, {Message{Role: "user", Content: ""}}} {
		turns := Normalize(raw, time.Now())
		if len(turns) != 1 {
			t.Fatalf("expected exactly 1 diagnostic turn, got %d", len(turns))
		}
		if turns[0].Role != model.RoleSystem {
			t.Errorf("expected system role, got %q", turns[0].Role)
		}
		if turns[0].Content == "" {
			t.Error("diagnostic turn should explain the empty history")
		}
	}
}

func TestFromTurnsRoundTrip(t *testing.T) {
	now := time.Now()
	orig := []model.Turn{
		{Role: model.RoleUser, Content: "q", Timestamp: now},
		{Role: model.RoleAssistant, Content: "a", Timestamp: now},
	}
	turns := Normalize(FromTurns(orig), now)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	for i := range turns {
		if turns[i].Role != orig[i].Role || turns[i].Content != orig[i].Content {
			t.Errorf("turn %d mismatch: got %+v want %+v", i, turns[i], orig[i])
		}
	}
}

func TestParseJSONShapes(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int // turns after normalization
	}{
		{"pairs", `[["hi","hello"],["more","sure"]]`, 4},
		{"messages", `[{"role":"user","content":"a"},{"role":"assistant","content":"b"}]`, 2},
		{"message without role", `[{"content":"orphan"}]`, 1},
		{"nested batch", `[[{"role":"user","content":"a"},{"role":"assistant","content":"b"}]]`, 2},
		{"mixed", `[["u","a"],{"role":"user","content":"c"}]`, 3},
		{"empty content skipped", `[{"role":"user","content":""}]`, 1}, // diagnostic replaces empty result
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns := Normalize(ParseJSON([]byte(tt.data)), time.Now())
			if len(turns) != tt.want {
				t.Errorf("expected %d turns, got %d: %+v", tt.want, len(turns), turns)
			}
		})
	}
}

func TestParseJSONGarbageBecomesDiagnostic(t *testing.T) {
	for _, data := range []string{`not json at all`, `{"role":"user"}`, `[42]`, `[["only one"]]`} {
		turns := Normalize(ParseJSON([]byte(data)), time.Now())
		if len(turns) == 0 {
			t.Fatalf("normalization of %q produced an empty sequence", data)
		}
		// Whatever the shape, the result must carry at least one turn
		// explaining what happened rather than failing.
		for _, turn := range turns {
			if turn.Content == "" {
				t.Errorf("diagnostic turn with empty content for %q", data)
			}
		}
	}
}
