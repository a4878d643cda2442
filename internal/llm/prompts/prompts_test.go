package prompts

import (
	"strings"
	"testing"
)

func TestPersona(t *testing.T) {
	got, err := Persona(PersonaData{Course: "Natural Language Processing", NumQuestions: 3})
	if err != nil {
		t.Fatalf("Persona: %v", err)
	}
	if !strings.Contains(got, "Natural Language Processing") {
		t.Error("persona should name the course")
	}
	if !strings.Contains(got, "3 questions in total") {
		t.Error("persona should state the configured question count")
	}
	for _, tool := range []string{"start_exam", "get_next_question", "end_exam"} {
		if !strings.Contains(got, tool) {
			t.Errorf("persona should reference the %s tool", tool)
		}
	}
}
