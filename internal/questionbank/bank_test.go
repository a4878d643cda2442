package questionbank

import (
	"os"
	"path/filepath"
	"testing"
)

func writeThemesFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "themes.txt")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("writeThemesFile: %v", err)
	}
	return path
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := writeThemesFile(t, "Tokenization\n\n  \nWord embeddings\nAttention\n")
	b := Load(path)
	if b.Size() != 3 {
		t.Fatalf("expected 3 themes, got %d", b.Size())
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	b := Load(filepath.Join(t.TempDir(), "nope.txt"))
	if b.Size() != 3 {
		t.Fatalf("expected fallback set of 3, got %d", b.Size())
	}
	got := b.Sample(3)
	seen := map[string]bool{}
	for _, q := range got {
		seen[q] = true
	}
	for _, want := range fallbackQuestions {
		if !seen[want] {
			t.Errorf("fallback set missing %q", want)
		}
	}
}

func TestLoadEmptyFileFallsBack(t *testing.T) {
	path := writeThemesFile(t, "\n\n")
	b := Load(path)
	if b.Size() != 3 {
		t.Fatalf("expected fallback set of 3, got %d", b.Size())
	}
}

func TestSampleDistinct(t *testing.T) {
	path := writeThemesFile(t, "q1\nq2\nq3\nq4\nq5\n")
	b := Load(path)

	for n := 0; n <= b.Size(); n++ {
		got := b.Sample(n)
		if len(got) != n {
			t.Fatalf("Sample(%d) returned %d themes", n, len(got))
		}
		seen := map[string]bool{}
		for _, q := range got {
			if seen[q] {
				t.Errorf("Sample(%d) returned duplicate %q", n, q)
			}
			seen[q] = true
		}
	}
}

func TestSampleClampsToPoolSize(t *testing.T) {
	path := writeThemesFile(t, "q1\nq2\n")
	b := Load(path)

	got := b.Sample(10)
	if len(got) != 2 {
		t.Fatalf("expected clamp to pool size 2, got %d", len(got))
	}

	if got := b.Sample(-1); got != nil {
		t.Errorf("Sample(-1) should be empty, got %v", got)
	}
}

func TestSampleDoesNotMutatePool(t *testing.T) {
	path := writeThemesFile(t, "q1\nq2\nq3\n")
	b := Load(path)
	before := append([]string(nil), b.questions...)
	for range 10 {
		b.Sample(3)
	}
	for i, q := range b.questions {
		if q != before[i] {
			t.Fatal("Sample mutated the underlying pool")
		}
	}
}
