package store

import (
	"testing"
	"time"

	"github.com/opetrenko/vivavoce/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSummary(id string, completed time.Time) *model.Summary {
	return &model.Summary{
		SessionID:    id,
		StudentName:  "Alice Johnson",
		StudentEmail: "alice@example.com",
		Score:        7.5,
		Timestamp:    completed,
		ConversationHistory: []model.Turn{
			{Role: model.RoleUser, Content: "answer", Timestamp: completed},
			{Role: model.RoleAssistant, Content: "feedback", Timestamp: completed},
		},
	}
}

func TestSaveAndGetSummary(t *testing.T) {
	s := newTestStore(t)

	// Unknown session returns nil, not an error.
	got, err := s.GetSummary("missing")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown session")
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.SaveSummary(testSummary("sess-1", now)); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	got, err = s.GetSummary("sess-1")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if got == nil {
		t.Fatal("expected summary")
	}
	if got.StudentEmail != "alice@example.com" || got.Score != 7.5 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if len(got.ConversationHistory) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got.ConversationHistory))
	}
	if got.ConversationHistory[0].Content != "answer" {
		t.Errorf("unexpected first turn: %+v", got.ConversationHistory[0])
	}
}

func TestSaveSummaryUpsert(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	sum := testSummary("sess-1", now)
	if err := s.SaveSummary(sum); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}
	sum.Score = 9
	if err := s.SaveSummary(sum); err != nil {
		t.Fatalf("SaveSummary update: %v", err)
	}

	got, err := s.GetSummary("sess-1")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if got.Score != 9 {
		t.Errorf("expected updated score 9, got %v", got.Score)
	}

	count, err := s.SummaryCount()
	if err != nil {
		t.Fatalf("SummaryCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after upsert, got %d", count)
	}
}

func TestListSummariesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)

	if err := s.SaveSummary(testSummary("old", base.Add(-time.Hour))); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}
	if err := s.SaveSummary(testSummary("new", base)); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	list, err := s.ListSummaries()
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(list))
	}
	if list[0].SessionID != "new" || list[1].SessionID != "old" {
		t.Errorf("unexpected order: %s, %s", list[0].SessionID, list[1].SessionID)
	}
}
