package i18n

import (
	"context"
	"strings"
	"testing"
)

func TestTranslations(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	t.Run("english default", func(t *testing.T) {
		ctx := WithLocalizer(context.Background(), NewLocalizer("en"))
		got := T(ctx, "exam.session_closed")
		if !strings.Contains(got, "session is now closed") {
			t.Errorf("unexpected translation: %q", got)
		}
	})

	t.Run("ukrainian", func(t *testing.T) {
		ctx := WithLocalizer(context.Background(), NewLocalizer("uk"))
		got := T(ctx, "exam.session_closed")
		if !strings.Contains(got, "Сесію закрито") {
			t.Errorf("unexpected translation: %q", got)
		}
	})

	t.Run("context without localizer falls back", func(t *testing.T) {
		got := T(context.Background(), "exam.welcome")
		if got == "" || got == "exam.welcome" {
			t.Errorf("expected English fallback, got %q", got)
		}
	})

	t.Run("missing id returns id", func(t *testing.T) {
		ctx := WithLocalizer(context.Background(), NewLocalizer("en"))
		if got := T(ctx, "no.such.message"); got != "no.such.message" {
			t.Errorf("expected message ID passthrough, got %q", got)
		}
	})
}

func TestInitRejectsBadLanguage(t *testing.T) {
	if err := Init("!!"); err == nil {
		t.Fatal("expected error for invalid language tag")
	}
}
