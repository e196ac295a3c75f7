package static

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/fictionary/internal/corpus"
)

func TestSupplyReturnsDistinctQuestions(t *testing.T) {
	provider := New()

	questions, err := provider.Supply(context.Background(), 5)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	seen := map[string]bool{}
	for _, q := range questions {
		if q.Word == "" || q.Definition == "" {
			t.Fatalf("empty question %+v", q)
		}
		if seen[q.Word] {
			t.Fatalf("duplicate word %q", q.Word)
		}
		seen[q.Word] = true
	}
}

func TestSupplyUnavailableWhenListTooShort(t *testing.T) {
	provider := New()

	_, err := provider.Supply(context.Background(), 10000)
	if !errors.Is(err, corpus.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
