package sqlitecache

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/fictionary/internal/corpus"
	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/testkit/botfakes"
)

func openTestCache(t *testing.T, source corpus.Provider) *Cache {
	t.Helper()
	cache, err := Open(":memory:", source, nil)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestSupplyPassesThroughAndRecords(t *testing.T) {
	source := &botfakes.Corpus{Questions: []domain.Question{
		{Word: "ort", Definition: "a scrap of leftover food"},
		{Word: "snood", Definition: "a hairnet worn at the back of the head"},
	}}
	cache := openTestCache(t, source)
	ctx := context.Background()

	questions, err := cache.Supply(ctx, 2)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if len(questions) != 2 || questions[0].Word != "ort" {
		t.Fatalf("expected pass-through order, got %v", questions)
	}

	// The source goes down; the cache serves what it recorded.
	source.Err = errors.New("upstream down")
	cached, err := cache.Supply(ctx, 2)
	if err != nil {
		t.Fatalf("cached supply: %v", err)
	}
	words := map[string]bool{}
	for _, q := range cached {
		words[q.Word] = true
	}
	if !words["ort"] || !words["snood"] {
		t.Fatalf("expected cached words, got %v", cached)
	}
}

func TestSupplyUnavailableWhenCacheTooSmall(t *testing.T) {
	source := &botfakes.Corpus{Questions: []domain.Question{
		{Word: "ort", Definition: "a scrap of leftover food"},
	}}
	cache := openTestCache(t, source)
	ctx := context.Background()

	if _, err := cache.Supply(ctx, 1); err != nil {
		t.Fatalf("seed supply: %v", err)
	}

	source.Err = errors.New("upstream down")
	_, err := cache.Supply(ctx, 5)
	if !errors.Is(err, corpus.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestStoreDeduplicatesWords(t *testing.T) {
	source := &botfakes.Corpus{Questions: []domain.Question{
		{Word: "ort", Definition: "a scrap of leftover food"},
	}}
	cache := openTestCache(t, source)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.Supply(ctx, 1); err != nil {
			t.Fatalf("supply %d: %v", i, err)
		}
	}

	var count int
	if err := cache.db.Get(&count, `SELECT count(*) FROM questions`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 cached question, got %d", count)
	}
}
