package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/fictionary/internal/game/domain"
)

type stubProvider struct {
	questions []domain.Question
	err       error
	calls     int
}

func (s *stubProvider) Supply(context.Context, int) ([]domain.Question, error) {
	s.calls++
	return s.questions, s.err
}

func TestChainUsesFirstHealthyProvider(t *testing.T) {
	broken := &stubProvider{err: errors.New("down")}
	healthy := &stubProvider{questions: []domain.Question{{Word: "ort", Definition: "a scrap"}}}
	spare := &stubProvider{questions: []domain.Question{{Word: "zarf", Definition: "a holder"}}}

	questions, err := Chain{broken, healthy, spare}.Supply(context.Background(), 1)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if questions[0].Word != "ort" {
		t.Fatalf("expected the second provider's words, got %v", questions)
	}
	if spare.calls != 0 {
		t.Fatal("later providers must not be consulted")
	}
}

func TestChainReturnsLastError(t *testing.T) {
	first := &stubProvider{err: errors.New("first down")}
	second := &stubProvider{err: errors.New("second down")}

	_, err := Chain{first, second}.Supply(context.Background(), 1)
	if err == nil || err.Error() != "second down" {
		t.Fatalf("expected the last error, got %v", err)
	}
}

func TestEmptyChainUnavailable(t *testing.T) {
	_, err := Chain{}.Supply(context.Background(), 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
