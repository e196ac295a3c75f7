// Package corpus defines the word/definition supplier consumed by the game
// service.
package corpus

import (
	"context"
	"errors"

	"github.com/louisbranch/fictionary/internal/game/domain"
)

// ErrUnavailable indicates the corpus cannot supply words right now.
var ErrUnavailable = errors.New("word corpus unavailable")

// Provider supplies an ordered list of word/definition pairs. The list is
// consumed verbatim by the game service, order preserved.
type Provider interface {
	Supply(ctx context.Context, n int) ([]domain.Question, error)
}

// Chain tries each provider in order and returns the first successful
// supply. It fails with the last provider's error when all are exhausted.
type Chain []Provider

// Supply implements Provider.
func (c Chain) Supply(ctx context.Context, n int) ([]domain.Question, error) {
	if len(c) == 0 {
		return nil, ErrUnavailable
	}
	var err error
	for _, provider := range c {
		var questions []domain.Question
		questions, err = provider.Supply(ctx, n)
		if err == nil {
			return questions, nil
		}
	}
	return nil, err
}
