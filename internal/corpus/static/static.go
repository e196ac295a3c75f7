// Package static supplies words from an embedded list. It is the corpus of
// last resort: always available, never fresh.
package static

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/louisbranch/fictionary/internal/corpus"
	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/random"
)

//go:embed words.tsv
var wordsTSV string

// Provider serves a random sample of the embedded word list.
type Provider struct {
	mu        sync.Mutex
	rng       *rand.Rand
	questions []domain.Question
}

// New builds a provider over the embedded list.
func New() *Provider {
	seed, err := random.NewSeed()
	if err != nil {
		seed = 1
	}
	return &Provider{
		rng:       rand.New(rand.NewSource(seed)),
		questions: mustParse(wordsTSV),
	}
}

// Supply implements corpus.Provider. It returns n distinct random entries
// and fails with corpus.ErrUnavailable when the list is too short.
func (p *Provider) Supply(_ context.Context, n int) ([]domain.Question, error) {
	if n > len(p.questions) {
		return nil, fmt.Errorf("%w: embedded list holds %d of %d words", corpus.ErrUnavailable, len(p.questions), n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	perm := p.rng.Perm(len(p.questions))
	out := make([]domain.Question, n)
	for i := 0; i < n; i++ {
		out[i] = p.questions[perm[i]]
	}
	return out, nil
}

func mustParse(data string) []domain.Question {
	var questions []domain.Question
	for lineNo, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		word, definition, ok := strings.Cut(line, "\t")
		if !ok || word == "" || definition == "" {
			panic(fmt.Sprintf("static corpus: malformed line %d: %q", lineNo+1, line))
		}
		questions = append(questions, domain.Question{Word: word, Definition: definition})
	}
	if len(questions) == 0 {
		panic("static corpus: empty word list")
	}
	return questions
}

var _ corpus.Provider = (*Provider)(nil)
