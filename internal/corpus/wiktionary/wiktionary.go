// Package wiktionary supplies words and official definitions by scraping
// random noun articles from ru.wiktionary.org.
package wiktionary

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/louisbranch/fictionary/internal/corpus"
	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/platform/timeouts"
)

// DefaultBaseURL is the production wiki article root.
const DefaultBaseURL = "https://ru.wiktionary.org/wiki/"

// randomNounPage redirects to a random article from the Russian nouns
// category.
const randomNounPage = "Служебная:RandomInCategory/Русские_существительные"

// attemptsPerQuestion bounds how many articles are fetched per requested
// question before giving up. Articles without usable meanings are common.
const attemptsPerQuestion = 4

// Client draws random words from wiktionary. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeouts.CorpusFetch},
		logger:     logger,
	}
}

// Supply implements corpus.Provider. It fetches random articles until n
// distinct usable words are collected, and fails with corpus.ErrUnavailable
// when the attempt budget runs out first.
func (c *Client) Supply(ctx context.Context, n int) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, n)
	seen := make(map[string]bool, n)

	var lastErr error
	for attempts := n * attemptsPerQuestion; attempts > 0 && len(questions) < n; attempts-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q, err := c.randomQuestion(ctx)
		if err != nil {
			lastErr = err
			c.logger.Debug("article fetch failed", "error", err)
			continue
		}
		if seen[q.Word] {
			continue
		}
		seen[q.Word] = true
		questions = append(questions, q)
	}

	if len(questions) < n {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", corpus.ErrUnavailable, lastErr)
		}
		return nil, fmt.Errorf("%w: collected %d of %d words", corpus.ErrUnavailable, len(questions), n)
	}
	return questions, nil
}

func (c *Client) randomQuestion(ctx context.Context) (domain.Question, error) {
	target := c.baseURL + url.PathEscape(randomNounPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.Question{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Question{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Question{}, fmt.Errorf("article fetch: status %d", resp.StatusCode)
	}

	word, meanings, err := parsePage(resp.Body)
	if err != nil {
		return domain.Question{}, err
	}
	q, ok := question(word, meanings)
	if !ok {
		return domain.Question{}, fmt.Errorf("article %q has no usable meaning", word)
	}
	return q, nil
}

var _ corpus.Provider = (*Client)(nil)
