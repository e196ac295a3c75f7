// Package sqlitecache wraps a corpus provider with a sqlite-backed
// read-through cache, so past games keep a room playable when the upstream
// word source is down.
package sqlitecache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/louisbranch/fictionary/internal/corpus"
	"github.com/louisbranch/fictionary/internal/game/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
	word       TEXT PRIMARY KEY,
	definition TEXT NOT NULL
);`

type questionRow struct {
	Word       string `db:"word"`
	Definition string `db:"definition"`
}

// Cache is a corpus.Provider that records every successful supply and
// serves random cached questions when the source fails.
type Cache struct {
	db     *sqlx.DB
	source corpus.Provider
	logger *slog.Logger
}

// Open opens (or creates) the cache database at path.
func Open(path string, source corpus.Provider, logger *slog.Logger) (*Cache, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus cache: %w", err)
	}
	return New(db, source, logger)
}

// New wraps an existing database handle. The schema is applied on
// construction.
func New(db *sqlx.DB, source corpus.Provider, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply corpus cache schema: %w", err)
	}
	return &Cache{db: db, source: source, logger: logger}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Supply implements corpus.Provider.
func (c *Cache) Supply(ctx context.Context, n int) ([]domain.Question, error) {
	questions, err := c.source.Supply(ctx, n)
	if err == nil {
		c.store(ctx, questions)
		return questions, nil
	}
	c.logger.Warn("corpus source failed, serving cached questions", "error", err)

	var rows []questionRow
	selectErr := c.db.SelectContext(ctx, &rows,
		`SELECT word, definition FROM questions ORDER BY random() LIMIT ?`, n)
	if selectErr != nil {
		return nil, fmt.Errorf("read corpus cache: %w", selectErr)
	}
	if len(rows) < n {
		return nil, fmt.Errorf("%w: cache holds %d of %d questions", corpus.ErrUnavailable, len(rows), n)
	}

	out := make([]domain.Question, len(rows))
	for i, row := range rows {
		out[i] = domain.Question{Word: row.Word, Definition: row.Definition}
	}
	return out, nil
}

// store is best effort: a failed insert never fails the supply that
// produced the questions.
func (c *Cache) store(ctx context.Context, questions []domain.Question) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		c.logger.Warn("corpus cache write failed", "error", err)
		return
	}
	for _, q := range questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (word, definition) VALUES (?, ?)
			 ON CONFLICT(word) DO NOTHING`, q.Word, q.Definition)
		if err != nil {
			c.logger.Warn("corpus cache write failed", "word", q.Word, "error", err)
			_ = tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		c.logger.Warn("corpus cache commit failed", "error", err)
	}
}

var _ corpus.Provider = (*Cache)(nil)
