package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	botapp "github.com/louisbranch/fictionary/internal/bot"
	"github.com/louisbranch/fictionary/internal/corpus"
	"github.com/louisbranch/fictionary/internal/corpus/sqlitecache"
	"github.com/louisbranch/fictionary/internal/corpus/static"
	"github.com/louisbranch/fictionary/internal/corpus/wiktionary"
	"github.com/louisbranch/fictionary/internal/game/service"
	"github.com/louisbranch/fictionary/internal/game/storage/memory"
	"github.com/louisbranch/fictionary/internal/i18n/catalog"
	entrypoint "github.com/louisbranch/fictionary/internal/platform/cmd"
	"github.com/louisbranch/fictionary/internal/platform/timeouts"
	"github.com/louisbranch/fictionary/internal/transport/wsgateway"
)

// Run builds the bot process and serves its transport until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBot, func(ctx context.Context) error {
		if err := run(ctx, cfg); err != nil {
			return fmt.Errorf("serve bot: %w", err)
		}
		return nil
	})
}

func run(ctx context.Context, cfg Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	bundle := catalog.Default()
	if err := bundle.Register(); err != nil {
		return fmt.Errorf("register locales: %w", err)
	}
	if !bundle.HasLocale(cfg.Locale) {
		logger.Warn("unknown locale", "locale", cfg.Locale, "fallback", catalog.BaseLocale)
	}
	renderer := catalog.NewRenderer(bundle, cfg.Locale)

	provider, closeCorpus, err := buildCorpus(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCorpus()

	gateway := wsgateway.New(logger)

	svc := service.New(service.Config{
		Rooms:     memory.NewRoomStore(),
		Index:     memory.NewCorrelationIndex(),
		Transport: gateway,
		Corpus:    provider,
		Renderer:  renderer,
		Logger:    logger,
		Rounds:    cfg.Rounds,
		Policy:    service.Policy{KeepVoteOnLeave: cfg.KeepVoteOnLeave},
	})

	gateway.SetHandler(botapp.New(botapp.Config{
		Service:       svc,
		Renderer:      renderer,
		Transport:     gateway,
		Logger:        logger,
		AnswerTimeout: cfg.AnswerTimeout,
		VoteTimeout:   cfg.VoteTimeout,
	}))

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           gateway.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	logger.Info("bot listening", "addr", cfg.HTTPAddr)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// buildCorpus assembles the provider chain: Wiktionary behind an optional
// sqlite cache when configured, then the embedded list as a fallback.
func buildCorpus(cfg Config, logger *slog.Logger) (corpus.Provider, func(), error) {
	closeFn := func() {}

	var chain corpus.Chain
	if cfg.WiktionaryURL != "" {
		var remote corpus.Provider = wiktionary.New(cfg.WiktionaryURL, logger)
		if cfg.CorpusDB != "" {
			cache, err := sqlitecache.Open(cfg.CorpusDB, remote, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("open corpus cache: %w", err)
			}
			closeFn = func() {
				if err := cache.Close(); err != nil {
					logger.Warn("close corpus cache", "error", err)
				}
			}
			remote = cache
		}
		chain = append(chain, remote)
	}
	chain = append(chain, static.New())
	return chain, closeFn, nil
}
