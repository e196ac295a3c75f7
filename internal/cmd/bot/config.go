// Package bot parses bot command flags and composes the game process.
package bot

import (
	"flag"
	"time"

	entrypoint "github.com/louisbranch/fictionary/internal/platform/cmd"
)

// Config holds bot command configuration.
type Config struct {
	HTTPAddr string `env:"FICTIONARY_HTTP_ADDR" envDefault:":8080"`
	Locale   string `env:"FICTIONARY_LOCALE"    envDefault:"en-US"`
	Rounds   int    `env:"FICTIONARY_ROUNDS"    envDefault:"5"`

	// WiktionaryURL enables the Wiktionary word provider. Empty leaves
	// only the embedded word list.
	WiktionaryURL string `env:"FICTIONARY_WIKTIONARY_URL"`

	// CorpusDB is the path of the sqlite question cache. Empty disables
	// caching.
	CorpusDB string `env:"FICTIONARY_CORPUS_DB"`

	// KeepVoteOnLeave preserves a departing player's vote instead of
	// revoking it.
	KeepVoteOnLeave bool `env:"FICTIONARY_KEEP_VOTE_ON_LEAVE"`

	AnswerTimeout time.Duration `env:"FICTIONARY_ANSWER_TIMEOUT"`
	VoteTimeout   time.Duration `env:"FICTIONARY_VOTE_TIMEOUT"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "bot HTTP listen address")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "chat message locale")
	fs.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "questions per game")
	fs.StringVar(&cfg.WiktionaryURL, "wiktionary-url", cfg.WiktionaryURL, "wiktionary article root, empty disables")
	fs.StringVar(&cfg.CorpusDB, "corpus-db", cfg.CorpusDB, "sqlite question cache path, empty disables")
	fs.BoolVar(&cfg.KeepVoteOnLeave, "keep-vote-on-leave", cfg.KeepVoteOnLeave, "keep a departing player's vote")
	fs.DurationVar(&cfg.AnswerTimeout, "answer-timeout", cfg.AnswerTimeout, "answer phase deadline, zero for default")
	fs.DurationVar(&cfg.VoteTimeout, "vote-timeout", cfg.VoteTimeout, "vote phase deadline, zero for default")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
