package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/storyline"
	"github.com/aretw0/storyline/internal/config"
	"github.com/aretw0/storyline/pkg/adapters/redis"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/observability"
	"github.com/aretw0/storyline/pkg/ports"
	"github.com/aretw0/storyline/pkg/text"
)

// openJournal connects the Redis journal described by cfg.
func openJournal(cfg config.Config) *redis.Journal {
	return redis.New(cfg.Journal.RedisAddr, cfg.Journal.RedisPassword, cfg.Journal.RedisDB,
		redis.WithPrefix(cfg.Journal.Prefix),
		redis.WithTTL(cfg.Journal.TTL),
	)
}

// createReporter builds a reporter with the CLI conventions: the configured
// logger, debug logging hooks, metadata redaction and the Redis journal
// when configured, plus any extra hooks.
// The returned closer releases the journal connection.
func createReporter(cfg config.Config, client ports.ReportingClient, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*storyline.Reporter, func() error, error) {
	all := append([]domain.LifecycleHooks{observability.LoggingHooks(logger)}, hooks...)
	opts := []storyline.Option{
		storyline.WithLogger(logger),
		storyline.WithLifecycleHooks(observability.ComposeHooks(all...)),
	}

	if len(cfg.Redact) > 0 {
		redact, err := text.NewRedactor(cfg.Redact)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, storyline.WithRedactor(redact))
	}

	closer := func() error { return nil }
	if cfg.JournalEnabled() {
		journal := openJournal(cfg)
		opts = append(opts, storyline.WithJournal(journal))
		closer = journal.Close
		logger.Debug("Journal enabled", "redis_addr", cfg.Journal.RedisAddr, "prefix", cfg.Journal.Prefix)
	}

	rep, err := storyline.New(client, opts...)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("error initializing reporter: %w", err)
	}
	return rep, closer, nil
}
