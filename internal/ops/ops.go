package ops

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/serene/internal/config"
	"github.com/hpungsan/serene/internal/datekey"
	"github.com/hpungsan/serene/internal/history"
	"github.com/hpungsan/serene/internal/journal"
	"github.com/hpungsan/serene/internal/kv"
	"github.com/hpungsan/serene/internal/session"
)

// Env bundles the collaborators shared by every operation.
// One Env serves one user; the CLI builds a fresh one per invocation while
// the MCP and web hosts keep one for the life of the process.
type Env struct {
	Store     kv.Store
	Config    *config.Config
	State     *session.State
	Collector *session.Collector
	Ledger    *history.Ledger
	Journal   *journal.Book
	Logger    *zap.Logger
	Now       func() time.Time
}

// EnvOptions configures NewEnv. Every field is optional.
type EnvOptions struct {
	Notifier session.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewEnv wires the engine over store and resumes the persisted assessment.
func NewEnv(ctx context.Context, store kv.Store, cfg *config.Config, opts EnvOptions) *Env {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	state := session.NewState(store, logger.Named("session"))
	ledger := history.NewLedger(store, cfg.HistoryCapacity, logger.Named("history"))
	collector := session.NewCollector(state, session.Options{
		Ledger:        ledger,
		Notifier:      opts.Notifier,
		ExpandSection: cfg.ExpandSection,
		Logger:        logger.Named("collector"),
		Now:           now,
	})
	collector.Resume(ctx)

	return &Env{
		Store:     store,
		Config:    cfg,
		State:     state,
		Collector: collector,
		Ledger:    ledger,
		Journal:   journal.NewBook(store, logger.Named("journal")),
		Logger:    logger,
		Now:       now,
	}
}

// Today returns today's date key.
func (e *Env) Today() string {
	return datekey.Today(e.Now())
}
