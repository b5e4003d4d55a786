package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/serene/internal/assessment"
	"github.com/hpungsan/serene/internal/config"
	"github.com/hpungsan/serene/internal/db"
	"github.com/hpungsan/serene/internal/kv"
	"github.com/hpungsan/serene/internal/session"
)

// fixedNow is a Wednesday.
var fixedNow = time.Date(2025, time.January, 29, 12, 0, 0, 0, time.Local)

func setupEnv(t *testing.T) *Env {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewEnv(context.Background(), db.NewRecords(database), config.DefaultConfig(), EnvOptions{
		Now: func() time.Time { return fixedNow },
	})
}

func memoryEnv(t *testing.T, store kv.Store, opts EnvOptions) *Env {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewEnv(context.Background(), store, config.DefaultConfig(), opts)
}

// depressionOnly answers every depression item with 3 and the rest with 0.
func depressionOnly() map[int]int {
	answers := map[int]int{}
	for _, item := range assessment.Items() {
		if item.Subscale == assessment.Depression {
			answers[item.ID] = 3
		} else {
			answers[item.ID] = 0
		}
	}
	return answers
}

func uniform(v int) map[int]int {
	answers := map[int]int{}
	for id := 1; id <= assessment.ItemCount; id++ {
		answers[id] = v
	}
	return answers
}

func TestNewEnv_Defaults(t *testing.T) {
	env := NewEnv(context.Background(), kv.NewMemory(), nil, EnvOptions{})
	require.NotNil(t, env.Config)
	require.Equal(t, 30, env.Ledger.Capacity())
	require.NotNil(t, env.Logger)
	require.NotNil(t, env.Now)
	require.Equal(t, session.StatusEmpty, env.Collector.Status())
}

func TestNewEnv_ResumesPersistedAnswers(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	first := memoryEnv(t, store, EnvOptions{})
	_, err := Answer(ctx, first, AnswerInput{ItemID: 1, Value: 2})
	require.NoError(t, err)

	second := memoryEnv(t, store, EnvOptions{})
	status := Status(second)
	require.Equal(t, session.StatusInProgress, status.Status)
	require.Equal(t, 1, status.Answered)
	require.Equal(t, 2, status.Responses[1])
	require.Equal(t, 1, status.Cursor, "cursor resumes at the first unanswered item")
}

func TestNewEnv_HistoryCapacityFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.HistoryCapacity = 5
	env := NewEnv(context.Background(), kv.NewMemory(), cfg, EnvOptions{})
	require.Equal(t, 5, env.Ledger.Capacity())
}

func TestEnv_Today(t *testing.T) {
	env := memoryEnv(t, kv.NewMemory(), EnvOptions{})
	require.Equal(t, "2025-01-29", env.Today())
}
