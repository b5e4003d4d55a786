package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/serene/internal/assessment"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/kv"
)

func submitOn(t *testing.T, env *Env, date string, answers map[int]int) {
	t.Helper()
	ctx := context.Background()
	_, err := AnswerAll(ctx, env, answers)
	require.NoError(t, err)
	_, err = Submit(ctx, env, SubmitInput{Date: date})
	require.NoError(t, err)
}

func TestHistoryList_Empty(t *testing.T) {
	env := memoryEnv(t, kv.NewMemory(), EnvOptions{})

	out, err := HistoryList(context.Background(), env, HistoryListInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Entries, "empty list is [] not null")
	require.Equal(t, 0, out.Count)
	require.Equal(t, 30, out.Capacity)
	require.Equal(t, "date_asc", out.Sort)
}

func TestHistoryList_AscendingWithSeverity(t *testing.T) {
	env := memoryEnv(t, kv.NewMemory(), EnvOptions{})
	submitOn(t, env, "2025-03-02", uniform(0))
	submitOn(t, env, "2025-03-01", depressionOnly())

	out, err := HistoryList(context.Background(), env, HistoryListInput{})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	require.Equal(t, "2025-03-01", out.Entries[0].Date)
	require.Equal(t, "2025-03-02", out.Entries[1].Date)

	require.Equal(t, 42, out.Entries[0].Total)
	require.Equal(t, assessment.SeverityExtremelySevere, out.Entries[0].Severity["D"])
	require.Equal(t, assessment.SeverityNormal, out.Entries[0].Severity["A"])
}

func TestHistoryList_Range(t *testing.T) {
	ctx := context.Background()
	env := memoryEnv(t, kv.NewMemory(), EnvOptions{})
	for _, d := range []string{"2025-03-01", "2025-03-05", "2025-03-09"} {
		submitOn(t, env, d, uniform(1))
	}

	out, err := HistoryList(ctx, env, HistoryListInput{From: "2025-03-02", To: "2025-03-09"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	require.Equal(t, "2025-03-05", out.Entries[0].Date)

	_, err = HistoryList(ctx, env, HistoryListInput{From: "2025-3-1"})
	require.True(t, errors.Is(err, errors.ErrValidation))

	_, err = HistoryList(ctx, env, HistoryListInput{From: "2025-03-09", To: "2025-03-01"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestHistoryGet(t *testing.T) {
	ctx := context.Background()
	env := memoryEnv(t, kv.NewMemory(), EnvOptions{})
	submitOn(t, env, "2025-03-01", uniform(1))

	got, err := HistoryGet(ctx, env, HistoryGetInput{Date: "2025-03-01"})
	require.NoError(t, err)
	require.Equal(t, 14, got.D)
	require.Equal(t, 42, got.Total)

	_, err = HistoryGet(ctx, env, HistoryGetInput{Date: "2025-03-02"})
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = HistoryGet(ctx, env, HistoryGetInput{Date: "yesterday"})
	require.True(t, errors.Is(err, errors.ErrValidation))
}

func TestHistory_ResubmitSameDateKeepsLatest(t *testing.T) {
	ctx := context.Background()
	env := memoryEnv(t, kv.NewMemory(), EnvOptions{})
	submitOn(t, env, "2025-03-01", uniform(0))
	submitOn(t, env, "2025-03-01", uniform(3))

	out, err := HistoryList(ctx, env, HistoryListInput{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	require.Equal(t, 42, out.Entries[0].D)
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	env := memoryEnv(t, kv.NewMemory(), EnvOptions{})

	_, err := Results(ctx, env)
	require.True(t, errors.Is(err, errors.ErrNotFound))

	submitOn(t, env, "2025-03-01", uniform(0))
	submitOn(t, env, "2025-03-02", depressionOnly())

	out, err := Results(ctx, env)
	require.NoError(t, err)
	require.Equal(t, "2025-03-02", out.Latest.Date)
	require.Len(t, out.Trend, 2)
	require.Equal(t, "insights", out.ExpandSection)

	require.Len(t, out.Subscales, 3)
	require.Equal(t, assessment.Depression, out.Subscales[0].Code)
	require.Equal(t, 42, out.Subscales[0].Final)
	require.Equal(t, assessment.SeverityExtremelySevere, out.Subscales[0].Severity)
	require.Len(t, out.Subscales[0].Thresholds, 5)
}
