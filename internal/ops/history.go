package ops

import (
	"context"

	"github.com/hpungsan/serene/internal/assessment"
	"github.com/hpungsan/serene/internal/datekey"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/history"
)

// ScoredEntry is a history entry with its severity labels.
type ScoredEntry struct {
	history.Entry
	Total    int               `json:"total"`
	Severity map[string]string `json:"severity"` // keyed by subscale code
}

func scoreEntry(e history.Entry) ScoredEntry {
	return ScoredEntry{
		Entry: e,
		Total: e.Total(),
		Severity: map[string]string{
			string(assessment.Depression): assessment.Classify(assessment.Depression, e.D),
			string(assessment.Anxiety):    assessment.Classify(assessment.Anxiety, e.A),
			string(assessment.Stress):     assessment.Classify(assessment.Stress, e.S),
		},
	}
}

// HistoryListInput contains parameters for the HistoryList operation.
type HistoryListInput struct {
	From string // optional inclusive lower bound, YYYY-MM-DD
	To   string // optional inclusive upper bound, YYYY-MM-DD
}

// HistoryListOutput contains the result of the HistoryList operation.
type HistoryListOutput struct {
	Entries  []ScoredEntry `json:"entries"`
	Count    int           `json:"count"`
	Capacity int           `json:"capacity"`
	Sort     string        `json:"sort"`
}

// HistoryList returns the ledger in ascending date order.
func HistoryList(ctx context.Context, env *Env, input HistoryListInput) (*HistoryListOutput, error) {
	for _, bound := range []string{input.From, input.To} {
		if bound == "" {
			continue
		}
		if err := datekey.Validate(bound); err != nil {
			return nil, err
		}
	}
	if input.From != "" && input.To != "" && input.From > input.To {
		return nil, errors.NewInvalidRequest("from must not be after to")
	}

	entries := []ScoredEntry{}
	for _, e := range env.Ledger.All(ctx) {
		if input.From != "" && e.Date < input.From {
			continue
		}
		if input.To != "" && e.Date > input.To {
			continue
		}
		entries = append(entries, scoreEntry(e))
	}
	return &HistoryListOutput{
		Entries:  entries,
		Count:    len(entries),
		Capacity: env.Ledger.Capacity(),
		Sort:     "date_asc",
	}, nil
}

// HistoryGetInput contains parameters for the HistoryGet operation.
type HistoryGetInput struct {
	Date string
}

// HistoryGet returns the entry recorded for one date.
func HistoryGet(ctx context.Context, env *Env, input HistoryGetInput) (*ScoredEntry, error) {
	e, ok, err := env.Ledger.Get(ctx, input.Date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFound("history entry", input.Date)
	}
	out := scoreEntry(e)
	return &out, nil
}

// ResultsOutput backs the results screen.
type ResultsOutput struct {
	Latest        ScoredEntry         `json:"latest"`
	Subscales     []SubscaleBreakdown `json:"subscales"`
	Trend         []ScoredEntry       `json:"trend"`
	ExpandSection string              `json:"expand_section"`
}

// SubscaleBreakdown places a final score inside its severity table.
type SubscaleBreakdown struct {
	Code       assessment.Subscale    `json:"code"`
	Name       string                 `json:"name"`
	Final      int                    `json:"final"`
	Severity   string                 `json:"severity"`
	Thresholds []assessment.Threshold `json:"thresholds"`
}

// Results returns the most recent ledger entry with a per-subscale
// breakdown and the full trend.
func Results(ctx context.Context, env *Env) (*ResultsOutput, error) {
	entries := env.Ledger.All(ctx)
	if len(entries) == 0 {
		return nil, errors.NewNotFound("result", "latest")
	}

	out := &ResultsOutput{ExpandSection: env.Config.ExpandSection}
	for _, e := range entries {
		out.Trend = append(out.Trend, scoreEntry(e))
	}
	out.Latest = out.Trend[len(out.Trend)-1]

	finals := map[assessment.Subscale]int{
		assessment.Depression: out.Latest.D,
		assessment.Anxiety:    out.Latest.A,
		assessment.Stress:     out.Latest.S,
	}
	for _, s := range assessment.Subscales {
		out.Subscales = append(out.Subscales, SubscaleBreakdown{
			Code:       s,
			Name:       s.Name(),
			Final:      finals[s],
			Severity:   out.Latest.Severity[string(s)],
			Thresholds: assessment.Thresholds(s),
		})
	}
	return out, nil
}
