package ops

import (
	"context"
	"fmt"
	"sort"

	"github.com/hpungsan/serene/internal/assessment"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/session"
)

// SubscaleInfo describes one subscale for clients.
type SubscaleInfo struct {
	Code       assessment.Subscale    `json:"code"`
	Name       string                 `json:"name"`
	ItemIDs    []int                  `json:"item_ids"`
	Thresholds []assessment.Threshold `json:"thresholds"`
}

// ItemsOutput contains the static instrument definition.
type ItemsOutput struct {
	Items         []assessment.Item `json:"items"`
	AnswerOptions []string          `json:"answer_options"`
	Subscales     []SubscaleInfo    `json:"subscales"`
}

// Items returns the catalog, the answer labels and the severity tables.
func Items() *ItemsOutput {
	items := assessment.Items()
	out := &ItemsOutput{
		Items:         items,
		AnswerOptions: assessment.AnswerOptions(),
	}
	for _, s := range assessment.Subscales {
		info := SubscaleInfo{Code: s, Name: s.Name(), Thresholds: assessment.Thresholds(s)}
		for _, item := range items {
			if item.Subscale == s {
				info.ItemIDs = append(info.ItemIDs, item.ID)
			}
		}
		out.Subscales = append(out.Subscales, info)
	}
	return out
}

// ScoreInput contains parameters for the stateless Score operation.
type ScoreInput struct {
	Answers map[int]int // item ID -> 0..3
}

// ScoreOutput contains the result of the Score operation.
type ScoreOutput struct {
	Result   assessment.Result `json:"result"`
	Answered int               `json:"answered"`
	Complete bool              `json:"complete"`
	Missing  []int             `json:"missing,omitempty"`
}

// Score scores an answer set without touching the session. Missing items
// count as 0 and are listed in Missing.
func Score(input ScoreInput) (*ScoreOutput, error) {
	responses := assessment.Responses{}
	for id, v := range input.Answers {
		if _, ok := assessment.Lookup(id); !ok {
			return nil, errors.NewValidation("item_id", fmt.Sprintf("unknown item_id %d", id))
		}
		if !assessment.ValidAnswer(v) {
			return nil, errors.NewValidation("value",
				fmt.Sprintf("answer for item %d must be between %d and %d", id, assessment.MinAnswer, assessment.MaxAnswer))
		}
		responses[id] = v
	}

	out := &ScoreOutput{
		Result:   assessment.Score(responses),
		Answered: responses.Answered(),
		Complete: responses.Complete(),
	}
	for _, item := range assessment.Items() {
		if _, ok := responses[item.ID]; !ok {
			out.Missing = append(out.Missing, item.ID)
		}
	}
	return out, nil
}

// StatusOutput describes the in-progress assessment.
type StatusOutput struct {
	session.Progress
	Responses map[int]int       `json:"responses"`
	Result    assessment.Result `json:"result"` // scored over the answers given so far
}

// Status returns the collector's progress and a provisional score.
func Status(env *Env) *StatusOutput {
	responses := env.Collector.Responses()
	return &StatusOutput{
		Progress:  env.Collector.Progress(),
		Responses: responses,
		Result:    assessment.Score(responses),
	}
}

// AnswerInput contains parameters for the Answer operation.
type AnswerInput struct {
	ItemID int
	Value  int
	// Advance moves the cursor forward when ItemID is the current item.
	Advance bool
}

// AnswerOutput contains the result of the Answer operation.
type AnswerOutput struct {
	Changed  bool             `json:"changed"`
	Progress session.Progress `json:"progress"`
}

// Answer records one answer and optionally advances.
func Answer(ctx context.Context, env *Env, input AnswerInput) (*AnswerOutput, error) {
	changed, err := env.Collector.Answer(ctx, input.ItemID, input.Value)
	if err != nil {
		return nil, err
	}
	out := &AnswerOutput{Changed: changed, Progress: env.Collector.Progress()}
	if input.Advance && out.Progress.Item.ID == input.ItemID {
		out.Progress, err = env.Collector.Advance()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Advance moves to the next item.
func Advance(env *Env) (session.Progress, error) {
	return env.Collector.Advance()
}

// Retreat moves to the previous item.
func Retreat(env *Env) session.Progress {
	return env.Collector.Retreat()
}

// SubmitInput contains parameters for the Submit operation.
type SubmitInput struct {
	Date string // YYYY-MM-DD; empty means today
}

// Submit scores and records the completed assessment.
func Submit(ctx context.Context, env *Env, input SubmitInput) (*session.Completed, error) {
	done, err := env.Collector.Submit(ctx, input.Date)
	if err != nil {
		return nil, err
	}
	return &done, nil
}

// Retake discards the in-progress assessment.
func Retake(ctx context.Context, env *Env) session.Progress {
	return env.Collector.Retake(ctx)
}

// AnswerAll records a full answer map in item order. Used by hosts that
// accept a whole questionnaire at once.
func AnswerAll(ctx context.Context, env *Env, answers map[int]int) (session.Progress, error) {
	ids := make([]int, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if _, err := env.Collector.Answer(ctx, id, answers[id]); err != nil {
			return env.Collector.Progress(), err
		}
	}
	return env.Collector.Progress(), nil
}
