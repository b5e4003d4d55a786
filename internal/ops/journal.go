package ops

import (
	"context"

	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/journal"
)

// JournalPutInput contains parameters for the JournalPut operation.
type JournalPutInput struct {
	Date          string // empty means today
	Note          string
	MoodIntensity int
	MoodTag       string
}

// JournalPut creates or replaces the journal entry for a date.
func JournalPut(ctx context.Context, env *Env, input JournalPutInput) (*journal.Entry, error) {
	date := input.Date
	if date == "" {
		date = env.Today()
	}
	e := journal.Entry{
		Date:          date,
		Note:          input.Note,
		MoodIntensity: input.MoodIntensity,
		MoodTag:       input.MoodTag,
	}
	if err := env.Journal.Put(ctx, e); err != nil {
		return nil, err
	}
	stored, _, err := env.Journal.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// JournalGet returns the journal entry for a date.
func JournalGet(ctx context.Context, env *Env, date string) (*journal.Entry, error) {
	e, ok, err := env.Journal.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFound("journal entry", date)
	}
	return &e, nil
}

// JournalDeleteOutput contains the result of the JournalDelete operation.
type JournalDeleteOutput struct {
	Date    string `json:"date"`
	Deleted bool   `json:"deleted"`
}

// JournalDelete removes the journal entry for a date.
func JournalDelete(ctx context.Context, env *Env, date string) (*JournalDeleteOutput, error) {
	_, existed, err := env.Journal.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := env.Journal.Delete(ctx, date); err != nil {
		return nil, err
	}
	return &JournalDeleteOutput{Date: date, Deleted: existed}, nil
}
