package ops

import (
	"context"
	"time"

	"github.com/hpungsan/serene/internal/calendar"
	"github.com/hpungsan/serene/internal/datekey"
	"github.com/hpungsan/serene/internal/errors"
)

// MonthInput contains parameters for the Month operation.
// Zero Year or Month defaults to the current one.
type MonthInput struct {
	Year  int
	Month int
}

// MonthOutput contains the rendered month and the color legend.
type MonthOutput struct {
	*calendar.MonthView
	Legend []calendar.LegendItem `json:"legend"`
}

// Month renders one month of the calendar from the ledger and the journal.
func Month(ctx context.Context, env *Env, input MonthInput) (*MonthOutput, error) {
	now := env.Now()
	year, month := input.Year, input.Month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, errors.NewValidation("month", "month must be between 1 and 12")
	}

	view, err := board(ctx, env).Month(year, time.Month(month), env.Today())
	if err != nil {
		return nil, err
	}
	return &MonthOutput{MonthView: view, Legend: calendar.Legend()}, nil
}

// WeekInput contains parameters for the Week operation.
type WeekInput struct {
	Date string // any day in the week; empty means today
}

// WeekOutput contains the rendered week strip.
type WeekOutput struct {
	calendar.WeekView
	Legend []calendar.LegendItem `json:"legend"`
}

// Week renders the Sunday-first week containing Date.
func Week(ctx context.Context, env *Env, input WeekInput) (*WeekOutput, error) {
	date := input.Date
	if date == "" {
		date = env.Today()
	}
	base, err := datekey.Parse(date)
	if err != nil {
		return nil, err
	}
	return &WeekOutput{
		WeekView: board(ctx, env).Week(base, env.Today()),
		Legend:   calendar.Legend(),
	}, nil
}

func board(ctx context.Context, env *Env) *calendar.Board {
	return calendar.NewBoard(env.Ledger.All(ctx), env.Journal.All(ctx))
}
