// Package calendar derives the monthly and weekly mood calendar from the
// history ledger and the journal. Everything here is a pure function of
// its inputs; callers load both series and pass them in.
package calendar

import (
	"fmt"
	"time"

	"github.com/hpungsan/serene/internal/datekey"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/history"
	"github.com/hpungsan/serene/internal/journal"
)

// Cells is the size of a month matrix: six Sunday-first weeks.
const Cells = 42

// Day is one in-month cell of a month matrix.
type Day struct {
	Date   string `json:"date"`
	Number int    `json:"day"`
}

// MonthMatrix lays month out over 42 Sunday-first cells. Cells before the
// first and after the last day of the month are nil.
func MonthMatrix(year int, month time.Month) ([Cells]*Day, error) {
	var cells [Cells]*Day
	if month < time.January || month > time.December {
		return cells, errors.NewValidation("month", "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return cells, errors.NewValidation("year", "year must be between 1 and 9999")
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday())
	days := first.AddDate(0, 1, -1).Day()
	for d := 1; d <= days; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		cells[lead+d-1] = &Day{Date: date.Format(datekey.Layout), Number: d}
	}
	return cells, nil
}

// WeekDay is one day of a week strip.
type WeekDay struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Number  int    `json:"day"`
	Month   string `json:"month"`
	Year    int    `json:"year"`
}

// WeekDates returns the Sunday-first week containing base.
func WeekDates(base time.Time) [7]WeekDay {
	day := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC)
	sunday := day.AddDate(0, 0, -int(day.Weekday()))

	var week [7]WeekDay
	for i := range week {
		d := sunday.AddDate(0, 0, i)
		week[i] = WeekDay{
			Date:    d.Format(datekey.Layout),
			Weekday: d.Weekday().String()[:3],
			Number:  d.Day(),
			Month:   d.Month().String()[:3],
			Year:    d.Year(),
		}
	}
	return week
}

// FormatWeekRange labels a week strip. Within one month it is
// "Jan 5–11, 2025"; across months "Jan 29 – Feb 4, 2025"; across years
// "Dec 29, 2024 – Jan 4, 2025".
func FormatWeekRange(week [7]WeekDay) string {
	first, last := week[0], week[6]
	switch {
	case first.Year != last.Year:
		return fmt.Sprintf("%s %d, %d – %s %d, %d", first.Month, first.Number, first.Year, last.Month, last.Number, last.Year)
	case first.Month != last.Month:
		return fmt.Sprintf("%s %d – %s %d, %d", first.Month, first.Number, last.Month, last.Number, last.Year)
	default:
		return fmt.Sprintf("%s %d–%d, %d", first.Month, first.Number, last.Number, last.Year)
	}
}

// Board indexes both data layers by date for rendering.
type Board struct {
	scores  map[string]history.Entry
	journal map[string]journal.Entry
}

// NewBoard builds a board over a history series and a journal map. Either
// may be empty or nil.
func NewBoard(entries []history.Entry, notes map[string]journal.Entry) *Board {
	b := &Board{
		scores:  make(map[string]history.Entry, len(entries)),
		journal: make(map[string]journal.Entry, len(notes)),
	}
	for _, e := range entries {
		b.scores[e.Date] = e
	}
	for date, e := range notes {
		b.journal[date] = e
	}
	return b
}

// CellColor returns the color for date. A known journal mood tag replaces
// the score color outright.
func (b *Board) CellColor(date string) Color {
	if e, ok := b.journal[date]; ok && e.MoodTag != "" {
		if c, ok := TagColor(e.MoodTag); ok {
			return c
		}
	}
	e, ok := b.scores[date]
	if !ok {
		return ScoreColor(0, false)
	}
	return ScoreColor(e.Total(), true)
}

// Cell is a rendered calendar cell.
type Cell struct {
	Date     string         `json:"date"`
	Day      int            `json:"day"`
	Weekday  string         `json:"weekday,omitempty"`
	Color    Color          `json:"color"`
	Total    *int           `json:"total,omitempty"`
	Scores   *history.Entry `json:"scores,omitempty"`
	Journal  *journal.Entry `json:"journal,omitempty"`
	Today    bool           `json:"today,omitempty"`
	Selected bool           `json:"selected,omitempty"`
}

func (b *Board) cell(date string, day int) Cell {
	c := Cell{Date: date, Day: day, Color: b.CellColor(date)}
	if e, ok := b.scores[date]; ok {
		total := e.Total()
		c.Total = &total
		c.Scores = &e
	}
	if j, ok := b.journal[date]; ok {
		c.Journal = &j
	}
	return c
}

// MonthView is a month matrix with every in-month cell resolved.
type MonthView struct {
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	Title    string    `json:"title"`
	Weekdays []string  `json:"weekdays"`
	Weeks    [][]*Cell `json:"weeks"`
	Prev     string    `json:"prev"` // YYYY-MM
	Next     string    `json:"next"`
}

// Weekdays are the Sunday-first column headers.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Month renders the month matrix for year/month. today marks the matching
// cell, if it falls in the month.
func (b *Board) Month(year int, month time.Month, today string) (*MonthView, error) {
	matrix, err := MonthMatrix(year, month)
	if err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	v := &MonthView{
		Year:     year,
		Month:    int(month),
		Title:    fmt.Sprintf("%s %d", month, year),
		Weekdays: Weekdays,
		Prev:     first.AddDate(0, -1, 0).Format("2006-01"),
		Next:     first.AddDate(0, 1, 0).Format("2006-01"),
	}
	for w := 0; w < Cells/7; w++ {
		row := make([]*Cell, 7)
		for d := 0; d < 7; d++ {
			day := matrix[w*7+d]
			if day == nil {
				continue
			}
			c := b.cell(day.Date, day.Number)
			c.Today = day.Date == today
			row[d] = &c
		}
		v.Weeks = append(v.Weeks, row)
	}
	return v, nil
}

// WeekView is a resolved week strip.
type WeekView struct {
	Label string `json:"label"`
	Days  []Cell `json:"days"`
	Prev  string `json:"prev"` // a date in the previous week
	Next  string `json:"next"`
}

// Week renders the Sunday-first week containing base. The base day is
// marked selected.
func (b *Board) Week(base time.Time, today string) WeekView {
	week := WeekDates(base)
	baseKey := datekey.Format(base)

	v := WeekView{
		Label: FormatWeekRange(week),
		Prev:  datekey.Format(base.AddDate(0, 0, -7)),
		Next:  datekey.Format(base.AddDate(0, 0, 7)),
	}
	for _, d := range week {
		c := b.cell(d.Date, d.Number)
		c.Weekday = d.Weekday
		c.Today = d.Date == today
		c.Selected = d.Date == baseKey
		v.Days = append(v.Days, c)
	}
	return v
}
