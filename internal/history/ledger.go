// Package history keeps the capped, date-keyed time series of submitted
// assessment results.
package history

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hpungsan/serene/internal/assessment"
	"github.com/hpungsan/serene/internal/datekey"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/kv"
)

// DefaultCapacity is the number of dates the ledger retains.
const DefaultCapacity = 30

// Entry is one day's final subscale scores.
type Entry struct {
	Date string `json:"date"`
	D    int    `json:"D"`
	A    int    `json:"A"`
	S    int    `json:"S"`
}

// Total is D+A+S.
func (e Entry) Total() int {
	return e.D + e.A + e.S
}

// EntryFromResult builds the entry recorded for a scored result.
func EntryFromResult(date string, r assessment.Result) Entry {
	return Entry{Date: date, D: r.D.Final, A: r.A.Final, S: r.S.Final}
}

// Ledger persists entries under kv.KeyHistory.
// It assumes a single writer; concurrent upserts are last-writer-wins.
type Ledger struct {
	store    kv.Store
	capacity int
	logger   *zap.Logger
}

// NewLedger creates a ledger over store. capacity <= 0 uses DefaultCapacity.
func NewLedger(store kv.Store, capacity int, logger *zap.Logger) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, capacity: capacity, logger: logger}
}

// Capacity returns the retention limit.
func (l *Ledger) Capacity() int {
	return l.capacity
}

// Upsert records result for date, replacing any existing entry for that
// date, then keeps only the newest Capacity entries.
// A failed read or write is returned as StorageUnavailable and is not
// retried; the stored series is never rewritten from a failed read.
func (l *Ledger) Upsert(ctx context.Context, date string, result assessment.Result) (Entry, error) {
	if err := datekey.Validate(date); err != nil {
		return Entry{}, err
	}

	entry := EntryFromResult(date, result)
	current, err := l.read(ctx)
	if err != nil {
		return entry, err
	}
	entries := Upsert(current, entry, l.capacity)

	raw, err := kv.Encode(entries)
	if err != nil {
		return Entry{}, errors.NewInternal(err)
	}
	if err := l.store.Set(ctx, kv.KeyHistory, raw); err != nil {
		return entry, errors.NewStorageUnavailable("history upsert", err)
	}

	l.logger.Debug("history entry upserted",
		zap.String("date", date),
		zap.Int("total", entry.Total()),
		zap.Int("entries", len(entries)))
	return entry, nil
}

// Get returns the entry for date.
func (l *Ledger) Get(ctx context.Context, date string) (Entry, bool, error) {
	if err := datekey.Validate(date); err != nil {
		return Entry{}, false, err
	}
	for _, e := range l.load(ctx) {
		if e.Date == date {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// All returns every entry ascending by date. The slice is owned by the caller.
func (l *Ledger) All(ctx context.Context) []Entry {
	return l.load(ctx)
}

// load reads the persisted series for display. Unreadable records read
// as empty.
func (l *Ledger) load(ctx context.Context) []Entry {
	entries, err := l.read(ctx)
	if err != nil {
		l.logger.Warn("history unavailable, treating as empty", zap.Error(err))
		return nil
	}
	return entries
}

// read reads and normalizes the persisted series. Absent or malformed
// records read as empty; a store failure is returned.
func (l *Ledger) read(ctx context.Context) ([]Entry, error) {
	raw, ok, err := l.store.Get(ctx, kv.KeyHistory)
	if err != nil {
		return nil, errors.NewStorageUnavailable("history read", err)
	}
	if !ok {
		return nil, nil
	}

	entries, err := kv.Decode(raw, checkEntries)
	if err != nil {
		l.logger.Warn("discarding malformed history record", zap.Error(err))
		return nil, nil
	}
	return Normalize(entries, l.capacity), nil
}

func checkEntries(entries *[]Entry) error {
	for i, e := range *entries {
		if err := datekey.Validate(e.Date); err != nil {
			return fmt.Errorf("entry %d: bad date %q", i, e.Date)
		}
		if e.D < 0 || e.A < 0 || e.S < 0 {
			return fmt.Errorf("entry %d: negative score", i)
		}
	}
	return nil
}

// Upsert returns entries with e inserted or replaced by date, sorted
// ascending and trimmed to the newest capacity entries. entries is not
// modified.
func Upsert(entries []Entry, e Entry, capacity int) []Entry {
	out := make([]Entry, 0, len(entries)+1)
	replaced := false
	for _, cur := range entries {
		if cur.Date == e.Date {
			cur = e
			replaced = true
		}
		out = append(out, cur)
	}
	if !replaced {
		out = append(out, e)
	}
	return Normalize(out, capacity)
}

// Normalize dedupes by date (the later occurrence wins), sorts ascending
// and drops the oldest entries beyond capacity.
func Normalize(entries []Entry, capacity int) []Entry {
	byDate := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e
	}

	out := make([]Entry, 0, len(byDate))
	for _, e := range byDate {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	if capacity > 0 && len(out) > capacity {
		out = out[len(out)-capacity:]
	}
	return out
}
