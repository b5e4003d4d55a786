// Package journal stores the daily mood journal. The tracking engine only
// reads it; entries are written by the journal editor flow.
package journal

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/serene/internal/datekey"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/kv"
)

// Mood tags a user can attach to a day.
const (
	TagHappy    = "Happy"
	TagCalm     = "Calm"
	TagGrateful = "Grateful"
	TagTired    = "Tired"
	TagSad      = "Sad"
	TagAnxious  = "Anxious"
	TagStressed = "Stressed"
	TagAngry    = "Angry"
)

// MoodTags lists the known tags in display order.
var MoodTags = []string{TagHappy, TagCalm, TagGrateful, TagTired, TagSad, TagAnxious, TagStressed, TagAngry}

// MaxMoodIntensity bounds Entry.MoodIntensity.
const MaxMoodIntensity = 10

// MaxNoteChars bounds Entry.Note.
const MaxNoteChars = 4000

// Entry is one day of the journal.
type Entry struct {
	Date          string `json:"date"`
	Note          string `json:"note"`
	MoodIntensity int    `json:"mood_intensity"`
	MoodTag       string `json:"mood_tag,omitempty"`
}

// KnownTag reports whether tag is one of MoodTags.
func KnownTag(tag string) bool {
	for _, t := range MoodTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks an entry before it is written.
func (e Entry) Validate() error {
	if err := datekey.Validate(e.Date); err != nil {
		return err
	}
	if e.MoodIntensity < 0 || e.MoodIntensity > MaxMoodIntensity {
		return errors.NewValidation("mood_intensity", fmt.Sprintf("mood_intensity must be between 0 and %d", MaxMoodIntensity))
	}
	if e.MoodTag != "" && !KnownTag(e.MoodTag) {
		return errors.NewValidation("mood_tag", fmt.Sprintf("unknown mood_tag %q (known: %s)", e.MoodTag, strings.Join(MoodTags, ", ")))
	}
	if len([]rune(e.Note)) > MaxNoteChars {
		return errors.NewValidation("note", fmt.Sprintf("note exceeds %d characters", MaxNoteChars))
	}
	return nil
}

// Book is the journal map persisted under kv.KeyJournal.
type Book struct {
	store  kv.Store
	logger *zap.Logger
}

// NewBook creates a journal over store.
func NewBook(store kv.Store, logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{store: store, logger: logger}
}

// All returns every entry keyed by date. Absent, unreadable or malformed
// records read as empty. The map is owned by the caller.
func (b *Book) All(ctx context.Context) map[string]Entry {
	entries, err := b.read(ctx)
	if err != nil {
		b.logger.Warn("journal unavailable, treating as empty", zap.Error(err))
		return map[string]Entry{}
	}
	return entries
}

// read returns the stored map. Absent or malformed records read as empty;
// a store failure is returned so writers never replace the journal with
// a partial map.
func (b *Book) read(ctx context.Context) (map[string]Entry, error) {
	raw, ok, err := b.store.Get(ctx, kv.KeyJournal)
	if err != nil {
		return nil, errors.NewStorageUnavailable("journal read", err)
	}
	if !ok {
		return map[string]Entry{}, nil
	}
	entries, err := kv.Decode(raw, checkEntries)
	if err != nil {
		b.logger.Warn("discarding malformed journal record", zap.Error(err))
		return map[string]Entry{}, nil
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	return entries, nil
}

// Get returns the entry for date.
func (b *Book) Get(ctx context.Context, date string) (Entry, bool, error) {
	if err := datekey.Validate(date); err != nil {
		return Entry{}, false, err
	}
	e, ok := b.All(ctx)[date]
	return e, ok, nil
}

// Put creates or replaces the entry for e.Date.
func (b *Book) Put(ctx context.Context, e Entry) error {
	e.Note = strings.TrimSpace(e.Note)
	if err := e.Validate(); err != nil {
		return err
	}
	entries, err := b.read(ctx)
	if err != nil {
		return err
	}
	entries[e.Date] = e
	return b.save(ctx, entries)
}

// Delete removes the entry for date. Deleting an absent entry is a no-op.
func (b *Book) Delete(ctx context.Context, date string) error {
	if err := datekey.Validate(date); err != nil {
		return err
	}
	entries, err := b.read(ctx)
	if err != nil {
		return err
	}
	if _, ok := entries[date]; !ok {
		return nil
	}
	delete(entries, date)
	return b.save(ctx, entries)
}

func (b *Book) save(ctx context.Context, entries map[string]Entry) error {
	raw, err := kv.Encode(entries)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := b.store.Set(ctx, kv.KeyJournal, raw); err != nil {
		return errors.NewStorageUnavailable("journal save", err)
	}
	return nil
}

// checkEntries rejects maps whose keys disagree with their entries or
// whose entries would not pass Validate. Unknown tags are tolerated on
// read; the calendar falls back to the score color for them.
func checkEntries(entries *map[string]Entry) error {
	for date, e := range *entries {
		if e.Date != date {
			return fmt.Errorf("key %q holds entry dated %q", date, e.Date)
		}
		if err := datekey.Validate(date); err != nil {
			return fmt.Errorf("bad date key %q", date)
		}
		if e.MoodIntensity < 0 || e.MoodIntensity > MaxMoodIntensity {
			return fmt.Errorf("entry %s: mood_intensity out of range", date)
		}
	}
	return nil
}
