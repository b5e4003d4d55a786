package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/serene/internal/assessment"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/kv"
)

// Snapshot is the single current assessment record. Each save overwrites
// the previous one.
type Snapshot struct {
	ID        string               `json:"id"`
	Timestamp int64                `json:"timestamp"`
	Responses assessment.Responses `json:"responses"`
	Result    assessment.Result    `json:"result"`
	Submitted bool                 `json:"submitted"`
	Date      string               `json:"date,omitempty"` // set on submit
}

// State owns the persisted snapshot. It is the only writer of
// kv.KeySnapshot; screens that show the last result read through it.
type State struct {
	store  kv.Store
	logger *zap.Logger
}

// NewState creates a State over store.
func NewState(store kv.Store, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{store: store, logger: logger}
}

// Load returns the persisted snapshot, or nil when it is absent,
// unreadable or malformed.
func (s *State) Load(ctx context.Context) *Snapshot {
	raw, ok, err := s.store.Get(ctx, kv.KeySnapshot)
	if err != nil {
		s.logger.Warn("snapshot unavailable, starting empty", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	snap, err := kv.Decode(raw, checkSnapshot)
	if err != nil {
		s.logger.Warn("discarding malformed snapshot", zap.Error(err))
		return nil
	}
	return &snap
}

// Save overwrites the persisted snapshot.
func (s *State) Save(ctx context.Context, snap *Snapshot) error {
	raw, err := kv.Encode(snap)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.store.Set(ctx, kv.KeySnapshot, raw); err != nil {
		return errors.NewStorageUnavailable("snapshot save", err)
	}
	return nil
}

// Clear removes the persisted snapshot.
func (s *State) Clear(ctx context.Context) error {
	if err := s.store.Remove(ctx, kv.KeySnapshot); err != nil {
		return errors.NewStorageUnavailable("snapshot clear", err)
	}
	return nil
}

func checkSnapshot(snap *Snapshot) error {
	for id, v := range snap.Responses {
		if _, ok := assessment.Lookup(id); !ok {
			return fmt.Errorf("unknown item id %d", id)
		}
		if !assessment.ValidAnswer(v) {
			return fmt.Errorf("item %d: answer %d out of range", id, v)
		}
	}
	return nil
}

// newAttemptID generates a ULID for a new assessment attempt.
func newAttemptID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		// crypto/rand failure; fall back to a timestamp-only ID
		return ulid.MustNew(ulid.Timestamp(now), nil).String()
	}
	return id.String()
}
