// Package session implements the response collector: the in-progress
// answer set, resumable navigation over the catalog, and submission.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/serene/internal/assessment"
	"github.com/hpungsan/serene/internal/datekey"
	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/history"
)

// Status is the collector's lifecycle state.
type Status string

const (
	StatusEmpty      Status = "empty"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// DefaultExpandSection is the result-page section hosts are asked to open
// after a submit.
const DefaultExpandSection = "insights"

// Completed is the navigation intent raised after a successful submit.
// Hosts decide how to navigate; the collector never does.
type Completed struct {
	AttemptID     string            `json:"attempt_id"`
	Date          string            `json:"date"`
	Result        assessment.Result `json:"result"`
	Entry         history.Entry     `json:"entry"`
	ExpandSection string            `json:"expand_section,omitempty"`
	Persisted     bool              `json:"persisted"`
}

// Notifier receives completion intents.
type Notifier interface {
	Notify(ctx context.Context, c Completed)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, c Completed)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, c Completed) { f(ctx, c) }

// Options configures a Collector. Every field is optional.
type Options struct {
	// Ledger receives an entry on submit. Nil skips history.
	Ledger *history.Ledger
	// Notifier receives the Completed intent.
	Notifier Notifier
	// ExpandSection is carried on Completed. Empty uses DefaultExpandSection.
	ExpandSection string
	Logger        *zap.Logger
	Now           func() time.Time
}

// Progress describes the collector at a point in time.
type Progress struct {
	Status    Status          `json:"status"`
	AttemptID string          `json:"attempt_id,omitempty"`
	Cursor    int             `json:"cursor"`
	Item      assessment.Item `json:"item"`
	Value     *int            `json:"value,omitempty"`
	Touched   bool            `json:"touched"`
	Answered  int             `json:"answered"`
	Total     int             `json:"total"`
	Degraded  bool            `json:"degraded,omitempty"`
}

// Collector holds one user's in-progress assessment. The mutex lets a
// long-lived host share one collector across requests; it does not make
// multiple users safe.
type Collector struct {
	mu sync.Mutex

	state    *State
	ledger   *history.Ledger
	notifier Notifier
	expand   string
	logger   *zap.Logger
	now      func() time.Time

	attemptID string
	responses assessment.Responses
	touched   map[int]bool
	cursor    int
	submitted bool
	degraded  bool
}

// NewCollector creates an empty collector. state may be nil, in which case
// nothing is persisted.
func NewCollector(state *State, opts Options) *Collector {
	c := &Collector{
		state:    state,
		ledger:   opts.Ledger,
		notifier: opts.Notifier,
		expand:   opts.ExpandSection,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if c.expand == "" {
		c.expand = DefaultExpandSection
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.reset()
	return c
}

func (c *Collector) reset() {
	c.attemptID = ""
	c.responses = assessment.Responses{}
	c.touched = map[int]bool{}
	c.cursor = 0
	c.submitted = false
}

// Resume hydrates the collector from the persisted snapshot, if any.
func (c *Collector) Resume(ctx context.Context) Progress {
	var snap *Snapshot
	if c.state != nil {
		snap = c.state.Load(ctx)
	}
	return c.Load(snap)
}

// Load hydrates from snap without marking any item touched and positions
// the cursor at the first unanswered item (the last item when complete).
// A nil snapshot leaves the collector empty.
func (c *Collector) Load(snap *Snapshot) Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	if snap != nil {
		c.attemptID = snap.ID
		c.responses = snap.Responses.Clone()
		c.submitted = snap.Submitted
	}
	c.cursor = c.responses.FirstUnanswered()
	if c.cursor < 0 {
		c.cursor = assessment.ItemCount - 1
	}
	return c.progressLocked()
}

// Answer stores value for itemID and autosaves the intermediate snapshot.
// Re-selecting the stored value skips the write but still counts as
// reconfirming the item for this session. It reports whether the stored
// value changed.
func (c *Collector) Answer(ctx context.Context, itemID, value int) (bool, error) {
	if _, ok := assessment.Lookup(itemID); !ok {
		return false, errors.NewValidation("item_id", fmt.Sprintf("item_id must be between 1 and %d", assessment.ItemCount))
	}
	if !assessment.ValidAnswer(value) {
		return false, errors.NewValidation("value", fmt.Sprintf("answer must be between %d and %d", assessment.MinAnswer, assessment.MaxAnswer))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.touched[itemID] = true
	if cur, ok := c.responses[itemID]; ok && cur == value {
		return false, nil
	}

	if c.attemptID == "" || c.submitted {
		c.attemptID = newAttemptID(c.now())
	}
	c.submitted = false
	c.responses[itemID] = value
	c.autosaveLocked(ctx)
	return true, nil
}

func (c *Collector) autosaveLocked(ctx context.Context) {
	if c.state == nil {
		return
	}
	snap := c.snapshotLocked()
	if err := c.state.Save(ctx, snap); err != nil {
		c.degradeLocked("autosave", err)
		return
	}
	c.recoverLocked("autosave")
}

func (c *Collector) degradeLocked(op string, err error) {
	if !c.degraded {
		c.logger.Warn("persistence failed, continuing without it",
			zap.String("op", op), zap.Error(err))
	}
	c.degraded = true
}

func (c *Collector) recoverLocked(op string) {
	if c.degraded {
		c.logger.Info("persistence recovered", zap.String("op", op))
	}
	c.degraded = false
}

// Advance moves the cursor forward. The current item must have been
// answered or reconfirmed during this session; a resumed answer alone does
// not qualify. At the last item Advance is a no-op.
func (c *Collector) Advance() (Progress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, _ := assessment.ItemAt(c.cursor)
	if !c.touched[item.ID] {
		return c.progressLocked(), errors.NewValidation("item_id",
			fmt.Sprintf("item %d must be answered before moving on", item.ID))
	}
	if c.cursor < assessment.ItemCount-1 {
		c.cursor++
	}
	return c.progressLocked(), nil
}

// Retreat moves the cursor back, stopping at the first item.
func (c *Collector) Retreat() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor > 0 {
		c.cursor--
	}
	return c.progressLocked()
}

// Retake discards all answers and the persisted snapshot.
func (c *Collector) Retake(ctx context.Context) Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	if c.state != nil {
		if err := c.state.Clear(ctx); err != nil {
			c.degradeLocked("retake", err)
		} else {
			c.recoverLocked("retake")
		}
	}
	return c.progressLocked()
}

// Submit scores the completed answer set, overwrites the snapshot, upserts
// the history entry for date and raises the Completed intent. An empty
// date means today. Storage failures are logged and reported through
// Completed.Persisted rather than failing the submit.
func (c *Collector) Submit(ctx context.Context, date string) (Completed, error) {
	done, err := c.submit(ctx, date)
	if err != nil {
		return Completed{}, err
	}
	if c.notifier != nil {
		c.notifier.Notify(ctx, done)
	}
	return done, nil
}

func (c *Collector) submit(ctx context.Context, date string) (Completed, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if date == "" {
		date = datekey.Today(c.now())
	}
	if err := datekey.Validate(date); err != nil {
		return Completed{}, err
	}
	if !c.responses.Complete() {
		return Completed{}, errors.NewNotReady(c.responses.Answered(), assessment.ItemCount)
	}

	if c.attemptID == "" {
		c.attemptID = newAttemptID(c.now())
	}
	result := assessment.Score(c.responses)
	c.submitted = true
	persisted := true

	if c.state != nil {
		snap := c.snapshotLocked()
		snap.Date = date
		if err := c.state.Save(ctx, snap); err != nil {
			c.degradeLocked("submit snapshot", err)
			persisted = false
		} else {
			c.recoverLocked("submit snapshot")
		}
	}

	entry := history.EntryFromResult(date, result)
	if c.ledger != nil {
		if _, err := c.ledger.Upsert(ctx, date, result); err != nil {
			c.degradeLocked("history upsert", err)
			persisted = false
		}
	}

	done := Completed{
		AttemptID:     c.attemptID,
		Date:          date,
		Result:        result,
		Entry:         entry,
		ExpandSection: c.expand,
		Persisted:     persisted,
	}
	c.logger.Info("assessment submitted",
		zap.String("attempt_id", c.attemptID),
		zap.String("date", date),
		zap.Int("depression", result.D.Final),
		zap.Int("anxiety", result.A.Final),
		zap.Int("stress", result.S.Final),
		zap.Bool("persisted", persisted))
	return done, nil
}

// Status returns the lifecycle state.
func (c *Collector) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Collector) statusLocked() Status {
	switch {
	case len(c.responses) == 0:
		return StatusEmpty
	case c.responses.Complete():
		return StatusComplete
	default:
		return StatusInProgress
	}
}

// Progress returns the current position and counts.
func (c *Collector) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

func (c *Collector) progressLocked() Progress {
	item, _ := assessment.ItemAt(c.cursor)
	p := Progress{
		Status:    c.statusLocked(),
		AttemptID: c.attemptID,
		Cursor:    c.cursor,
		Item:      item,
		Touched:   c.touched[item.ID],
		Answered:  c.responses.Answered(),
		Total:     assessment.ItemCount,
		Degraded:  c.degraded,
	}
	if v, ok := c.responses[item.ID]; ok {
		p.Value = &v
	}
	return p
}

// Responses returns a copy of the current answers.
func (c *Collector) Responses() assessment.Responses {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.responses.Clone()
}

// Snapshot returns the current in-memory snapshot, scored over the answers
// given so far.
func (c *Collector) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Collector) snapshotLocked() *Snapshot {
	return &Snapshot{
		ID:        c.attemptID,
		Timestamp: c.now().Unix(),
		Responses: c.responses.Clone(),
		Result:    assessment.Score(c.responses),
		Submitted: c.submitted,
	}
}
