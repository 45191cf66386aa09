package tracking

import (
	"sync"

	"github.com/dshills/bufcore/internal/engine/buffer"
)

// DefaultMaxChanges is the default capacity of the change ring.
const DefaultMaxChanges = 1024

// DirtyRegion is the contiguous span of the document that has been
// modified since the tracker was last drained. Range covers each edit's
// pre-edit and post-edit extents, so a pure delete still reports the
// span the removed text occupied and a consumer re-processing the range
// never misses changed content. Line is the first affected line.
type DirtyRegion struct {
	Range buffer.Range
	Line  uint32
}

// MergePolicy controls how successive edits combine into the dirty region.
type MergePolicy uint8

const (
	// MergeUnion extends the dirty region to cover every edit since the
	// last Take. The default.
	MergeUnion MergePolicy = iota
	// MergeLastEditWins keeps only the most recent edit's region.
	MergeLastEditWins
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithMaxChanges sets the capacity of the change ring. Must be applied
// at construction; values below 1 are ignored.
func WithMaxChanges(n int) Option {
	return func(t *Tracker) {
		if n < 1 {
			return
		}
		t.maxChanges = n
		t.changes = make([]buffer.Change, n)
	}
}

// WithLastEditWins makes the dirty region track only the most recent
// edit instead of the union of all edits since the last Take.
func WithLastEditWins() Option {
	return func(t *Tracker) {
		t.policy = MergeLastEditWins
	}
}

// Tracker accumulates buffer edits into a dirty region and a bounded
// change history. It starts clean; the first Record transitions it to
// dirty, and Take drains the region and returns it to clean.
type Tracker struct {
	mu sync.RWMutex

	dirty   bool
	region  DirtyRegion
	policy  MergePolicy
	version buffer.Version

	changes    []buffer.Change
	head       int
	count      int
	maxChanges int
}

// NewTracker creates a clean tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		maxChanges: DefaultMaxChanges,
		changes:    make([]buffer.Change, DefaultMaxChanges),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record folds an applied edit into the dirty region and appends its
// Change record to the ring.
func (t *Tracker) Record(result buffer.EditResult, newText string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dirty || t.policy == MergeLastEditWins {
		t.region = DirtyRegion{Range: editSpan(result), Line: result.StartLine}
		t.dirty = true
	} else {
		t.mergeLocked(result)
	}

	if result.Version > t.version {
		t.version = result.Version
	}

	t.appendChangeLocked(buffer.FromEditResult(result, newText))
}

// editSpan returns the dirty span of one edit: the union of the range
// it replaced and the range it produced. For inserts that is the new
// text, for deletes the removed span, for replaces whichever is wider.
func editSpan(result buffer.EditResult) buffer.Range {
	return result.OldRange.Union(result.NewRange)
}

// mergeLocked extends the current dirty region to cover a new edit.
// An edit landing before the stored span shifts it by the edit's byte
// delta so the accumulated region keeps tracking the same content.
func (t *Tracker) mergeLocked(result buffer.EditResult) {
	region := t.region.Range
	switch {
	case result.OldRange.End <= region.Start:
		region = region.Shift(result.Delta)
	case result.OldRange.Start < region.End:
		// Overlapping edit: the tail of the region moves by the delta.
		region.End += result.Delta
		if region.End < region.Start {
			region.End = region.Start
		}
	}

	t.region.Range = region.Union(editSpan(result))
	if result.StartLine < t.region.Line {
		t.region.Line = result.StartLine
	}
}

func (t *Tracker) appendChangeLocked(change buffer.Change) {
	idx := (t.head + t.count) % t.maxChanges
	if t.count < t.maxChanges {
		t.count++
	} else {
		t.head = (t.head + 1) % t.maxChanges
	}
	t.changes[idx] = change
}

// Take returns the accumulated dirty region and resets the tracker to
// clean. The second return is false when nothing changed since the
// last call.
func (t *Tracker) Take() (DirtyRegion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dirty {
		return DirtyRegion{}, false
	}
	region := t.region
	t.dirty = false
	t.region = DirtyRegion{}
	return region, true
}

// Peek returns the current dirty region without clearing it.
func (t *Tracker) Peek() (DirtyRegion, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.region, t.dirty
}

// IsDirty reports whether any edits were recorded since the last Take.
func (t *Tracker) IsDirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dirty
}

// Version returns the highest document version recorded so far.
func (t *Tracker) Version() buffer.Version {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// IsStale reports whether the given version predates the latest
// recorded edit. Asynchronous consumers use this to discard results
// computed against an old document state.
func (t *Tracker) IsStale(v buffer.Version) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return v < t.version
}

// ChangesSince returns all retained changes with a version greater
// than v, in chronological order. Changes evicted from the ring are
// not recoverable.
func (t *Tracker) ChangesSince(v buffer.Version) []buffer.Change {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []buffer.Change
	for i := 0; i < t.count; i++ {
		c := t.changes[(t.head+i)%t.maxChanges]
		if c.Version > v {
			result = append(result, c)
		}
	}
	return result
}

// LatestChanges returns the most recent n changes in chronological order.
func (t *Tracker) LatestChanges(n int) []buffer.Change {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > t.count {
		n = t.count
	}
	if n <= 0 {
		return nil
	}

	result := make([]buffer.Change, n)
	start := t.count - n
	for i := 0; i < n; i++ {
		result[i] = t.changes[(t.head+start+i)%t.maxChanges]
	}
	return result
}

// ChangeCount returns the number of retained changes.
func (t *Tracker) ChangeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Clear drops the dirty region and all retained changes. The recorded
// version is kept so staleness checks stay valid.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dirty = false
	t.region = DirtyRegion{}
	t.head = 0
	t.count = 0
}
