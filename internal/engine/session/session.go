package session

import (
	"io"

	"github.com/google/uuid"

	"github.com/dshills/bufcore/internal/engine/buffer"
	"github.com/dshills/bufcore/internal/engine/fold"
	"github.com/dshills/bufcore/internal/engine/tracking"
	"github.com/dshills/bufcore/internal/event"
)

// Session is the facade over one open document: the buffer holding the
// text, the change tracker, the fold registry, and the notification bus.
// Every mutation flows through here so the bookkeeping stays in lockstep:
// apply to the buffer, record the dirty region, inform the fold registry,
// publish the edit event, in that order, synchronously.
type Session struct {
	id      string
	buf     *buffer.Buffer
	tracker *tracking.Tracker
	folds   *fold.Registry
	bus     *event.Bus
}

type settings struct {
	bufferOpts  []buffer.Option
	trackerOpts []tracking.Option
}

// Option configures a Session.
type Option func(*settings)

// WithLineEnding sets the buffer's line ending style.
func WithLineEnding(le buffer.LineEnding) Option {
	return func(s *settings) {
		s.bufferOpts = append(s.bufferOpts, buffer.WithLineEnding(le))
	}
}

// WithLastEditWins makes the dirty region track only the most recent
// edit instead of the union since the last drain.
func WithLastEditWins() Option {
	return func(s *settings) {
		s.trackerOpts = append(s.trackerOpts, tracking.WithLastEditWins())
	}
}

// WithMaxChanges bounds the retained change history.
func WithMaxChanges(n int) Option {
	return func(s *settings) {
		s.trackerOpts = append(s.trackerOpts, tracking.WithMaxChanges(n))
	}
}

// New opens a session over the given initial text.
func New(text string, opts ...Option) *Session {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}

	buf := buffer.NewFromString(text, cfg.bufferOpts...)
	return &Session{
		id:      uuid.New().String(),
		buf:     buf,
		tracker: tracking.NewTracker(cfg.trackerOpts...),
		folds:   fold.NewRegistry(buf),
		bus:     event.NewBus(),
	}
}

// NewFromReader opens a session over the contents of r.
func NewFromReader(r io.Reader, opts ...Option) (*Session, error) {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}

	buf, err := buffer.NewFromReader(r, cfg.bufferOpts...)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:      uuid.New().String(),
		buf:     buf,
		tracker: tracking.NewTracker(cfg.trackerOpts...),
		folds:   fold.NewRegistry(buf),
		bus:     event.NewBus(),
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Mutations

// Insert inserts text at a byte offset.
func (s *Session) Insert(offset buffer.ByteOffset, text string) (buffer.EditResult, error) {
	result, err := s.buf.Insert(offset, text)
	if err != nil {
		return buffer.EditResult{}, err
	}
	s.afterEdit(result, text)
	return result, nil
}

// Delete removes the byte range [start, end).
func (s *Session) Delete(start, end buffer.ByteOffset) (buffer.EditResult, error) {
	result, err := s.buf.Delete(start, end)
	if err != nil {
		return buffer.EditResult{}, err
	}
	s.afterEdit(result, "")
	return result, nil
}

// Replace substitutes the byte range [start, end) with text.
func (s *Session) Replace(start, end buffer.ByteOffset, text string) (buffer.EditResult, error) {
	result, err := s.buf.Replace(start, end, text)
	if err != nil {
		return buffer.EditResult{}, err
	}
	s.afterEdit(result, text)
	return result, nil
}

// afterEdit runs the post-mutation bookkeeping. The fold registry must
// be informed before listeners so a handler querying fold state sees the
// post-edit world.
func (s *Session) afterEdit(result buffer.EditResult, newText string) {
	s.tracker.Record(result, newText)
	s.folds.OnEdit(result.StartLine, result.LineDelta, result.LineCountChanged())
	s.bus.Publish(event.Edit{
		Range:            result.NewRange,
		Line:             result.StartLine,
		LineDelta:        result.LineDelta,
		LineCountChanged: result.LineCountChanged(),
		Version:          result.Version,
	})
}

// Queries

// Text returns the full document content.
func (s *Session) Text() string {
	return s.buf.Text()
}

// TextRange returns the text in the byte range [start, end).
func (s *Session) TextRange(start, end buffer.ByteOffset) (string, error) {
	return s.buf.TextRange(start, end)
}

// Len returns the document length in bytes.
func (s *Session) Len() buffer.ByteOffset {
	return s.buf.Len()
}

// LineCount returns the number of lines.
func (s *Session) LineCount() uint32 {
	return s.buf.LineCount()
}

// LineText returns the text of a line without its newline.
func (s *Session) LineText(line uint32) (string, error) {
	return s.buf.LineText(line)
}

// LineStartOffset returns the byte offset where a line starts.
func (s *Session) LineStartOffset(line uint32) (buffer.ByteOffset, error) {
	return s.buf.LineStartOffset(line)
}

// LineAtOffset returns the line containing a byte offset.
func (s *Session) LineAtOffset(offset buffer.ByteOffset) (uint32, error) {
	return s.buf.LineAtOffset(offset)
}

// OffsetToPoint converts a byte offset to line/column.
func (s *Session) OffsetToPoint(offset buffer.ByteOffset) (buffer.Point, error) {
	return s.buf.OffsetToPoint(offset)
}

// PointToOffset converts line/column to a byte offset.
func (s *Session) PointToOffset(p buffer.Point) (buffer.ByteOffset, error) {
	return s.buf.PointToOffset(p)
}

// Snapshot returns a read-only view for background readers.
func (s *Session) Snapshot() *buffer.Snapshot {
	return s.buf.Snapshot()
}

// Change tracking

// DocumentVersion returns the current document version.
func (s *Session) DocumentVersion() buffer.Version {
	return s.buf.Version()
}

// IsDirty reports whether edits occurred since the last TakeDirtyRegion.
func (s *Session) IsDirty() bool {
	return s.tracker.IsDirty()
}

// TakeDirtyRegion drains the accumulated dirty region; the second return
// is false when nothing changed.
func (s *Session) TakeDirtyRegion() (tracking.DirtyRegion, bool) {
	return s.tracker.Take()
}

// ChangesSince returns retained changes newer than the given version.
func (s *Session) ChangesSince(v buffer.Version) []buffer.Change {
	return s.tracker.ChangesSince(v)
}

// Subscribe registers a handler for edit notifications.
func (s *Session) Subscribe(fn event.Handler) event.Subscription {
	return s.bus.Subscribe(fn)
}

// Folding

// FoldRangeAt returns the fold range opened at line, if any.
func (s *Session) FoldRangeAt(line uint32) (*fold.FoldRange, bool) {
	return s.folds.RangeForLine(line)
}

// Fold collapses the range opened at line.
func (s *Session) Fold(line uint32) bool {
	return s.folds.Fold(line)
}

// Unfold expands the folded range starting at line.
func (s *Session) Unfold(line uint32) bool {
	return s.folds.Unfold(line)
}

// FoldAll folds every top-level range.
func (s *Session) FoldAll() {
	s.folds.FoldAll()
}

// UnfoldAll unfolds everything.
func (s *Session) UnfoldAll() {
	s.folds.UnfoldAll()
}

// IsLineHidden reports whether a line is suppressed by a folded range.
func (s *Session) IsLineHidden(line uint32) bool {
	return s.folds.IsLineHidden(line)
}

// HiddenLineCount returns the number of currently hidden lines.
func (s *Session) HiddenLineCount() int {
	return s.folds.HiddenLineCount()
}

// Close releases fold state and change history. The session must not be
// used afterwards.
func (s *Session) Close() {
	s.folds.Reset()
	s.tracker.Clear()
}
