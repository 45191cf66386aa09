package buffer

import (
	"errors"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/bufcore/internal/engine/rope"
)

// Errors returned by buffer operations. Invalid arguments are programming
// errors at the call site; the buffer fails fast rather than clamping.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrLineOutOfRange   = errors.New("line out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap or are not in reverse order")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer wraps a Rope with validation, line-ending normalization, and
// document versioning. It is the authoritative owner of document text.
// All methods are thread-safe: one writer, parallel readers.
type Buffer struct {
	mu         sync.RWMutex
	rope       rope.Rope
	version    Version
	lineEnding LineEnding
}

// New creates a new empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		rope:       rope.New(),
		lineEnding: LineEndingLF,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromString creates a buffer with initial content.
// The content is normalized to the buffer's line ending style.
func NewFromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.rope = rope.FromString(b.normalizeLineEndings(s))
	return b
}

// NewFromReader creates a buffer from an io.Reader.
func NewFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	b := New(opts...)

	// Read everything before normalizing: CRLF sequences may straddle
	// read boundaries.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	b.rope = rope.FromString(b.normalizeLineEndings(string(data)))
	return b, nil
}

// normalizeLineEndings converts all line endings to the buffer's style.
// Normalization happens once at ingestion; after that, offsets address the
// normalized text and '\r' is an ordinary byte.
func (b *Buffer) normalizeLineEndings(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if seq := b.lineEnding.Sequence(); seq != "\n" {
		s = strings.ReplaceAll(s, "\n", seq)
	}
	return s
}

// Read Operations

// Text returns the full buffer content as a string.
// For large buffers, prefer TextRange or a snapshot's iterators.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// TextRange returns the text in the byte range [start, end).
func (b *Buffer) TextRange(start, end ByteOffset) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if start < 0 || start > end || end > int64(b.rope.Len()) {
		return "", ErrRangeInvalid
	}
	return b.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end)), nil
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int64(b.rope.Len())
}

// LineCount returns the number of lines (newlines + 1).
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineCount()
}

// LineText returns the text of a specific line, without its newline.
func (b *Buffer) LineText(line uint32) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if line >= b.rope.LineCount() {
		return "", ErrLineOutOfRange
	}
	return b.rope.LineText(line), nil
}

// LineLen returns the byte length of a specific line, without its newline.
func (b *Buffer) LineLen(line uint32) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if line >= b.rope.LineCount() {
		return 0, ErrLineOutOfRange
	}
	return b.rope.LineLen(line), nil
}

// LineStartOffset returns the byte offset of the first byte of a line.
func (b *Buffer) LineStartOffset(line uint32) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if line >= b.rope.LineCount() {
		return 0, ErrLineOutOfRange
	}
	return int64(b.rope.LineStartOffset(line)), nil
}

// LineEndOffset returns the byte offset just past a line's content,
// not including its newline.
func (b *Buffer) LineEndOffset(line uint32) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if line >= b.rope.LineCount() {
		return 0, ErrLineOutOfRange
	}
	return int64(b.rope.LineEndOffset(line)), nil
}

// LineAtOffset returns the line containing the given byte offset.
// An offset equal to Len reports the last line.
func (b *Buffer) LineAtOffset(offset ByteOffset) (uint32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 || offset > int64(b.rope.Len()) {
		return 0, ErrOffsetOutOfRange
	}
	return b.rope.LineAtOffset(rope.ByteOffset(offset)), nil
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.ByteAt(rope.ByteOffset(offset))
}

// RuneAt returns the rune at the given byte offset.
// Returns utf8.RuneError and size 0 if offset is out of range.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ropeLen := int64(b.rope.Len())
	if offset < 0 || offset >= ropeLen {
		return utf8.RuneError, 0
	}

	end := offset + utf8.UTFMax
	if end > ropeLen {
		end = ropeLen
	}
	s := b.rope.Slice(rope.ByteOffset(offset), rope.ByteOffset(end))
	return utf8.DecodeRuneInString(s)
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) (Point, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 || offset > int64(b.rope.Len()) {
		return Point{}, ErrOffsetOutOfRange
	}
	p := b.rope.OffsetToPoint(rope.ByteOffset(offset))
	return Point{Line: p.Line, Column: p.Column}, nil
}

// PointToOffset converts line/column to a byte offset.
// Columns past the end of the line resolve to the line end.
func (b *Buffer) PointToOffset(point Point) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if point.Line >= b.rope.LineCount() {
		return 0, ErrLineOutOfRange
	}
	p := rope.Point{Line: point.Line, Column: point.Column}
	return int64(b.rope.PointToOffset(p)), nil
}

// OffsetToPointUTF16 converts a byte offset to a UTF-16 line/column.
func (b *Buffer) OffsetToPointUTF16(offset ByteOffset) (PointUTF16, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 || offset > int64(b.rope.Len()) {
		return PointUTF16{}, ErrOffsetOutOfRange
	}

	point := b.rope.OffsetToPoint(rope.ByteOffset(offset))
	lineStart := b.rope.LineStartOffset(point.Line)
	lineText := b.rope.Slice(lineStart, rope.ByteOffset(offset))

	return PointUTF16{Line: point.Line, Column: utf16ColumnFromString(lineText)}, nil
}

// PointUTF16ToOffset converts a UTF-16 line/column to a byte offset.
func (b *Buffer) PointUTF16ToOffset(point PointUTF16) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if point.Line >= b.rope.LineCount() {
		return 0, ErrLineOutOfRange
	}

	lineStart := b.rope.LineStartOffset(point.Line)
	lineEnd := b.rope.LineEndOffset(point.Line)
	lineText := b.rope.Slice(lineStart, lineEnd)

	return int64(lineStart) + int64(byteOffsetFromUTF16Column(lineText, point.Column)), nil
}

// Clamping conveniences for UI-facing callers (e.g. converting a pointer
// position). These are the documented exceptions to the fail-fast rule.

// ClampOffset clamps an offset into [0, Len].
func (b *Buffer) ClampOffset(offset ByteOffset) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 {
		return 0
	}
	if l := int64(b.rope.Len()); offset > l {
		return l
	}
	return offset
}

// ClampLine clamps a line number into [0, LineCount-1].
func (b *Buffer) ClampLine(line uint32) uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if last := b.rope.LineCount() - 1; line > last {
		return last
	}
	return line
}

// Write Operations

// Insert inserts text at the given offset.
func (b *Buffer) Insert(offset ByteOffset, text string) (EditResult, error) {
	return b.ApplyEdit(NewInsert(offset, text))
}

// Delete removes text in the half-open range [start, end).
func (b *Buffer) Delete(start, end ByteOffset) (EditResult, error) {
	return b.ApplyEdit(NewDelete(start, end))
}

// Replace replaces text in the given range with new text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (EditResult, error) {
	return b.ApplyEdit(Edit{Range: Range{Start: start, End: end}, NewText: text})
}

// ApplyEdit applies a single edit to the buffer.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyEditLocked(edit)
}

// applyEditLocked performs the edit; the write lock must be held.
func (b *Buffer) applyEditLocked(edit Edit) (EditResult, error) {
	if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End ||
		edit.Range.End > int64(b.rope.Len()) {
		return EditResult{}, ErrRangeInvalid
	}

	start := rope.ByteOffset(edit.Range.Start)
	end := rope.ByteOffset(edit.Range.End)
	text := b.normalizeLineEndings(edit.NewText)

	oldText := b.rope.Slice(start, end)
	startLine := b.rope.LineAtOffset(start)
	oldNewlines := b.rope.Summary().Newlines

	b.rope = b.rope.Replace(start, end, text)
	b.version++

	return EditResult{
		OldRange:  edit.Range,
		NewRange:  Range{Start: edit.Range.Start, End: edit.Range.Start + int64(len(text))},
		OldText:   oldText,
		Delta:     int64(len(text)) - edit.Range.Len(),
		StartLine: startLine,
		LineDelta: int32(b.rope.Summary().Newlines) - int32(oldNewlines),
		Version:   b.version,
	}, nil
}

// ApplyEdits applies multiple edits atomically.
// Edits must be in reverse order (highest offset first) so earlier edits
// do not invalidate later offsets. The whole batch bumps the version once.
func (b *Buffer) ApplyEdits(edits []Edit) ([]EditResult, error) {
	if len(edits) == 0 {
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return nil, ErrEditsOverlap
		}
	}
	ropeLen := int64(b.rope.Len())
	for _, edit := range edits {
		if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End ||
			edit.Range.End > ropeLen {
			return nil, ErrRangeInvalid
		}
	}

	// The whole batch is a single mutation from the version counter's
	// point of view.
	batchVersion := b.version + 1

	results := make([]EditResult, 0, len(edits))
	for _, edit := range edits {
		result, err := b.applyEditLocked(edit)
		if err != nil {
			return nil, err
		}
		b.version = batchVersion
		result.Version = batchVersion
		results = append(results, result)
	}

	return results, nil
}

// Buffer State

// Version returns the current document version.
func (b *Buffer) Version() Version {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.IsEmpty()
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access; later edits never affect it because rope
// nodes are immutable and structurally shared.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &Snapshot{
		rope:       b.rope,
		version:    b.version,
		lineEnding: b.lineEnding,
	}
}

// Helper functions for UTF-16 conversion.

// utf16ColumnFromString counts UTF-16 code units in a string.
func utf16ColumnFromString(s string) uint32 {
	var col uint32
	for _, r := range s {
		if r >= 0x10000 {
			col += 2 // surrogate pair
		} else {
			col++
		}
	}
	return col
}

// byteOffsetFromUTF16Column converts a UTF-16 column to a byte offset
// within a line.
func byteOffsetFromUTF16Column(line string, utf16Col uint32) int {
	var col uint32
	var byteOffset int

	for _, r := range line {
		if col >= utf16Col {
			break
		}
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		byteOffset += utf8.RuneLen(r)
	}

	return byteOffset
}
