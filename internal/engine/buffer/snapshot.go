package buffer

import (
	"github.com/dshills/bufcore/internal/engine/rope"
)

// Snapshot provides a read-only view of a buffer at a specific version.
// It is safe for concurrent access and never changes, even while the
// original buffer continues to be edited: structural sharing in the rope
// means the snapshot holds a consistent prior tree for free.
type Snapshot struct {
	rope       rope.Rope
	version    Version
	lineEnding LineEnding
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// TextRange returns the text in the byte range [start, end), clamped to
// the snapshot bounds.
func (s *Snapshot) TextRange(start, end ByteOffset) string {
	return s.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end))
}

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() ByteOffset {
	return int64(s.rope.Len())
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() uint32 {
	return s.rope.LineCount()
}

// LineText returns the text of a specific line, without its newline.
// Out-of-range lines return "".
func (s *Snapshot) LineText(line uint32) string {
	if line >= s.rope.LineCount() {
		return ""
	}
	return s.rope.LineText(line)
}

// LineStartOffset returns the byte offset of the start of a line.
func (s *Snapshot) LineStartOffset(line uint32) ByteOffset {
	return int64(s.rope.LineStartOffset(line))
}

// LineEndOffset returns the byte offset of the end of a line's content.
func (s *Snapshot) LineEndOffset(line uint32) ByteOffset {
	return int64(s.rope.LineEndOffset(line))
}

// LineAtOffset returns the line containing the given byte offset.
func (s *Snapshot) LineAtOffset(offset ByteOffset) uint32 {
	return s.rope.LineAtOffset(rope.ByteOffset(offset))
}

// OffsetToPoint converts a byte offset to line/column.
func (s *Snapshot) OffsetToPoint(offset ByteOffset) Point {
	p := s.rope.OffsetToPoint(rope.ByteOffset(offset))
	return Point{Line: p.Line, Column: p.Column}
}

// PointToOffset converts line/column to a byte offset.
func (s *Snapshot) PointToOffset(point Point) ByteOffset {
	p := rope.Point{Line: point.Line, Column: point.Column}
	return int64(s.rope.PointToOffset(p))
}

// Version returns the document version this snapshot was taken at.
func (s *Snapshot) Version() Version {
	return s.version
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return s.rope.IsEmpty()
}

// LineEnding returns the snapshot's line ending style.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// Lines returns an iterator over all lines in the snapshot.
func (s *Snapshot) Lines() *rope.LineIterator {
	return s.rope.Lines()
}

// Leaves returns an iterator over the snapshot's text fragments.
func (s *Snapshot) Leaves() *rope.LeafIterator {
	return s.rope.Leaves()
}
