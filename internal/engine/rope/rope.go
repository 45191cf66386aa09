package rope

import (
	"io"
	"strings"
)

// Rope is an immutable rope for efficient text storage.
// Operations return new Rope values; the original is never modified.
// This enables cheap snapshots and thread-safe concurrent read access.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() Rope {
	return Rope{}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return Rope{root: buildBalanced(leavesFromString(s))}
}

// FromReader creates a rope from an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	var builder Builder
	if _, err := builder.ReadFrom(r); err != nil {
		return Rope{}, err
	}
	return builder.Build(), nil
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.len()
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() uint32 {
	if r.root == nil {
		return 1
	}
	return r.root.summary.Newlines + 1
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() Summary {
	if r.root == nil {
		return Summary{}
	}
	return r.root.summary
}

// String returns the full text as a string.
// Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}

	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// Slice returns the text in the byte range [start, end).
// Bounds are clamped to the rope; callers needing strict validation do it
// one level up (see the buffer package).
func (r Rope) Slice(start, end ByteOffset) string {
	if r.root == nil {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return ""
	}

	var sb strings.Builder
	sb.Grow(int(end - start))
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// ByteAt returns the byte at the given offset.
// Returns 0 and false if offset is out of range.
func (r Rope) ByteAt(offset ByteOffset) (byte, bool) {
	if r.root == nil || offset < 0 || offset >= r.Len() {
		return 0, false
	}
	return r.root.byteAt(offset), true
}

// Insert inserts text at the given byte offset.
// Offsets outside [0, Len] are clamped. Returns a new rope.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.root == nil {
		return FromString(text)
	}
	if offset < 0 {
		offset = 0
	}
	if offset > r.Len() {
		offset = r.Len()
	}

	left, right := r.root.split(offset)
	mid := buildBalanced(leavesFromString(text))
	return Rope{root: concatNodes(concatNodes(left, mid), right)}.rebalanced()
}

// Delete removes text in the byte range [start, end).
// Bounds are clamped. Returns a new rope.
func (r Rope) Delete(start, end ByteOffset) Rope {
	if r.root == nil {
		return r
	}
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return r
	}

	left, rest := r.root.split(start)
	var right *node
	if rest != nil {
		_, right = rest.split(end - start)
	}
	return Rope{root: concatNodes(left, right)}.rebalanced()
}

// Replace replaces text in the byte range [start, end) with new text.
// Returns a new rope.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	if start >= end {
		return r.Insert(start, text)
	}
	if len(text) == 0 {
		return r.Delete(start, end)
	}
	return r.Delete(start, end).Insert(start, text)
}

// Split splits the rope at offset, returning two ropes.
// Left contains [0, offset), right contains [offset, Len).
func (r Rope) Split(offset ByteOffset) (Rope, Rope) {
	if r.root == nil || offset <= 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}

	left, right := r.root.split(offset)
	return Rope{root: left}, Rope{root: right}
}

// Concat concatenates two ropes. Returns a new rope.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil {
		return other
	}
	if other.root == nil {
		return r
	}
	return Rope{root: concatNodes(r.root, other.root)}.rebalanced()
}

// rebalanced rebuilds the tree from its leaves when an edit has pushed the
// depth past the threshold. Checking is O(1) via the cached height.
func (r Rope) rebalanced() Rope {
	if r.root == nil || !r.root.isUnbalanced() {
		return r
	}
	return Rope{root: r.root.rebuild()}
}

// Line and offset conversion.
//
// These descend the tree using the per-node newline aggregates; no
// separate line index is maintained or rescanned.

// LineStartOffset returns the byte offset of the first byte of the given
// line. Lines are 0-indexed; out-of-range lines return Len.
func (r Rope) LineStartOffset(line uint32) ByteOffset {
	if r.root == nil || line == 0 {
		return 0
	}
	if line > r.root.summary.Newlines {
		return r.Len()
	}

	n := r.root
	offset := ByteOffset(0)
	for !n.isLeaf() {
		if n.left.summary.Newlines >= line {
			n = n.left
			continue
		}
		line -= n.left.summary.Newlines
		offset += n.left.len()
		n = n.right
	}

	pos := FindNthNewline(n.text, line)
	return offset + ByteOffset(pos) + 1
}

// LineEndOffset returns the byte offset just past the last byte of the
// given line, not including its newline.
func (r Rope) LineEndOffset(line uint32) ByteOffset {
	if r.root == nil {
		return 0
	}
	if line >= r.LineCount()-1 {
		return r.Len()
	}
	return r.LineStartOffset(line+1) - 1
}

// LineText returns the text of the given line, excluding the trailing
// newline.
func (r Rope) LineText(line uint32) string {
	return r.Slice(r.LineStartOffset(line), r.LineEndOffset(line))
}

// LineLen returns the byte length of the given line, excluding its newline.
func (r Rope) LineLen(line uint32) int {
	return int(r.LineEndOffset(line) - r.LineStartOffset(line))
}

// LineAtOffset returns the line containing the given byte offset.
// Offsets at or past the end report the last line.
func (r Rope) LineAtOffset(offset ByteOffset) uint32 {
	if r.root == nil || offset <= 0 {
		return 0
	}
	if offset >= r.Len() {
		return r.LineCount() - 1
	}

	n := r.root
	line := uint32(0)
	for !n.isLeaf() {
		leftLen := n.left.len()
		if offset < leftLen {
			n = n.left
			continue
		}
		offset -= leftLen
		line += n.left.summary.Newlines
		n = n.right
	}

	return line + CountNewlines(n.text[:offset])
}

// OffsetToPoint converts a byte offset to a line/column position.
func (r Rope) OffsetToPoint(offset ByteOffset) Point {
	if r.root == nil || offset <= 0 {
		return Point{}
	}
	if offset > r.Len() {
		offset = r.Len()
	}

	line := r.LineAtOffset(offset)
	if offset == r.Len() {
		line = r.LineCount() - 1
	}
	return Point{
		Line:   line,
		Column: uint32(offset - r.LineStartOffset(line)),
	}
}

// PointToOffset converts a line/column position to a byte offset.
// Columns past the end of the line resolve to the line end.
func (r Rope) PointToOffset(point Point) ByteOffset {
	if r.root == nil {
		return 0
	}

	lineStart := r.LineStartOffset(point.Line)
	lineEnd := r.LineEndOffset(point.Line)
	if ByteOffset(point.Column) >= lineEnd-lineStart {
		return lineEnd
	}
	return lineStart + ByteOffset(point.Column)
}

// Height returns the height of the rope tree.
// Useful for testing balance; an empty rope has height 0.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}

// LeafCount returns the number of leaf nodes in the rope.
func (r Rope) LeafCount() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.leaves)
}

// Equals returns true if two ropes contain the same text.
// This compares content, not structure.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.root == nil {
		return true
	}

	iter1 := r.Leaves()
	iter2 := other.Leaves()

	// Leaves of the two ropes may be fragmented differently; compare the
	// byte streams with independent read positions.
	var s1, s2 string
	for {
		if s1 == "" {
			if !iter1.Next() {
				return s2 == "" && !iter2.Next()
			}
			s1 = iter1.Text()
		}
		if s2 == "" {
			if !iter2.Next() {
				return false
			}
			s2 = iter2.Text()
		}

		n := len(s1)
		if len(s2) < n {
			n = len(s2)
		}
		if s1[:n] != s2[:n] {
			return false
		}
		s1, s2 = s1[n:], s2[n:]
	}
}
