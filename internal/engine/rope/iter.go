package rope

import "strings"

// LeafIterator walks the rope's leaf fragments left to right.
// Iteration order concatenates to the full document text.
type LeafIterator struct {
	stack   []*node
	current *node
}

// Leaves returns an iterator over the rope's leaf fragments.
func (r Rope) Leaves() *LeafIterator {
	it := &LeafIterator{}
	if r.root != nil {
		it.stack = append(it.stack, r.root)
	}
	return it
}

// Next advances to the next leaf. Returns false when exhausted.
func (it *LeafIterator) Next() bool {
	for len(it.stack) > 0 {
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		if n.isLeaf() {
			it.current = n
			return true
		}
		// Push right first so left is visited first.
		it.stack = append(it.stack, n.right, n.left)
	}

	it.current = nil
	return false
}

// Text returns the current leaf's fragment.
func (it *LeafIterator) Text() string {
	if it.current == nil {
		return ""
	}
	return it.current.text
}

// LineIterator yields the rope's lines in order, without trailing
// newlines. A trailing newline in the document yields a final empty line,
// matching LineCount.
type LineIterator struct {
	leaves  *LeafIterator
	pending string
	partial strings.Builder
	line    uint32
	current string
	done    bool
	started bool
}

// Lines returns an iterator over the rope's lines.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{leaves: r.Leaves()}
}

// Next advances to the next line. Returns false when exhausted.
func (it *LineIterator) Next() bool {
	if it.done {
		return false
	}
	if it.started {
		it.line++
	}
	it.started = true

	for {
		if idx := strings.IndexByte(it.pending, '\n'); idx >= 0 {
			it.partial.WriteString(it.pending[:idx])
			it.pending = it.pending[idx+1:]
			it.current = it.partial.String()
			it.partial.Reset()
			return true
		}

		it.partial.WriteString(it.pending)
		it.pending = ""

		if !it.leaves.Next() {
			// Final line (possibly empty after a trailing newline).
			it.current = it.partial.String()
			it.partial.Reset()
			it.done = true
			return true
		}
		it.pending = it.leaves.Text()
	}
}

// Text returns the current line's text.
func (it *LineIterator) Text() string {
	return it.current
}

// Line returns the current 0-indexed line number.
func (it *LineIterator) Line() uint32 {
	return it.line
}
