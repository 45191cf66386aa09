package fold

import "sync"

type cachedRange struct {
	r  *FoldRange
	ok bool
}

// Registry owns every FoldRange for one document. Detection results are
// cached per start line (including negative results) and invalidated by
// OnEdit; fold state and the hidden-line set live here.
type Registry struct {
	mu     sync.RWMutex
	src    Source
	cache  map[uint32]cachedRange
	folded map[uint32]*FoldRange
	hidden map[uint32]struct{}
}

// NewRegistry creates an empty registry reading lines from src.
func NewRegistry(src Source) *Registry {
	return &Registry{
		src:    src,
		cache:  make(map[uint32]cachedRange),
		folded: make(map[uint32]*FoldRange),
		hidden: make(map[uint32]struct{}),
	}
}

// RangeForLine returns the fold range opened at line, or false if the
// line is not foldable. Results are cached until invalidated by an edit.
func (g *Registry) RangeForLine(line uint32) (*FoldRange, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rangeForLineLocked(line)
}

func (g *Registry) rangeForLineLocked(line uint32) (*FoldRange, bool) {
	if c, ok := g.cache[line]; ok {
		return c.r, c.ok
	}
	r, ok := detect(g.src, line)
	g.cache[line] = cachedRange{r: r, ok: ok}
	return r, ok
}

// Fold collapses the range opened at line. Any currently-folded range
// strictly nested inside it is recorded as a child and unfolded, so the
// hidden-line accounting never double counts. Returns false when the
// line is not foldable.
func (g *Registry) Fold(line uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rangeForLineLocked(line)
	if !ok {
		return false
	}
	if r.Folded {
		return true
	}

	for start, other := range g.folded {
		if r.encloses(other) {
			other.Folded = false
			r.children = append(r.children, other)
			delete(g.folded, start)
		}
	}

	r.Folded = true
	g.folded[r.StartLine] = r
	g.rebuildHiddenLocked()
	return true
}

// Unfold expands the folded range starting at line and re-folds every
// child recorded when it was folded, restoring the prior nested state.
// Returns false when no folded range starts at line.
func (g *Registry) Unfold(line uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.folded[line]
	if !ok {
		return false
	}
	delete(g.folded, line)
	r.Folded = false

	for _, child := range r.children {
		child.Folded = true
		g.folded[child.StartLine] = child
	}
	r.children = nil

	g.rebuildHiddenLocked()
	return true
}

// FoldAll computes fold ranges for every line and folds the top-level
// ones. Nested ranges are implicitly hidden by their enclosing fold, not
// independently folded.
func (g *Registry) FoldAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := g.src.LineCount()
	ranges := make([]*FoldRange, 0, 16)
	for line := uint32(0); line < count; line++ {
		if r, ok := g.rangeForLineLocked(line); ok {
			ranges = append(ranges, r)
		}
	}

	for _, r := range ranges {
		nested := false
		for _, outer := range ranges {
			if outer != r && outer.encloses(r) {
				nested = true
				break
			}
		}
		if nested {
			continue
		}
		if !r.Folded {
			r.Folded = true
			g.folded[r.StartLine] = r
		}
	}
	g.rebuildHiddenLocked()
}

// UnfoldAll unfolds every folded range directly. Recorded children are
// discarded since the end state is everything visible.
func (g *Registry) UnfoldAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, r := range g.folded {
		r.Folded = false
		r.children = nil
	}
	g.folded = make(map[uint32]*FoldRange)
	g.hidden = make(map[uint32]struct{})
}

// IsLineHidden reports whether line is suppressed by a folded range.
// O(1) via the maintained hidden-line set.
func (g *Registry) IsLineHidden(line uint32) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.hidden[line]
	return ok
}

// HiddenLineCount returns the number of currently hidden lines.
func (g *Registry) HiddenLineCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.hidden)
}

// FoldedRanges returns the currently-folded ranges in no particular order.
func (g *Registry) FoldedRanges() []*FoldRange {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*FoldRange, 0, len(g.folded))
	for _, r := range g.folded {
		result = append(result, r)
	}
	return result
}

// OnEdit invalidates state after a buffer mutation at the given line.
//
// When the line count is unchanged only entries touching the edited line
// are dropped. When it changed, cached entries at or after the line are
// dropped; folded ranges entirely before the line are kept, ranges
// entirely after are renumbered by lineDelta, and ranges spanning the
// line are dropped (their hidden lines are released rather than guessed
// at).
func (g *Registry) OnEdit(line uint32, lineDelta int32, lineCountChanged bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !lineCountChanged {
		for key, c := range g.cache {
			if key == line || (c.ok && c.r.ContainsLine(line)) {
				delete(g.cache, key)
			}
		}
		dropped := false
		for start, r := range g.folded {
			if r.ContainsLine(line) {
				r.Folded = false
				r.children = nil
				delete(g.folded, start)
				dropped = true
			}
		}
		if dropped {
			g.rebuildHiddenLocked()
		}
		return
	}

	for key, c := range g.cache {
		if key >= line || (c.ok && c.r.EndLine >= line) {
			delete(g.cache, key)
		}
	}

	renumbered := make(map[uint32]*FoldRange, len(g.folded))
	for _, r := range g.folded {
		switch {
		case r.EndLine < line:
			renumbered[r.StartLine] = r
		case r.StartLine > line:
			start := int64(r.StartLine) + int64(lineDelta)
			if start < 0 {
				r.Folded = false
				r.children = nil
				continue
			}
			r.StartLine = uint32(start)
			r.EndLine = uint32(int64(r.EndLine) + int64(lineDelta))
			for _, child := range r.children {
				child.StartLine = uint32(int64(child.StartLine) + int64(lineDelta))
				child.EndLine = uint32(int64(child.EndLine) + int64(lineDelta))
			}
			renumbered[r.StartLine] = r
		default:
			r.Folded = false
			r.children = nil
		}
	}
	g.folded = renumbered
	g.rebuildHiddenLocked()
}

// Reset drops all cached ranges and fold state, for document close or
// wholesale content replacement.
func (g *Registry) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cache = make(map[uint32]cachedRange)
	g.folded = make(map[uint32]*FoldRange)
	g.hidden = make(map[uint32]struct{})
}

func (g *Registry) rebuildHiddenLocked() {
	g.hidden = make(map[uint32]struct{})
	for _, r := range g.folded {
		for l := r.StartLine + 1; l <= r.EndLine; l++ {
			g.hidden[l] = struct{}{}
		}
	}
}
