// Package fold computes and tracks collapsible line regions.
//
// Foldable regions are detected per line by a prioritized set of syntactic
// heuristics (template tag blocks, markup element blocks, bracket pairs,
// indentation blocks). Detection is lazy and cached; an edit invalidates
// only the affected entries.
//
// The Registry is the authority on fold state. Folding a range records any
// folded ranges nested inside it so a later unfold restores the exact
// prior nesting. Hidden-line membership is answered in O(1) from a set
// rebuilt whenever fold state changes.
//
// A FoldRange's EndLine is the last line hidden when the range is folded;
// the line carrying the closing delimiter stays visible.
package fold
