package fold

import "fmt"

// Kind identifies which heuristic produced a fold range.
type Kind uint8

const (
	KindTemplate Kind = iota // {% tag %} ... {% endtag %}
	KindMarkup               // <tag> ... </tag>
	KindBracket              // { ( [ opened here, closed later
	KindIndent               // line ends with ':', deeper lines follow
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindMarkup:
		return "markup"
	case KindBracket:
		return "bracket"
	case KindIndent:
		return "indent"
	default:
		return "unknown"
	}
}

// FoldRange is one collapsible span. StartLine stays visible and carries
// the fold trigger; folding hides lines (StartLine, EndLine] inclusive of
// EndLine. Invariant: StartLine < EndLine.
type FoldRange struct {
	StartLine uint32
	EndLine   uint32
	Kind      Kind
	Folded    bool

	// Ranges that were folded at the time this range was folded,
	// re-folded on unfold to restore the prior nested state.
	children []*FoldRange
}

// String returns a human-readable representation of the range.
func (r *FoldRange) String() string {
	return fmt.Sprintf("FoldRange(%d-%d %s)", r.StartLine, r.EndLine, r.Kind)
}

// HiddenLineCount returns the number of lines hidden when this range is
// folded.
func (r *FoldRange) HiddenLineCount() uint32 {
	return r.EndLine - r.StartLine
}

// ContainsLine reports whether line falls within [StartLine, EndLine].
func (r *FoldRange) ContainsLine(line uint32) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// encloses reports whether other is strictly nested inside r's hidden span.
func (r *FoldRange) encloses(other *FoldRange) bool {
	return other.StartLine > r.StartLine && other.EndLine <= r.EndLine
}
