package buffer

import "fmt"

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{
		Range:   Range{Start: offset, End: offset},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end ByteOffset) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// IsInsert returns true if this is a pure insertion (empty range).
func (e Edit) IsInsert() bool {
	return e.Range.IsEmpty() && e.NewText != ""
}

// IsDelete returns true if this is a pure deletion (empty replacement).
func (e Edit) IsDelete() bool {
	return !e.Range.IsEmpty() && e.NewText == ""
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// EditResult describes an applied edit. The line fields are what the
// change-tracking and fold layers key their invalidation on.
type EditResult struct {
	OldRange Range  // Range of the previous document state that changed
	NewRange Range  // Resulting range after the edit
	OldText  string // The text that was replaced (if any)
	Delta    int64  // Change in buffer length in bytes

	StartLine uint32 // Line containing the edit's starting offset
	LineDelta int32  // Change in total line count (new - old)
	Version   Version
}

// LineCountChanged returns true if the edit changed the number of lines.
func (r EditResult) LineCountChanged() bool {
	return r.LineDelta != 0
}

// ChangeType categorizes the type of change made to the buffer.
type ChangeType uint8

const (
	ChangeInsert  ChangeType = iota // Text was inserted
	ChangeDelete                    // Text was deleted
	ChangeReplace                   // Text was replaced
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change records a single applied change, for consumers replaying or
// inspecting edit history.
type Change struct {
	Type     ChangeType
	Range    Range  // Original range that was affected
	NewRange Range  // Resulting range after the change
	OldText  string // Text that was removed (for delete/replace)
	NewText  string // Text that was added (for insert/replace)
	Version  Version
}

// FromEditResult builds a Change record from an applied edit.
func FromEditResult(result EditResult, newText string) Change {
	var changeType ChangeType
	switch {
	case result.OldRange.IsEmpty():
		changeType = ChangeInsert
	case newText == "":
		changeType = ChangeDelete
	default:
		changeType = ChangeReplace
	}

	return Change{
		Type:     changeType,
		Range:    result.OldRange,
		NewRange: result.NewRange,
		OldText:  result.OldText,
		NewText:  newText,
		Version:  result.Version,
	}
}
