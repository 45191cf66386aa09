package rope

// ByteOffset represents an absolute byte position in the rope.
type ByteOffset int64

// Point represents a line/column position.
// Line and Column are both 0-indexed; Column is a byte offset into the line.
type Point struct {
	Line   uint32
	Column uint32
}

// Summary holds the aggregated metrics cached on every node.
// Summaries form a monoid under Add; a concat node's summary always equals
// the sum of its children's.
type Summary struct {
	// Bytes is the UTF-8 byte count of the subtree.
	Bytes ByteOffset

	// Newlines is the number of '\n' bytes in the subtree.
	Newlines uint32
}

// Add combines two summaries. Called when joining rope sections.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Bytes:    s.Bytes + other.Bytes,
		Newlines: s.Newlines + other.Newlines,
	}
}

// IsZero returns true if this is the identity summary.
func (s Summary) IsZero() bool {
	return s.Bytes == 0
}

// ComputeSummary calculates metrics for a string fragment.
// Newlines are counted at the byte level; in UTF-8 a 0x0A byte can only
// ever be the LF character, so this is safe for multi-byte text.
func ComputeSummary(s string) Summary {
	sum := Summary{Bytes: ByteOffset(len(s))}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			sum.Newlines++
		}
	}
	return sum
}

// CountNewlines returns the number of '\n' bytes in s.
func CountNewlines(s string) uint32 {
	var count uint32
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			count++
		}
	}
	return count
}

// FindNthNewline returns the byte position of the nth newline (1-indexed)
// in s, or -1 if s contains fewer than n newlines.
func FindNthNewline(s string, n uint32) int {
	if n == 0 {
		return -1
	}

	var count uint32
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			count++
			if count == n {
				return i
			}
		}
	}
	return -1
}
