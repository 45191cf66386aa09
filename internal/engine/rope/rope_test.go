package rope

import (
	"math/rand"
	"strings"
	"testing"
	"testing/quick"
)

func TestNew(t *testing.T) {
	r := New()
	if r.Len() != 0 {
		t.Errorf("New rope should have length 0, got %d", r.Len())
	}
	if !r.IsEmpty() {
		t.Error("New rope should be empty")
	}
	if r.String() != "" {
		t.Errorf("New rope String() should be empty, got %q", r.String())
	}
	if r.LineCount() != 1 {
		t.Errorf("New rope should have 1 line, got %d", r.LineCount())
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single char", "a"},
		{"short string", "hello"},
		{"with newline", "hello\nworld"},
		{"multiple newlines", "a\nb\nc\nd"},
		{"unicode", "hello 世界 🌍"},
		{"long string", strings.Repeat("abcdefghij", 100)},
		{"very long string", strings.Repeat("x", 10000)},
		{"long with newlines", strings.Repeat("0123456789\n", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.input)
			if r.String() != tt.input {
				t.Errorf("String() = %q, want %q", r.String(), tt.input)
			}
			if r.Len() != ByteOffset(len(tt.input)) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.input))
			}
			wantLines := uint32(strings.Count(tt.input, "\n")) + 1
			if r.LineCount() != wantLines {
				t.Errorf("LineCount() = %d, want %d", r.LineCount(), wantLines)
			}
		})
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		offset   ByteOffset
		text     string
		expected string
	}{
		{"insert at start", "world", 0, "hello ", "hello world"},
		{"insert at end", "hello", 5, " world", "hello world"},
		{"insert in middle", "helloworld", 5, " ", "hello world"},
		{"insert into empty", "", 0, "hello", "hello"},
		{"insert empty string", "hello", 3, "", "hello"},
		{"insert multi-line", "ab", 1, "1\n2\n3", "a1\n2\n3b"},
		{"insert unicode", "hello", 5, " 世界", "hello 世界"},
		{"insert at unicode boundary", "世界", 3, "!", "世!界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.initial)
			r = r.Insert(tt.offset, tt.text)
			if got := r.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		start    ByteOffset
		end      ByteOffset
		expected string
	}{
		{"delete from start", "hello world", 0, 6, "world"},
		{"delete from end", "hello world", 5, 11, "hello"},
		{"delete from middle", "hello world", 5, 6, "helloworld"},
		{"delete all", "hello", 0, 5, ""},
		{"delete nothing", "hello", 3, 3, "hello"},
		{"delete newline joins lines", "a\nb", 1, 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.initial)
			r = r.Delete(tt.start, tt.end)
			if got := r.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	text := "line1\nline2\nline3"
	r := FromString(text)

	tests := []struct {
		name     string
		start    ByteOffset
		end      ByteOffset
		expected string
	}{
		{"full", 0, 17, text},
		{"prefix", 0, 5, "line1"},
		{"middle", 6, 11, "line2"},
		{"across newline", 4, 8, "1\nli"},
		{"empty", 3, 3, ""},
		{"inverted", 8, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Slice(tt.start, tt.end); got != tt.expected {
				t.Errorf("Slice(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}

func TestLineOperations(t *testing.T) {
	text := "first\nsecond\nthird"
	r := FromString(text)

	if r.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", r.LineCount())
	}

	starts := []ByteOffset{0, 6, 13}
	lines := []string{"first", "second", "third"}
	for i, want := range starts {
		if got := r.LineStartOffset(uint32(i)); got != want {
			t.Errorf("LineStartOffset(%d) = %d, want %d", i, got, want)
		}
		if got := r.LineText(uint32(i)); got != lines[i] {
			t.Errorf("LineText(%d) = %q, want %q", i, got, lines[i])
		}
	}

	if got := r.LineEndOffset(0); got != 5 {
		t.Errorf("LineEndOffset(0) = %d, want 5", got)
	}
	if got := r.LineEndOffset(2); got != r.Len() {
		t.Errorf("LineEndOffset(2) = %d, want %d", got, r.Len())
	}

	// The newline itself belongs to the line it terminates.
	if got := r.LineAtOffset(5); got != 0 {
		t.Errorf("LineAtOffset(5) = %d, want 0", got)
	}
	if got := r.LineAtOffset(6); got != 1 {
		t.Errorf("LineAtOffset(6) = %d, want 1", got)
	}
	if got := r.LineAtOffset(r.Len()); got != 2 {
		t.Errorf("LineAtOffset(len) = %d, want 2", got)
	}
}

func TestLineStartOffsetsStrictlyIncrease(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteString(strings.Repeat("a", i%40))
		sb.WriteByte('\n')
	}
	r := FromString(sb.String())

	prev := ByteOffset(-1)
	for line := uint32(0); line < r.LineCount(); line++ {
		start := r.LineStartOffset(line)
		if start <= prev {
			t.Fatalf("LineStartOffset(%d) = %d, not greater than previous %d", line, start, prev)
		}
		prev = start
	}
	if r.LineStartOffset(0) != 0 {
		t.Errorf("LineStartOffset(0) = %d, want 0", r.LineStartOffset(0))
	}
}

func TestOffsetLineInverse(t *testing.T) {
	text := "alpha\nbeta\n\ngamma delta\nepsilon"
	r := FromString(text)

	for o := ByteOffset(0); o <= r.Len(); o++ {
		line := r.LineAtOffset(o)
		start := r.LineStartOffset(line)
		if start > o {
			t.Fatalf("offset %d: line %d starts at %d, after the offset", o, line, start)
		}
		if line+1 < r.LineCount() {
			next := r.LineStartOffset(line + 1)
			if o >= next {
				t.Fatalf("offset %d: not before start %d of line %d", o, next, line+1)
			}
		}
	}
}

func TestOffsetToPoint(t *testing.T) {
	r := FromString("ab\ncdef\ng")

	tests := []struct {
		offset ByteOffset
		want   Point
	}{
		{0, Point{0, 0}},
		{1, Point{0, 1}},
		{2, Point{0, 2}}, // the newline
		{3, Point{1, 0}},
		{6, Point{1, 3}},
		{8, Point{2, 0}},
		{9, Point{2, 1}}, // end of document
	}

	for _, tt := range tests {
		if got := r.OffsetToPoint(tt.offset); got != tt.want {
			t.Errorf("OffsetToPoint(%d) = %v, want %v", tt.offset, got, tt.want)
		}
		if back := r.PointToOffset(tt.want); back != tt.offset {
			t.Errorf("PointToOffset(%v) = %d, want %d", tt.want, back, tt.offset)
		}
	}

	// Columns past the line end clamp to the line end.
	if got := r.PointToOffset(Point{Line: 0, Column: 99}); got != 2 {
		t.Errorf("PointToOffset over-long column = %d, want 2", got)
	}
}

func TestInsertNewlineAtStartShiftsLines(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteString("line content\n")
	}
	r := FromString(sb.String())

	before := r.LineStartOffset(500)
	r = r.Insert(0, "\n")

	if got := r.LineStartOffset(501); got != before+1 {
		t.Errorf("LineStartOffset(501) after prepend = %d, want %d", got, before+1)
	}
}

func TestNoOpEditsLeaveRopeUnchanged(t *testing.T) {
	text := "some\ntext\nhere"
	r := FromString(text)

	r2 := r.Insert(5, "")
	r3 := r.Delete(5, 5)

	for o := ByteOffset(0); o < r.Len(); o++ {
		for e := o; e <= r.Len(); e++ {
			if r2.Slice(o, e) != r.Slice(o, e) || r3.Slice(o, e) != r.Slice(o, e) {
				t.Fatalf("no-op edit changed Slice(%d, %d)", o, e)
			}
		}
	}
}

func TestByteAt(t *testing.T) {
	r := FromString("hello\nworld")

	if b, ok := r.ByteAt(5); !ok || b != '\n' {
		t.Errorf("ByteAt(5) = %q, %v; want '\\n', true", b, ok)
	}
	if _, ok := r.ByteAt(11); ok {
		t.Error("ByteAt(len) should report false")
	}
	if _, ok := r.ByteAt(-1); ok {
		t.Error("ByteAt(-1) should report false")
	}
}

func TestSplitConcat(t *testing.T) {
	text := strings.Repeat("hello world\n", 200)
	r := FromString(text)

	for _, offset := range []ByteOffset{0, 1, 100, 1199, r.Len()} {
		left, right := r.Split(offset)
		if got := left.String() + right.String(); got != text {
			t.Errorf("Split(%d): reassembled text differs", offset)
		}
		if joined := left.Concat(right); joined.String() != text {
			t.Errorf("Concat after Split(%d) differs", offset)
		}
	}
}

func TestEquals(t *testing.T) {
	a := FromString("shared content\nacross leaves")
	// Same content, different structure.
	b := FromString("shared ").Concat(FromString("content\nacross leaves"))

	if !a.Equals(b) {
		t.Error("ropes with equal content should be Equals")
	}
	if a.Equals(FromString("shared content\nacross leaveS")) {
		t.Error("ropes with different content should not be Equals")
	}
	if !New().Equals(New()) {
		t.Error("empty ropes should be Equals")
	}
}

func TestRebalanceBoundsDepth(t *testing.T) {
	r := New()
	// Sequential single-character insertions at a growing offset are the
	// pathological case for naive rope concatenation.
	for i := 0; i < 20000; i++ {
		r = r.Insert(r.Len()/2, "x")
	}

	if r.Len() != 20000 {
		t.Fatalf("Len() = %d, want 20000", r.Len())
	}
	if limit := maxHeightFor(uint32(r.LeafCount())) + 1; r.Height() > limit {
		t.Errorf("Height() = %d exceeds balance limit %d (leaves: %d)",
			r.Height(), limit, r.LeafCount())
	}
}

func TestSummaryConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := FromString(strings.Repeat("abc\ndef\n", 100))

	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			off := ByteOffset(rng.Int63n(int64(r.Len()) + 1))
			r = r.Insert(off, "ins\n")
		} else if r.Len() > 0 {
			start := ByteOffset(rng.Int63n(int64(r.Len())))
			end := start + ByteOffset(rng.Int63n(8))
			r = r.Delete(start, end)
		}
		assertSummaries(t, r.root)
	}
}

// assertSummaries verifies every node's cached aggregates match its
// children. A mismatch means the summary invariant is broken.
func assertSummaries(t *testing.T, n *node) {
	t.Helper()
	if n == nil {
		return
	}
	if n.isLeaf() {
		if n.summary != ComputeSummary(n.text) {
			t.Fatalf("leaf summary %+v does not match text %q", n.summary, n.text)
		}
		return
	}

	want := n.left.summary.Add(n.right.summary)
	if n.summary != want {
		t.Fatalf("concat summary %+v, want %+v", n.summary, want)
	}
	if n.leaves != n.left.leaves+n.right.leaves {
		t.Fatalf("leaf count %d, want %d", n.leaves, n.left.leaves+n.right.leaves)
	}
	assertSummaries(t, n.left)
	assertSummaries(t, n.right)
}

func TestQuickRoundTrip(t *testing.T) {
	f := func(a, b, c string, i1, i2 uint16) bool {
		ref := a
		r := FromString(a)

		o1 := int(i1) % (len(ref) + 1)
		ref = ref[:o1] + b + ref[o1:]
		r = r.Insert(ByteOffset(o1), b)

		o2 := int(i2) % (len(ref) + 1)
		ref = ref[:o2] + c + ref[o2:]
		r = r.Insert(ByteOffset(o2), c)

		if len(ref) > 3 {
			ref = ref[:1] + ref[3:]
			r = r.Delete(1, 3)
		}

		return r.String() == ref &&
			r.Len() == ByteOffset(len(ref)) &&
			r.LineCount() == uint32(strings.Count(ref, "\n"))+1
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 300}); err != nil {
		t.Error(err)
	}
}
