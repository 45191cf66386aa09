package buffer

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNewFromString(t *testing.T) {
	b := NewFromString("line1\nline2\nline3")

	if b.Len() != 17 {
		t.Errorf("Len() = %d, want 17", b.Len())
	}
	if b.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", b.LineCount())
	}
	if b.Version() != 0 {
		t.Errorf("Version() = %d, want 0 before any edit", b.Version())
	}
}

func TestInsertScenario(t *testing.T) {
	// insert(5, "X") into "line1\nline2\nline3".
	b := NewFromString("line1\nline2\nline3")

	result, err := b.Insert(5, "X")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if got := b.Text(); got != "line1X\nline2\nline3" {
		t.Errorf("Text() = %q", got)
	}
	if b.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", b.LineCount())
	}
	if line, _ := b.LineText(0); line != "line1X" {
		t.Errorf("LineText(0) = %q, want \"line1X\"", line)
	}
	if result.StartLine != 0 {
		t.Errorf("StartLine = %d, want 0", result.StartLine)
	}
	if result.LineCountChanged() {
		t.Error("single-line insert should not change line count")
	}
	if b.Version() != 1 {
		t.Errorf("Version() = %d, want 1", b.Version())
	}
}

func TestDeleteScenario(t *testing.T) {
	// delete(0, 6) on "line1\nline2".
	b := NewFromString("line1\nline2")

	result, err := b.Delete(0, 6)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got := b.Text(); got != "line2" {
		t.Errorf("Text() = %q, want \"line2\"", got)
	}
	if b.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", b.LineCount())
	}
	if line, err := b.LineAtOffset(2); err != nil || line != 0 {
		t.Errorf("LineAtOffset(2) = %d, %v; want 0, nil", line, err)
	}
	if result.LineDelta != -1 {
		t.Errorf("LineDelta = %d, want -1", result.LineDelta)
	}
	if result.OldText != "line1\n" {
		t.Errorf("OldText = %q", result.OldText)
	}
}

func TestValidationErrors(t *testing.T) {
	b := NewFromString("hello")

	if _, err := b.Insert(6, "x"); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("Insert past end: err = %v, want ErrRangeInvalid", err)
	}
	if _, err := b.Insert(-1, "x"); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("Insert negative: err = %v, want ErrRangeInvalid", err)
	}
	if _, err := b.Delete(3, 2); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("Delete inverted range: err = %v, want ErrRangeInvalid", err)
	}
	if _, err := b.Delete(0, 6); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("Delete past end: err = %v, want ErrRangeInvalid", err)
	}
	if _, err := b.LineText(1); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("LineText(1): err = %v, want ErrLineOutOfRange", err)
	}
	if _, err := b.LineAtOffset(6); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("LineAtOffset(6): err = %v, want ErrOffsetOutOfRange", err)
	}

	// Failed edits must not bump the version.
	if b.Version() != 0 {
		t.Errorf("Version() = %d after failed edits, want 0", b.Version())
	}
}

func TestNoOpEdits(t *testing.T) {
	b := NewFromString("stable")

	if _, err := b.Insert(3, ""); err != nil {
		t.Fatalf("Insert empty: %v", err)
	}
	if _, err := b.Delete(3, 3); err != nil {
		t.Fatalf("Delete empty: %v", err)
	}

	if got := b.Text(); got != "stable" {
		t.Errorf("Text() = %q after no-op edits", got)
	}
}

func TestVersionMonotonic(t *testing.T) {
	b := NewFromString("abc")

	var last Version
	for i := 0; i < 10; i++ {
		result, err := b.Insert(0, "x")
		if err != nil {
			t.Fatal(err)
		}
		if result.Version <= last {
			t.Fatalf("version %d not greater than previous %d", result.Version, last)
		}
		last = result.Version
	}
	if b.Version() != last {
		t.Errorf("Version() = %d, want %d", b.Version(), last)
	}
}

func TestLineEndingNormalization(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		in   string
		want string
	}{
		{"CRLF to LF", nil, "a\r\nb\r\nc", "a\nb\nc"},
		{"CR to LF", nil, "a\rb", "a\nb"},
		{"mixed to LF", nil, "a\r\nb\rc\nd", "a\nb\nc\nd"},
		{"LF to CRLF", []Option{WithCRLF()}, "a\nb", "a\r\nb"},
		{"LF to CR", []Option{WithCR()}, "a\nb\r\nc", "a\rb\rc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewFromString(tt.in, tt.opts...)
			if got := b.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}

	// Inserted text is normalized too.
	b := NewFromString("ab")
	if _, err := b.Insert(1, "x\r\ny"); err != nil {
		t.Fatal(err)
	}
	if got := b.Text(); got != "ax\nyb" {
		t.Errorf("Text() = %q, want \"ax\\nyb\"", got)
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		in   string
		want LineEnding
	}{
		{"plain\nunix\n", LineEndingLF},
		{"win\r\ndows\r\n", LineEndingCRLF},
		{"old\rmac\r", LineEndingCR},
		{"no endings", LineEndingLF},
		{"mixed\r\n\r\nmore\n", LineEndingCRLF},
	}

	for _, tt := range tests {
		if got := DetectLineEnding(tt.in); got != tt.want {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplyEdits(t *testing.T) {
	b := NewFromString("aaa bbb ccc")

	// Reverse order: highest offset first.
	edits := []Edit{
		{Range: Range{Start: 8, End: 11}, NewText: "C"},
		{Range: Range{Start: 4, End: 7}, NewText: "B"},
		{Range: Range{Start: 0, End: 3}, NewText: "A"},
	}

	results, err := b.ApplyEdits(edits)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if got := b.Text(); got != "A B C" {
		t.Errorf("Text() = %q, want \"A B C\"", got)
	}
	if b.Version() != 1 {
		t.Errorf("Version() = %d, want 1 (batch is one mutation)", b.Version())
	}
	for _, r := range results {
		if r.Version != 1 {
			t.Errorf("result version = %d, want 1", r.Version)
		}
	}

	// Overlapping edits are rejected.
	if _, err := b.ApplyEdits([]Edit{
		{Range: Range{Start: 2, End: 4}},
		{Range: Range{Start: 0, End: 3}},
	}); !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("overlapping edits: err = %v, want ErrEditsOverlap", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	b := NewFromString("before\nedit")
	snap := b.Snapshot()

	if _, err := b.Insert(0, "XXX "); err != nil {
		t.Fatal(err)
	}

	if snap.Text() != "before\nedit" {
		t.Errorf("snapshot changed after edit: %q", snap.Text())
	}
	if snap.Version() != 0 {
		t.Errorf("snapshot Version() = %d, want 0", snap.Version())
	}
	if b.Text() != "XXX before\nedit" {
		t.Errorf("buffer Text() = %q", b.Text())
	}
	if snap.LineText(0) != "before" {
		t.Errorf("snapshot LineText(0) = %q", snap.LineText(0))
	}
}

func TestConcurrentReaders(t *testing.T) {
	b := NewFromString(strings.Repeat("content line\n", 1000))
	snap := b.Snapshot()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = snap.LineText(uint32((n*100 + j) % 1000))
				_, _ = b.LineText(uint32(j % int(b.LineCount())))
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			if _, err := b.Insert(0, "w"); err != nil {
				t.Errorf("writer: %v", err)
				return
			}
		}
	}()

	wg.Wait()
	<-done
}

func TestClamping(t *testing.T) {
	b := NewFromString("ab\ncd")

	if got := b.ClampOffset(-5); got != 0 {
		t.Errorf("ClampOffset(-5) = %d", got)
	}
	if got := b.ClampOffset(99); got != 5 {
		t.Errorf("ClampOffset(99) = %d", got)
	}
	if got := b.ClampLine(99); got != 1 {
		t.Errorf("ClampLine(99) = %d", got)
	}
}

func TestUTF16Points(t *testing.T) {
	// "a𝄞b" — 𝄞 is 4 bytes in UTF-8, a surrogate pair in UTF-16.
	b := NewFromString("a\U0001D11Eb")

	p, err := b.OffsetToPointUTF16(5)
	if err != nil {
		t.Fatal(err)
	}
	if p != (PointUTF16{Line: 0, Column: 3}) {
		t.Errorf("OffsetToPointUTF16(5) = %v, want (0:3)", p)
	}

	off, err := b.PointUTF16ToOffset(PointUTF16{Line: 0, Column: 3})
	if err != nil {
		t.Fatal(err)
	}
	if off != 5 {
		t.Errorf("PointUTF16ToOffset = %d, want 5", off)
	}
}

func TestRoundTripAgainstReference(t *testing.T) {
	ops := []struct {
		insert bool
		off    ByteOffset
		end    ByteOffset
		text   string
	}{
		{insert: true, off: 0, text: "hello world\n"},
		{insert: true, off: 6, text: "big "},
		{insert: false, off: 0, end: 6},
		{insert: true, off: 10, text: "\nnext\nlines\n"},
		{insert: false, off: 3, end: 9},
		{insert: true, off: 0, text: "start: "},
	}

	b := New()
	ref := ""
	for _, op := range ops {
		if op.insert {
			if _, err := b.Insert(op.off, op.text); err != nil {
				t.Fatal(err)
			}
			ref = ref[:op.off] + op.text + ref[op.off:]
		} else {
			if _, err := b.Delete(op.off, op.end); err != nil {
				t.Fatal(err)
			}
			ref = ref[:op.off] + ref[op.end:]
		}

		if got := b.Text(); got != ref {
			t.Fatalf("divergence after %+v: got %q, want %q", op, got, ref)
		}
		if want := uint32(strings.Count(ref, "\n")) + 1; b.LineCount() != want {
			t.Fatalf("LineCount() = %d, want %d", b.LineCount(), want)
		}
	}
}
