package rope

import (
	"strings"
	"testing"
)

func TestLeafIteratorConcatenatesToDocument(t *testing.T) {
	text := strings.Repeat("abcdefgh\n", 400)
	r := FromString(text)

	var sb strings.Builder
	it := r.Leaves()
	for it.Next() {
		sb.WriteString(it.Text())
	}

	if sb.String() != text {
		t.Error("leaf iteration does not reassemble the document")
	}
}

func TestLineIterator(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{""}},
		{"single line", "hello", []string{"hello"}},
		{"two lines", "a\nb", []string{"a", "b"}},
		{"trailing newline", "a\nb\n", []string{"a", "b", ""}},
		{"blank lines", "\n\n", []string{"", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.input)

			var got []string
			it := r.Lines()
			for it.Next() {
				if it.Line() != uint32(len(got)) {
					t.Errorf("Line() = %d, want %d", it.Line(), len(got))
				}
				got = append(got, it.Text())
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if uint32(len(got)) != r.LineCount() {
				t.Errorf("iterated %d lines, LineCount() = %d", len(got), r.LineCount())
			}
		})
	}
}

func TestLineIteratorSpansLeaves(t *testing.T) {
	// A single long line crossing many leaf boundaries.
	line := strings.Repeat("x", MaxLeafSize*3+17)
	r := FromString(line + "\ntail")

	it := r.Lines()
	if !it.Next() || it.Text() != line {
		t.Fatal("first line not reassembled across leaves")
	}
	if !it.Next() || it.Text() != "tail" {
		t.Fatalf("second line = %q, want \"tail\"", it.Text())
	}
	if it.Next() {
		t.Error("iterator should be exhausted")
	}
}

func TestBuilder(t *testing.T) {
	var b Builder
	b.WriteString("hello ")
	b.WriteString("world\n")
	_ = b.WriteByte('x')

	if b.Len() != 13 {
		t.Errorf("Len() = %d, want 13", b.Len())
	}

	r := b.Build()
	if r.String() != "hello world\nx" {
		t.Errorf("Build() = %q", r.String())
	}

	// Builder resets after Build.
	if b.Len() != 0 {
		t.Errorf("Len() after Build = %d, want 0", b.Len())
	}
}

func TestBuilderLargeInput(t *testing.T) {
	var b Builder
	chunkText := strings.Repeat("0123456789", 100)
	for i := 0; i < 200; i++ {
		b.WriteString(chunkText)
	}

	r := b.Build()
	if r.Len() != ByteOffset(200*len(chunkText)) {
		t.Fatalf("Len() = %d, want %d", r.Len(), 200*len(chunkText))
	}
	if limit := maxHeightFor(uint32(r.LeafCount())) + 1; r.Height() > limit {
		t.Errorf("built rope height %d exceeds limit %d", r.Height(), limit)
	}
}

func TestFromReader(t *testing.T) {
	text := strings.Repeat("reader line\n", 5000)
	r, err := FromReader(strings.NewReader(text))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if r.String() != text {
		t.Error("FromReader content mismatch")
	}
}

func TestFromLines(t *testing.T) {
	r := FromLines([]string{"one", "two", "three"})
	if r.String() != "one\ntwo\nthree" {
		t.Errorf("FromLines = %q", r.String())
	}
	if r.LineCount() != 3 {
		t.Errorf("LineCount = %d, want 3", r.LineCount())
	}
}
