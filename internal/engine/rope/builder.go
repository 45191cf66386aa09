package rope

import (
	"io"
	"strings"
)

// Builder provides efficient incremental construction of a rope.
// It buffers writes into bounded leaves and builds a balanced tree when
// Build is called.
type Builder struct {
	leaves   []*node
	buffer   strings.Builder
	totalLen int
}

// NewBuilder creates a new rope builder.
func NewBuilder() *Builder {
	return &Builder{
		leaves: make([]*node, 0, 64),
	}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	if len(s) == 0 {
		return
	}

	b.totalLen += len(s)
	b.buffer.WriteString(s)

	if b.buffer.Len() >= MaxLeafSize*2 {
		b.flush()
	}
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.WriteString(string(p))
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.totalLen++
	return b.buffer.WriteByte(c)
}

// ReadFrom implements io.ReaderFrom for efficient bulk loading.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64

	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// flush converts buffered text into leaves.
func (b *Builder) flush() {
	if b.buffer.Len() == 0 {
		return
	}

	s := b.buffer.String()
	b.buffer.Reset()
	b.leaves = append(b.leaves, leavesFromString(s)...)
}

// Len returns the total number of bytes written.
func (b *Builder) Len() int {
	return b.totalLen
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.leaves = b.leaves[:0]
	b.buffer.Reset()
	b.totalLen = 0
}

// Build creates the rope from accumulated data and resets the builder.
func (b *Builder) Build() Rope {
	b.flush()

	if len(b.leaves) == 0 {
		b.Reset()
		return New()
	}

	leaves := b.leaves
	b.Reset()
	return Rope{root: buildBalanced(leaves)}
}

// FromLines creates a rope from a slice of lines.
// Each line gets a newline appended except the last.
func FromLines(lines []string) Rope {
	if len(lines) == 0 {
		return New()
	}

	var builder Builder
	for i, line := range lines {
		builder.WriteString(line)
		if i < len(lines)-1 {
			builder.WriteByte('\n')
		}
	}
	return builder.Build()
}
