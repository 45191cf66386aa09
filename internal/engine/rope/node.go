package rope

import (
	"math/bits"
	"strings"
)

// Leaf size constants control the granularity of text storage.
const (
	// MaxLeafSize is the maximum bytes per leaf before splitting.
	MaxLeafSize = 512

	// MinLeafSize is the merge target: adjacent leaves whose combined
	// length stays at or below MaxLeafSize are merged when both are
	// smaller than this.
	MinLeafSize = 128

	// balanceSlack is the depth allowance above ceil(log2(leafCount))
	// before an edit triggers a rebuild from collected leaves.
	balanceSlack = 4
)

// node is a rope tree node. A leaf (left == nil) owns a contiguous string
// fragment; a concat node owns exactly two children and caches the
// aggregate metrics of its subtree. Nodes are never mutated after
// construction, which is what makes structural sharing safe.
type node struct {
	// Concat node fields. A node is a leaf iff left is nil.
	left  *node
	right *node

	// Leaf node field.
	text string

	summary Summary
	height  uint8  // 0 for leaves
	leaves  uint32 // leaf count of the subtree
}

// newLeaf creates a leaf node owning the given fragment.
func newLeaf(text string) *node {
	return &node{
		text:    text,
		summary: ComputeSummary(text),
		leaves:  1,
	}
}

// newConcat creates a concat node over two non-empty children.
func newConcat(left, right *node) *node {
	h := left.height
	if right.height > h {
		h = right.height
	}
	return &node{
		left:    left,
		right:   right,
		summary: left.summary.Add(right.summary),
		height:  h + 1,
		leaves:  left.leaves + right.leaves,
	}
}

func (n *node) isLeaf() bool {
	return n.left == nil
}

func (n *node) len() ByteOffset {
	return n.summary.Bytes
}

// appendTo appends all text in this subtree to the builder, in order.
func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(n.text)
		return
	}
	n.left.appendTo(sb)
	n.right.appendTo(sb)
}

// appendRange appends text in the byte range [start, end) to the builder.
// Bounds must already be clamped to [0, n.len()].
func (n *node) appendRange(sb *strings.Builder, start, end ByteOffset) {
	if start >= end {
		return
	}

	if n.isLeaf() {
		sb.WriteString(n.text[start:end])
		return
	}

	leftLen := n.left.len()
	if start < leftLen {
		leftEnd := end
		if leftEnd > leftLen {
			leftEnd = leftLen
		}
		n.left.appendRange(sb, start, leftEnd)
	}
	if end > leftLen {
		rightStart := start - leftLen
		if rightStart < 0 {
			rightStart = 0
		}
		n.right.appendRange(sb, rightStart, end-leftLen)
	}
}

// byteAt returns the byte at the given offset within the subtree.
// The offset must be in [0, n.len()).
func (n *node) byteAt(offset ByteOffset) byte {
	for !n.isLeaf() {
		leftLen := n.left.len()
		if offset < leftLen {
			n = n.left
		} else {
			offset -= leftLen
			n = n.right
		}
	}
	return n.text[offset]
}

// split splits the subtree at the given byte offset.
// Left result covers [0, offset), right covers [offset, len).
// Either result may be nil when empty. Shared structure is reused; only
// the nodes on the split path are rebuilt.
func (n *node) split(offset ByteOffset) (*node, *node) {
	if offset <= 0 {
		return nil, n
	}
	if offset >= n.len() {
		return n, nil
	}

	if n.isLeaf() {
		return newLeaf(n.text[:offset]), newLeaf(n.text[offset:])
	}

	leftLen := n.left.len()
	switch {
	case offset < leftLen:
		ll, lr := n.left.split(offset)
		return ll, concatNodes(lr, n.right)
	case offset > leftLen:
		rl, rr := n.right.split(offset - leftLen)
		return concatNodes(n.left, rl), rr
	default:
		return n.left, n.right
	}
}

// concatNodes joins two subtrees, merging small adjacent leaves so that
// repeated single-point edits do not accumulate tiny fragments.
func concatNodes(left, right *node) *node {
	if left == nil || left.len() == 0 {
		return right
	}
	if right == nil || right.len() == 0 {
		return left
	}

	if left.isLeaf() && right.isLeaf() &&
		(left.len() < MinLeafSize || right.len() < MinLeafSize) &&
		left.len()+right.len() <= MaxLeafSize {
		return newLeaf(left.text + right.text)
	}

	// Merge a small boundary leaf into the neighbouring subtree edge.
	if !left.isLeaf() && right.isLeaf() && right.len() < MinLeafSize {
		if rm := left.rightmostLeaf(); rm.len()+right.len() <= MaxLeafSize {
			return left.replaceRightmost(newLeaf(rm.text + right.text))
		}
	}
	if left.isLeaf() && !right.isLeaf() && left.len() < MinLeafSize {
		if lm := right.leftmostLeaf(); left.len()+lm.len() <= MaxLeafSize {
			return right.replaceLeftmost(newLeaf(left.text + lm.text))
		}
	}

	return newConcat(left, right)
}

func (n *node) rightmostLeaf() *node {
	for !n.isLeaf() {
		n = n.right
	}
	return n
}

func (n *node) leftmostLeaf() *node {
	for !n.isLeaf() {
		n = n.left
	}
	return n
}

// replaceRightmost returns a copy of the subtree with its rightmost leaf
// replaced. Only the right spine is rebuilt.
func (n *node) replaceRightmost(leaf *node) *node {
	if n.isLeaf() {
		return leaf
	}
	return newConcat(n.left, n.right.replaceRightmost(leaf))
}

// replaceLeftmost returns a copy of the subtree with its leftmost leaf
// replaced. Only the left spine is rebuilt.
func (n *node) replaceLeftmost(leaf *node) *node {
	if n.isLeaf() {
		return leaf
	}
	return newConcat(n.left.replaceLeftmost(leaf), n.right)
}

// maxHeightFor returns the allowed tree height for a given leaf count.
func maxHeightFor(leafCount uint32) int {
	if leafCount <= 1 {
		return balanceSlack
	}
	return bits.Len32(leafCount-1) + balanceSlack
}

// isUnbalanced reports whether the subtree depth exceeds the threshold.
func (n *node) isUnbalanced() bool {
	return int(n.height) > maxHeightFor(n.leaves)
}

// collectLeaves appends all leaf nodes of the subtree, left to right.
func (n *node) collectLeaves(out []*node) []*node {
	if n.isLeaf() {
		return append(out, n)
	}
	out = n.left.collectLeaves(out)
	return n.right.collectLeaves(out)
}

// buildBalanced constructs a minimum-height tree over the given leaves by
// pairing adjacent nodes level by level.
func buildBalanced(leaves []*node) *node {
	if len(leaves) == 0 {
		return nil
	}

	nodes := leaves
	for len(nodes) > 1 {
		parents := make([]*node, 0, (len(nodes)+1)/2)
		for i := 0; i+1 < len(nodes); i += 2 {
			parents = append(parents, newConcat(nodes[i], nodes[i+1]))
		}
		if len(nodes)%2 == 1 {
			parents = append(parents, nodes[len(nodes)-1])
		}
		nodes = parents
	}
	return nodes[0]
}

// rebuild collects the subtree's leaves, coalescing undersized neighbours,
// and constructs a balanced replacement tree.
func (n *node) rebuild() *node {
	leaves := n.collectLeaves(make([]*node, 0, n.leaves))

	merged := leaves[:0]
	for _, leaf := range leaves {
		if m := len(merged); m > 0 &&
			(merged[m-1].len() < MinLeafSize || leaf.len() < MinLeafSize) &&
			merged[m-1].len()+leaf.len() <= MaxLeafSize {
			merged[m-1] = newLeaf(merged[m-1].text + leaf.text)
			continue
		}
		merged = append(merged, leaf)
	}

	return buildBalanced(merged)
}

// leavesFromString slices s into leaf nodes of bounded size, preferring to
// break just after a newline so lines stay within single leaves.
func leavesFromString(s string) []*node {
	if len(s) == 0 {
		return nil
	}

	leaves := make([]*node, 0, len(s)/MaxLeafSize+1)
	for len(s) > MaxLeafSize {
		cut := splitPoint(s)
		leaves = append(leaves, newLeaf(s[:cut]))
		s = s[cut:]
	}
	return append(leaves, newLeaf(s))
}

// splitPoint picks a leaf boundary near MaxLeafSize, preferring the byte
// after a nearby newline and never splitting inside a UTF-8 sequence.
func splitPoint(s string) int {
	target := MaxLeafSize
	if target > len(s) {
		return len(s)
	}

	// Prefer a newline within a quarter-leaf of the target.
	low := target - MinLeafSize/2
	if low < 1 {
		low = 1
	}
	for i := target - 1; i >= low; i-- {
		if s[i-1] == '\n' {
			return i
		}
	}

	// Otherwise back up to a UTF-8 start byte.
	pos := target
	for pos > 0 && !isUTF8Start(s[pos]) {
		pos--
	}
	if pos == 0 {
		return target
	}
	return pos
}

// isUTF8Start returns true if the byte begins a UTF-8 sequence.
// Continuation bytes have the form 10xxxxxx.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}
