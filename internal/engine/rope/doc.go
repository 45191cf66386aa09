// Package rope provides an immutable rope data structure for efficient text
// storage and manipulation.
//
// The rope is a balanced binary tree: leaf nodes own bounded string
// fragments, concat nodes own exactly two children and cache the byte and
// newline counts of their subtree. The cached newline counts double as the
// line index, so line lookups are a tree descent rather than a scan.
//
// Key properties:
//   - O(log n) insertion, deletion, split, and concat
//   - O(log n) line/offset conversion via per-node newline aggregates
//   - Operations return new ropes; originals are never modified
//   - Structural sharing makes snapshots O(1) and safe to read concurrently
//
// Basic usage:
//
//	r := rope.FromString("hello world")
//	r = r.Insert(5, ",")           // "hello, world"
//	r = r.Delete(0, 6)             // "world"
//	text := r.String()             // "world"
//
// Tree depth is kept within a constant slack of log2(leaf count) by
// rebuilding from collected leaves when an edit pushes the root past the
// threshold. This bounds the classic pathology of many sequential
// insertions at the same point.
package rope
