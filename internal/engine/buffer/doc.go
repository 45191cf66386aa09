// Package buffer provides a thread-safe text buffer built on top of the
// rope data structure. It is the authoritative owner of document content
// and the primary mutation interface for the engine.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Fail-fast validation: out-of-range arguments return sentinel errors
//     rather than being silently clamped (explicit Clamp helpers exist for
//     UI-facing callers)
//   - Coordinate conversion between byte offsets and line/column positions
//   - UTF-16 coordinate support for LSP collaborators
//   - Read-only snapshots for concurrent background readers
//   - Line ending normalization at ingestion
//   - A per-buffer monotonic document version for staleness detection
//
// Basic usage:
//
//	buf := buffer.NewFromString("Hello, World!")
//	buf.Insert(7, "Beautiful ")  // "Hello, Beautiful World!"
//	buf.Delete(0, 7)             // "Beautiful World!"
//
//	snap := buf.Snapshot()
//	go func() {
//	    text := snap.Text() // consistent even while edits continue
//	}()
//
// Every successful mutation increments the document version. Asynchronous
// consumers capture the version with their input and compare it against
// the current value before applying results.
package buffer
