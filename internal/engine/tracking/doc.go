// Package tracking records buffer mutations for downstream consumers.
//
// It provides two views of change:
//
//   - A dirty region: the single contiguous span of the document that has
//     been modified since the last consumer pass. Renderers and persistence
//     layers call Take to drain it, which returns the region and resets the
//     tracker to clean. By default successive edits merge into the union of
//     their ranges; WithLastEditWins keeps only the most recent edit.
//   - A bounded ring of recent Change records, queryable by document
//     version ("what changed since version X?").
//
// All operations are thread-safe. Version numbers come from the buffer and
// are used for staleness detection by asynchronous consumers.
package tracking
