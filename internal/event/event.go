// Package event carries edit notifications from the session to derived
// consumers such as render caches.
//
// Delivery is synchronous and in subscription order: mutations come from
// a single logical writer, and a consumer must see the notification
// before the next mutation or query is observed. Handlers run on the
// publisher's goroutine and must not block.
package event

import "github.com/dshills/bufcore/internal/engine/buffer"

// Edit describes one applied buffer mutation. Range is the resulting
// span in post-edit coordinates. Consumers keying caches by line apply
// the invalidation rule: when LineCountChanged, every cached line at or
// after Line is stale; otherwise only Line itself is.
type Edit struct {
	Range            buffer.Range
	Line             uint32
	LineDelta        int32
	LineCountChanged bool
	Version          buffer.Version
}

// Handler receives published edits.
type Handler func(Edit)
