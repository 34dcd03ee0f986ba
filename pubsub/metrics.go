package pubsub

import "sync/atomic"

// Stats is a point-in-time view of a hub's counters.
type Stats struct {
	// Subscriptions is the number of entries currently stored.
	Subscriptions int
	// Subscribed counts subscribe calls.
	Subscribed int64
	// Published counts publish calls.
	Published int64
	// Delivered counts handler invocations.
	Delivered int64
	// Purged counts entries dropped because their owner was gone, by any scan.
	Purged int64
	// Removed counts live entries dropped by unsubscribe calls.
	Removed int64
}

type metrics struct {
	subscribed atomic.Int64
	published  atomic.Int64
	delivered  atomic.Int64
	purged     atomic.Int64
	removed    atomic.Int64
}

// Stats returns the hub's counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Subscriptions: h.Len(),
		Subscribed:    h.metrics.subscribed.Load(),
		Published:     h.metrics.published.Load(),
		Delivered:     h.metrics.delivered.Load(),
		Purged:        h.metrics.purged.Load(),
		Removed:       h.metrics.removed.Load(),
	}
}
