package pubsub

import "reflect"

// entry is a single registered subscription.
type entry struct {
	owner   ownerRef
	typ     reflect.Type
	pattern string
	call    func(msg any) error
	sub     *Subscription
}

// registry is the ordered list of entries held by a Hub.
// It is not safe for concurrent use; the Hub serialises access with its mutex.
// Slices returned to callers never alias the registry's backing array.
type registry struct {
	entries []*entry
}

func (r *registry) insert(e *entry) {
	r.entries = append(r.entries, e)
}

func (r *registry) len() int {
	return len(r.entries)
}

// snapshotAndPurgeDead drops entries whose owner is gone and returns a copy of
// the live ones in registration order, in one pass.
func (r *registry) snapshotAndPurgeDead() (live []*entry, purged int) {
	live = make([]*entry, 0, len(r.entries))
	kept := r.entries[:0]

	for _, e := range r.entries {
		if !e.owner.alive() {
			continue
		}
		kept = append(kept, e)
		live = append(live, e)
	}

	purged = len(r.entries) - len(kept)
	clear(r.entries[len(kept):])
	r.entries = kept

	return live, purged
}

// removeWhere deletes every entry matching pred along with every dead entry.
// removed counts live entries matching pred, purged the dead ones.
func (r *registry) removeWhere(pred func(*entry) bool) (removed, purged int) {
	kept := r.entries[:0]

	for _, e := range r.entries {
		switch {
		case !e.owner.alive():
			purged++
		case pred(e):
			removed++
		default:
			kept = append(kept, e)
		}
	}

	clear(r.entries[len(kept):])
	r.entries = kept

	return removed, purged
}

// find reports whether any live entry matches pred.
func (r *registry) find(pred func(*entry) bool) bool {
	for _, e := range r.entries {
		if e.owner.alive() && pred(e) {
			return true
		}
	}
	return false
}
