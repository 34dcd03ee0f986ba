package pubsub

import (
	"fmt"
	"weak"
)

// ownerRef is a non-owning reference to the value a subscription belongs to.
type ownerRef interface {
	alive() bool
	is(x any) bool
	String() string
}

type weakOwner[O any] struct {
	ptr weak.Pointer[O]
}

// A nil owner yields a reference that is dead from the start.
func newOwnerRef[O any](owner *O) ownerRef {
	return weakOwner[O]{ptr: weak.Make(owner)}
}

func (w weakOwner[O]) alive() bool {
	return w.ptr.Value() != nil
}

// is reports pointer identity. Weak pointers made from the same pointer compare equal.
func (w weakOwner[O]) is(x any) bool {
	p, ok := x.(*O)
	if !ok || p == nil {
		return false
	}
	return w.ptr == weak.Make(p)
}

func (w weakOwner[O]) String() string {
	return fmt.Sprintf("%T", (*O)(nil))
}
