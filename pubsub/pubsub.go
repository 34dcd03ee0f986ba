// Package pubsub provides an in-process publish-subscribe hub for typed messages.
//
// Components exchange messages through a [Hub] without holding references to
// each other. A subscription is keyed by the payload type of its handler and an
// optional dot-separated routing pattern. The owner a subscription is made on
// behalf of is held weakly: once the owner becomes unreachable the subscription
// goes inert and is purged the next time the hub scans its registry.
//
// Go has no generic methods, so the typed operations are package functions
// that take the hub as their first argument:
//
//	hub := pubsub.New()
//	pubsub.Subscribe(hub, owner, "orders.*", func(o OrderPlaced) error {
//		return nil
//	})
//	err := pubsub.Publish(hub, "orders.eu", OrderPlaced{ID: "42"})
//
// Delivery is synchronous, on the publisher's goroutine, in registration order.
// The first handler error aborts the remaining dispatch and is returned to the
// publisher unchanged.
//
// Routing keys are segments joined by '.'. In patterns '*' matches exactly one
// segment and '#' matches one or more segments. See [Match].
package pubsub

import (
	"reflect"

	"github.com/google/uuid"
)

// Handler receives a published message.
// A non-nil error stops dispatch of the current publish and is returned by it.
type Handler[T any] func(msg T) error

// Subscription is the handle returned by every subscribe call.
// It identifies exactly one registry entry.
type Subscription struct {
	id      string
	pattern string
	typ     reflect.Type
	hub     *Hub
}

func newSubscription(h *Hub, typ reflect.Type, pattern string) *Subscription {
	return &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		typ:     typ,
		hub:     h,
	}
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string { return s.id }

// Pattern returns the routing pattern the subscription was registered with.
func (s *Subscription) Pattern() string { return s.pattern }

// Type returns the payload type the handler accepts.
func (s *Subscription) Type() reflect.Type { return s.typ }

// Unsubscribe removes this subscription from its hub, together with any entry
// whose owner is no longer reachable. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	s.hub.remove("subscription", func(e *entry) bool {
		return e.sub == s
	})
}
