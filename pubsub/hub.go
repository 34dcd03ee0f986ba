package pubsub

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Hub is an in-process message broker. The zero value is not usable; create
// one with [New]. A Hub is safe for concurrent use.
type Hub struct {
	name   string
	logger *slog.Logger

	mu  sync.Mutex // guards reg
	reg registry

	metrics metrics
}

// New creates an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		name:   defaultName,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Name returns the hub's name as used in log records.
func (h *Hub) Name() string { return h.name }

// Subscribe registers fn for messages of type T published with a routing key
// that matches routingKey. An empty routingKey receives only publishes that
// carry no key.
//
// The subscription lives as long as owner is reachable or until it is removed
// with one of the unsubscribe calls. The hub holds owner weakly, so fn must not
// capture owner or it will keep it alive for the lifetime of the hub. Owner must
// point to a value of non-zero size. A nil owner yields a subscription that is
// never called and is purged by the next scan.
func Subscribe[T, O any](h *Hub, owner *O, routingKey string, fn Handler[T]) *Subscription {
	return subscribe(h, newOwnerRef(owner), routingKey, fn)
}

// SubscribeHub is like [Subscribe] with the hub itself as owner, so the
// subscription stays alive for as long as the hub does.
func SubscribeHub[T any](h *Hub, routingKey string, fn Handler[T]) *Subscription {
	return subscribe(h, newOwnerRef(h), routingKey, fn)
}

func subscribe[T any](h *Hub, owner ownerRef, routingKey string, fn Handler[T]) *Subscription {
	if fn == nil {
		panic("pubsub: nil handler")
	}

	typ := reflect.TypeFor[T]()
	sub := newSubscription(h, typ, routingKey)

	e := &entry{
		owner:   owner,
		typ:     typ,
		pattern: routingKey,
		call: func(msg any) error {
			// msg is nil when an interface-typed publish carries a nil value.
			v, _ := msg.(T)
			return fn(v)
		},
		sub: sub,
	}

	h.mu.Lock()
	h.reg.insert(e)
	h.mu.Unlock()

	h.metrics.subscribed.Add(1)
	h.logger.Debug("subscribed",
		slog.String("hub_name", h.name),
		slog.String("subscription_id", sub.id),
		slog.String("owner", owner.String()),
		slog.String("type", typ.String()),
		slog.String("pattern", routingKey),
	)

	return sub
}

// Publish delivers data on behalf of the hub itself. See [PublishFrom].
func Publish[T any](h *Hub, routingKey string, data T) error {
	return PublishFrom(h, h, routingKey, data)
}

// PublishFrom delivers data to every live subscription whose payload type is T,
// or an interface type T implements. T is the static type at the call site: a
// subscriber for an interface type receives publishes of any type implementing
// it, while other assignable types such as a named slice or a directional
// channel do not reach it.
//
// With a non-empty routingKey only subscriptions whose pattern matches the key
// are called; subscriptions without a pattern are skipped. With an empty routingKey
// every type-matching subscription is called regardless of its pattern.
//
// Handlers run synchronously in registration order on the calling goroutine,
// without the hub's lock held, so they may subscribe, unsubscribe or publish.
// The first handler error stops dispatch and is returned as is.
func PublishFrom[T any](h *Hub, sender any, routingKey string, data T) error {
	h.mu.Lock()
	live, purged := h.reg.snapshotAndPurgeDead()
	h.mu.Unlock()

	h.metrics.published.Add(1)
	h.recordPurge("publish", purged)

	typ := reflect.TypeFor[T]()
	h.logger.Debug("publish",
		slog.String("hub_name", h.name),
		slog.String("sender", fmt.Sprintf("%T", sender)),
		slog.String("type", typ.String()),
		slog.String("routing_key", routingKey),
		slog.Int("candidates", len(live)),
	)

	for _, e := range live {
		if !accepts(e.typ, typ) {
			continue
		}
		if routingKey != "" && !routes(routingKey, e.pattern) {
			continue
		}
		// The owner may have been collected since the snapshot was taken.
		if !e.owner.alive() {
			continue
		}

		h.metrics.delivered.Add(1)
		if err := e.call(data); err != nil {
			return err
		}
	}

	return nil
}

// accepts reports whether a subscription for want can be handed a value
// published as typ.
func accepts(want, typ reflect.Type) bool {
	if want == typ {
		return true
	}
	return want.Kind() == reflect.Interface && typ.Implements(want)
}

// routes reports whether a keyed publish reaches a subscription's pattern.
// Wildcards belong to the pattern; the key is always literal.
func routes(key, pattern string) bool {
	if pattern == "" {
		return false
	}
	return Match(key, pattern)
}

// Unsubscribe removes every subscription made on behalf of owner, of any type.
// Pass the hub itself to remove subscriptions made with [SubscribeHub].
// Subscriptions whose owner is gone are removed as well.
func (h *Hub) Unsubscribe(owner any) {
	h.remove("owner", func(e *entry) bool {
		return e.owner.is(owner)
	})
}

// UnsubscribeType removes the subscriptions of owner whose payload type is
// exactly T.
func UnsubscribeType[T any](h *Hub, owner any) {
	typ := reflect.TypeFor[T]()
	h.remove("type", func(e *entry) bool {
		return e.owner.is(owner) && e.typ == typ
	})
}

// UnsubscribeHandler removes the subscription of owner with payload type T
// identified by sub. A nil sub behaves like [UnsubscribeType].
func UnsubscribeHandler[T any](h *Hub, owner any, sub *Subscription) {
	if sub == nil {
		UnsubscribeType[T](h, owner)
		return
	}

	typ := reflect.TypeFor[T]()
	h.remove("handler", func(e *entry) bool {
		return e.owner.is(owner) && e.typ == typ && e.sub == sub
	})
}

// Exists reports whether owner holds a live subscription for exactly type T.
func Exists[T any](h *Hub, owner any) bool {
	typ := reflect.TypeFor[T]()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.reg.find(func(e *entry) bool {
		return e.owner.is(owner) && e.typ == typ
	})
}

// Len returns the number of stored subscriptions. Entries whose owner has gone
// away are counted until the next publish or unsubscribe purges them.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reg.len()
}

// remove runs one locked scan that drops dead entries and those matching pred.
func (h *Hub) remove(scope string, pred func(*entry) bool) {
	h.mu.Lock()
	removed, purged := h.reg.removeWhere(pred)
	h.mu.Unlock()

	h.metrics.removed.Add(int64(removed))
	h.recordPurge(scope, purged)
	h.logger.Debug("unsubscribed",
		slog.String("hub_name", h.name),
		slog.String("scope", scope),
		slog.Int("removed", removed),
	)
}

func (h *Hub) recordPurge(op string, purged int) {
	if purged == 0 {
		return
	}
	h.metrics.purged.Add(int64(purged))
	h.logger.Debug("purged dead subscriptions",
		slog.String("hub_name", h.name),
		slog.String("op", op),
		slog.Int("purged", purged),
	)
}
