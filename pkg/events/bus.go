// Package events is an in-process publish/subscribe bus for the
// lifecycle Events the orchestrator emits (play/task/handler
// start/finish). The logger and the live stream server are both
// subscribers.
//
// Adapted from a CallbackManager's register-plugin/fire-event shape
// (pkg/callback/callback.go), collapsed from
// a typed-method interface per event kind to a single Subscribe(func)
// form, since cinder only has one Event struct rather than one method
// per callback hook.
package events

import (
	"sync"

	"github.com/cinderops/cinder/pkg/types"
)

// Subscriber receives every Event published on a Bus.
type Subscriber func(types.Event)

// Bus fans a published Event out to every registered subscriber, in
// registration order.
type Bus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn to receive every future Publish call.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish fans event out to every subscriber synchronously, in
// registration order. A panicking subscriber is not recovered from —
// subscribers are expected to be well-behaved, like the logger and
// stream server cinder ships.
func (b *Bus) Publish(event types.Event) {
	b.mu.RLock()
	subscribers := make([]Subscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}
