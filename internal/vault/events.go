package vault

import (
	"context"
	"errors"
)

// Event names a collection change delivered to subscribers.
type Event string

const (
	Created Event = "created"
	Renamed Event = "renamed"
)

// Handler receives the entry an event is about. For Renamed it is the entry
// under its new path.
type Handler func(ctx context.Context, file FileRef) error

// SubscriptionID identifies one On registration; pass it to Off.
type SubscriptionID uint64

type subscriber struct {
	id      SubscriptionID
	handler Handler
}

// On registers handler for event and returns the id to unregister it with.
func (v *Vault) On(event Event, handler Handler) SubscriptionID {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	v.handlers[event] = append(v.handlers[event], subscriber{id: v.nextID, handler: handler})
	return v.nextID
}

// Off removes a registration. Unknown ids are ignored.
func (v *Vault) Off(event Event, id SubscriptionID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	subs := v.handlers[event]
	for i, s := range subs {
		if s.id == id {
			v.handlers[event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns how many handlers are registered for event.
func (v *Vault) Subscribers(event Event) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.handlers[event])
}

// Emit calls every handler of event in registration order and returns their
// errors joined.
func (v *Vault) Emit(ctx context.Context, event Event, file FileRef) error {
	v.mu.Lock()
	subs := append([]subscriber(nil), v.handlers[event]...)
	v.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if err := s.handler(ctx, file); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
