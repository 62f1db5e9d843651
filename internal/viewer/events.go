package viewer

import (
	"geoview/internal/logging"
	"geoview/internal/picking"
)

// Event names a viewer event.
type Event string

const (
	// EventObjectClicked carries a *SelectionEvent, nil for a click on
	// empty space.
	EventObjectClicked Event = "object-clicked"
	// EventLoadComplete carries the object count of a finished load.
	EventLoadComplete Event = "load-complete"
	// EventCameraChanged carries nothing; read the camera from the context.
	EventCameraChanged Event = "camera-changed"
	// EventSelectionChanged carries the selected object ids.
	EventSelectionChanged Event = "selection-changed"
)

// SelectionEvent is the result of a pick. Hits are sorted nearest first.
type SelectionEvent struct {
	Hits     []picking.Hit
	Multiple bool
}

type subscription struct {
	id uint64
	fn func(payload any)
}

// Events is a synchronous event bus. Handlers run on the emitting thread
// in subscription order.
type Events struct {
	next     uint64
	handlers map[Event][]subscription
}

// NewEvents returns an empty bus.
func NewEvents() *Events {
	return &Events{handlers: make(map[Event][]subscription)}
}

// On subscribes fn to ev and returns a function that unsubscribes it.
func (e *Events) On(ev Event, fn func(payload any)) func() {
	e.next++
	id := e.next
	e.handlers[ev] = append(e.handlers[ev], subscription{id: id, fn: fn})
	return func() {
		subs := e.handlers[ev]
		for i, s := range subs {
			if s.id == id {
				e.handlers[ev] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers payload to every handler of ev. A panicking handler is
// logged and skipped so the remaining handlers still run.
func (e *Events) Emit(ev Event, payload any) {
	subs := append([]subscription(nil), e.handlers[ev]...)
	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Logger().Warn("event handler panicked", "event", string(ev), "panic", r)
				}
			}()
			s.fn(payload)
		}()
	}
}

// Len returns the number of handlers for ev.
func (e *Events) Len(ev Event) int { return len(e.handlers[ev]) }
