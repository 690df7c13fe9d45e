package ecs

import (
	"iter"
	"reflect"
)

// Events is a double-buffered event queue stored as a resource. Events sent
// during frame N are readable during frame N+1 and dropped afterwards.
type Events[T any] struct {
	previous    []T
	current     []T
	subscribers []func(T)
}

// Send queues an event for the next frame.
func (e *Events[T]) Send(event T) {
	e.current = append(e.current, event)
}

// Read yields the events sent during the previous frame.
func (e *Events[T]) Read() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, event := range e.previous {
			if !yield(event) {
				return
			}
		}
	}
}

// Len returns the number of readable events.
func (e *Events[T]) Len() int {
	return len(e.previous)
}

// Pending returns the number of events queued for the next frame.
func (e *Events[T]) Pending() int {
	return len(e.current)
}

// swap rotates current into previous and clears the old previous buffer.
func (e *Events[T]) swap() {
	clear(e.previous)
	e.previous, e.current = e.current, e.previous[:0]
}

func (e *Events[T]) dispatch() {
	if len(e.subscribers) == 0 {
		return
	}
	for _, event := range e.previous {
		for _, fn := range e.subscribers {
			fn(event)
		}
	}
}

// eventQueue swaps one registered Events resource at frame end.
type eventQueue struct {
	typ  reflect.Type
	swap func(r *Resources)
}

// AddEvent registers an Events[T] resource swapped at the end of every frame.
// Calling it again for the same T only restores the resource if it was removed.
func AddEvent[T any](s *Scheduler) {
	res := s.storage.resources
	if !HasResource[Events[T]](res) {
		InsertResource(res, Events[T]{})
	}

	t := reflect.TypeFor[Events[T]]()
	if _, ok := s.eventTypes[t]; ok {
		return
	}
	s.eventTypes[t] = struct{}{}
	s.events = append(s.events, eventQueue{
		typ: t,
		swap: func(r *Resources) {
			if events := ResourceMut[Events[T]](r); events != nil {
				events.swap()
				events.dispatch()
			}
		},
	})
}

// SendEvent publishes an event from outside the frame loop, e.g. an input
// layer. It becomes readable after the next frame boundary.
func SendEvent[T any](s *Scheduler, event T) {
	AddEvent[T](s)
	ResourceMut[Events[T]](s.storage.resources).Send(event)
}

// ReadEvents yields the events readable during the current frame.
func ReadEvents[T any](s *Scheduler) iter.Seq[T] {
	events := ResourceMut[Events[T]](s.storage.resources)
	if events == nil {
		return func(func(T) bool) {}
	}
	return events.Read()
}

// SubscribeEvents registers fn to receive every event of type T as it becomes
// readable, at the end of the frame that published it.
func SubscribeEvents[T any](s *Scheduler, fn func(T)) {
	AddEvent[T](s)
	events := ResourceMut[Events[T]](s.storage.resources)
	events.subscribers = append(events.subscribers, fn)
}
