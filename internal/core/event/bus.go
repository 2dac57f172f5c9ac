package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered when the loop calls Flush at the start of tick N+1, so a
// subscriber never observes a command half-applied.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
	pending  int
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer. A nil bus drops the event,
// which keeps unit tests free of wiring.
func Emit[T any](b *Bus, ev T) {
	if b == nil {
		return
	}
	t := typeKey[T]()
	b.back[t] = append(b.back[t], ev)
	b.pending++
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeKey[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Pending reports how many events wait for the next Flush.
func (b *Bus) Pending() int { return b.pending }

// Flush rotates back→front and delivers every front event to its
// subscribers. Events emitted by handlers during delivery land in the new
// back buffer.
func (b *Bus) Flush() {
	b.front, b.back = b.back, b.front
	b.pending = 0
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
	for t, events := range b.front {
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				reflect.ValueOf(h).Call([]reflect.Value{reflect.ValueOf(ev)})
			}
		}
	}
}
