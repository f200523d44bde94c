package bus

import (
	"sync"

	"github.com/azeraturan/spiderfoot/internal/model"
)

// Bus fans emitted events out to every subscriber. Sends never block:
// a subscriber that falls behind loses events rather than stalling the
// pipeline.
type Bus struct {
	mu   sync.Mutex
	subs map[chan *model.Event]struct{}
}

func New() *Bus {
	return &Bus{subs: make(map[chan *model.Event]struct{})}
}

func (b *Bus) Subscribe() chan *model.Event {
	ch := make(chan *model.Event, 256)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(ch chan *model.Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

func (b *Bus) Publish(ev *model.Event) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.Unlock()
}

// Emit makes the bus usable as an event sink.
func (b *Bus) Emit(ev *model.Event) error {
	b.Publish(ev)
	return nil
}
