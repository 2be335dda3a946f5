package player

import (
	"math"
	"sync"
)

// Broadcaster fans notifications out to subscribers in the order they subscribed.
// Resources embed it to implement Subscribe.
type Broadcaster struct {
	mu   sync.Mutex
	next int
	subs []subscription
}

type subscription struct {
	id     int
	events Events
}

// Subscribe adds events; the returned cancel is idempotent.
func (b *Broadcaster) Subscribe(events Events) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.subs = append(b.subs, subscription{id: id, events: events})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// snapshot is taken so handlers run without holding the lock and may unsubscribe.
func (b *Broadcaster) snapshot() []Events {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := make([]Events, len(b.subs))
	for i, s := range b.subs {
		events[i] = s.events
	}
	return events
}

func (b *Broadcaster) EmitTimeAdvance(current, duration float64) {
	for _, e := range b.snapshot() {
		if e.TimeAdvance != nil {
			e.TimeAdvance(current, duration)
		}
	}
}

func (b *Broadcaster) EmitMetadataLoaded(duration float64) {
	if math.IsNaN(duration) || duration <= 0 {
		return
	}
	for _, e := range b.snapshot() {
		if e.MetadataLoaded != nil {
			e.MetadataLoaded(duration)
		}
	}
}

func (b *Broadcaster) EmitEnded() {
	for _, e := range b.snapshot() {
		if e.Ended != nil {
			e.Ended()
		}
	}
}

func (b *Broadcaster) EmitFullscreenChange(on bool) {
	for _, e := range b.snapshot() {
		if e.FullscreenChange != nil {
			e.FullscreenChange(on)
		}
	}
}

func (b *Broadcaster) EmitPauseChange(paused bool) {
	for _, e := range b.snapshot() {
		if e.PauseChange != nil {
			e.PauseChange(paused)
		}
	}
}
