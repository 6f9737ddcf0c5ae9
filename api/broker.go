package api

import "sync"

// UpdateBroker fans a change signal out to every connected stream. It is the
// store's notifier: each mutation wakes all subscribers, which then re-read
// the store and push a fresh snapshot to their client.
type UpdateBroker struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewUpdateBroker() *UpdateBroker {
	return &UpdateBroker{subs: make(map[chan struct{}]struct{})}
}

// Notify wakes all subscribers. A subscriber that is already signalled is not
// queued twice; it will observe the latest state when it next reads.
func (b *UpdateBroker) Notify() {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

func (b *UpdateBroker) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *UpdateBroker) unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}
