package guest

import "sync"

// Storage keys for the two aggregates. They are stable identifiers:
// changing them orphans previously persisted guest state.
const (
	cartKey     = "agrilink_guest_cart"
	wishlistKey = "agrilink_guest_wishlist"
)

// Event is broadcast by a Store after every successful write.
type Event struct {
	Key   string
	Value []byte
}

// Store is the key-value capability the guest layer persists through.
// Get reports absence as (nil, false) and must never fail hard: backends
// that cannot read degrade to absence. Set and Delete may fail; callers
// treat those failures as degraded-but-safe and only log them.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Subscribe(fn func(Event)) (cancel func())
}

// broadcaster implements the subscription list shared by all Store
// backends.
type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func (b *broadcaster) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *broadcaster) publish(event Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}
