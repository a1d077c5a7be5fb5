package ledger

import (
	"sync"

	"github.com/adsmith-studio/adsmith-backend/internal/models"
)

// BalanceEvent describes a completed token balance mutation.
type BalanceEvent struct {
	UserID    uint64                      // Affected user.
	Kind      models.TokenTransactionType // Mutation kind.
	Remaining int64                       // Tokens left after the mutation.
	Used      int64                       // Tokens consumed in the period.
	Limit     int64                       // Period allotment.
}

// BalanceNotifier fans balance events out to subscribers. Publishing
// never blocks: a subscriber whose channel is full misses the event and
// is expected to refetch the balance on its next cycle.
type BalanceNotifier struct {
	mu     sync.Mutex
	subs   map[uint64]chan BalanceEvent
	nextID uint64
}

// NewBalanceNotifier constructs a BalanceNotifier.
func NewBalanceNotifier() *BalanceNotifier {
	return &BalanceNotifier{subs: make(map[uint64]chan BalanceEvent)}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. Buffer must be at least 1.
func (n *BalanceNotifier) Subscribe(buffer int) (<-chan BalanceEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan BalanceEvent, buffer)

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if existing, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(existing)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber that has room.
func (n *BalanceNotifier) Publish(event BalanceEvent) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
