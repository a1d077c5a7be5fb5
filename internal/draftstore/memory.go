package draftstore

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// DefaultUserBudget caps the bytes of draft data held per user.
const DefaultUserBudget = 4 << 20

// MemoryStore keeps drafts in process memory with a per-user byte
// budget standing in for browser storage quota.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[uint64]map[string]string
	usage  map[uint64]int
	budget int
}

// NewMemoryStore constructs a MemoryStore. A non-positive budget falls
// back to DefaultUserBudget.
func NewMemoryStore(budget int) *MemoryStore {
	if budget <= 0 {
		budget = DefaultUserBudget
	}
	return &MemoryStore{
		drafts: make(map[uint64]map[string]string),
		usage:  make(map[uint64]int),
		budget: budget,
	}
}

// Set stores the draft. When the user's budget is exhausted it evicts
// the predefined heavy keys and retries once; a second failure drops
// the write silently.
func (s *MemoryStore) Set(_ context.Context, userID uint64, key, value string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setLocked(userID, key, value) {
		return
	}

	s.evictHeavyLocked(userID)
	if s.setLocked(userID, key, value) {
		return
	}
	log.WithField("key", key).Debug("draft store: write dropped after eviction")
}

// Get returns the stored draft, or ("", false) when absent.
func (s *MemoryStore) Get(_ context.Context, userID uint64, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.drafts[userID][key]
	return value, ok
}

// Remove deletes the draft if present.
func (s *MemoryStore) Remove(_ context.Context, userID uint64, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(userID, key)
}

// setLocked writes the entry when it fits the budget.
func (s *MemoryStore) setLocked(userID uint64, key, value string) bool {
	next := s.usage[userID] + len(key) + len(value)
	if prev, ok := s.drafts[userID][key]; ok {
		next -= len(key) + len(prev)
	}
	if next > s.budget {
		return false
	}

	if s.drafts[userID] == nil {
		s.drafts[userID] = make(map[string]string)
	}
	s.drafts[userID][key] = value
	s.usage[userID] = next
	return true
}

// evictHeavyLocked drops the bulky draft slots for the user.
func (s *MemoryStore) evictHeavyLocked(userID uint64) {
	for _, key := range HeavyKeys() {
		s.removeLocked(userID, key)
	}
}

func (s *MemoryStore) removeLocked(userID uint64, key string) {
	value, ok := s.drafts[userID][key]
	if !ok {
		return
	}
	delete(s.drafts[userID], key)
	s.usage[userID] -= len(key) + len(value)
	if s.usage[userID] < 0 {
		s.usage[userID] = 0
	}
}
