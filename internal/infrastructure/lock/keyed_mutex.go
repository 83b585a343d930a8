package lock

import (
	"context"
	"sync"
)

// KeyedMutex implements port.ConsumerLocker inside one process. Entries are
// dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot)}
}

func (m *KeyedMutex) Lock(ctx context.Context, consumerID string) (func(), error) {
	m.mu.Lock()
	s, ok := m.slots[consumerID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[consumerID] = s
	}
	s.refs++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(consumerID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			m.release(consumerID, s)
		})
	}, nil
}

func (m *KeyedMutex) release(consumerID string, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, consumerID)
	}
}

// held reports how many keys have holders or waiters.
func (m *KeyedMutex) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
