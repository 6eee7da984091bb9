package session

import (
	"context"
	"sync"
	"time"

	"github.com/napryag/laundry_pickup/pkg/domain/mappan"
)

type entry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is a process-local Store, safe for concurrent use. Sessions
// are stored encoded so callers never share a *Session between requests.
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{m: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(e.expires) {
		s.mu.Lock()
		// a Save may have refreshed the entry since the read lock was released
		if cur, ok := s.m[id]; ok && !s.now().Before(cur.expires) {
			delete(s.m, id)
		} else if ok {
			s.mu.Unlock()
			return decode(cur.data)
		}
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return decode(e.data)
}

// Save stores s and restarts its expiry.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = entry{data: data, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) SaveMap(_ context.Context, id string, m mappan.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok || !s.now().Before(e.expires) {
		return ErrNotFound
	}
	sess, err := decode(e.data)
	if err != nil {
		return err
	}
	sess.Map = m
	data, err := encode(sess)
	if err != nil {
		return err
	}
	s.m[id] = entry{data: data, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.m {
		if !now.Before(e.expires) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
