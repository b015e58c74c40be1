package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/pkg/metrics"
)

const defaultSweepInterval = 30 * time.Second

type subscriber struct {
	ch chan model.RenderedFrame
}

// offer delivers f, replacing an unread older frame. Only the store sends on
// ch, always under the store lock, so the second send cannot block.
func (sub *subscriber) offer(f model.RenderedFrame) {
	select {
	case sub.ch <- f:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- f:
	default:
	}
}

type sessionState struct {
	session model.Session
	latest  *model.RenderedFrame
	subs    map[uint64]*subscriber
}

// MemoryStore is an in-memory Store. Frames of a session are ordered by Seq
// with last-writer-wins semantics.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	nextSub  uint64
	closed   bool

	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore constructs a store and starts the idle sweeper when a TTL is set.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:      make(map[string]*sessionState),
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		s.startSweeper(ctx)
	}
	return s
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *MemoryStore) Sweep(_ context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, st := range s.sessions {
		if st.session.LastSeen.Before(cutoff) {
			s.dropLocked(id, st)
			removed++
		}
	}
	if removed > 0 {
		metrics.RecordSessionsExpired(removed)
		s.updateGaugesLocked()
	}
	return removed
}

// Close stops the sweeper and closes every subscriber channel.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, st := range s.sessions {
		s.closeSubsLocked(st)
	}
	s.updateGaugesLocked()
	return nil
}

func (s *MemoryStore) CreateSession(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.sessions[sess.ID]; ok {
		return fmt.Errorf("create session %s: %w", sess.ID, ErrSessionExists)
	}
	now := s.now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.LastSeen = now
	sess.ReferencePitch = append([]float64(nil), sess.ReferencePitch...)
	s.sessions[sess.ID] = &sessionState{session: sess, subs: make(map[uint64]*subscriber)}
	s.updateGaugesLocked()
	return nil
}

func (s *MemoryStore) Session(_ context.Context, id string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[id]
	if !ok {
		return model.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return st.session, nil
}

func (s *MemoryStore) Publish(_ context.Context, f model.RenderedFrame) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[f.SessionID]
	if !ok {
		return false, fmt.Errorf("publish to session %s: %w", f.SessionID, ErrNotFound)
	}
	st.session.LastSeen = s.now()
	if st.latest != nil && f.Seq <= st.latest.Seq {
		return false, nil
	}
	stored := f
	st.latest = &stored
	for _, sub := range st.subs {
		sub.offer(f)
	}
	return true, nil
}

func (s *MemoryStore) Latest(_ context.Context, id string) (model.RenderedFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[id]
	if !ok {
		return model.RenderedFrame{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if st.latest == nil {
		return model.RenderedFrame{}, fmt.Errorf("session %s: %w", id, ErrNoFrame)
	}
	return *st.latest, nil
}

// Subscribe delivers the current latest frame, if any, right away.
func (s *MemoryStore) Subscribe(_ context.Context, id string) (<-chan model.RenderedFrame, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, ErrClosed
	}
	st, ok := s.sessions[id]
	if !ok {
		return nil, nil, fmt.Errorf("subscribe to session %s: %w", id, ErrNotFound)
	}
	s.nextSub++
	key := s.nextSub
	sub := &subscriber{ch: make(chan model.RenderedFrame, 1)}
	if st.latest != nil {
		sub.offer(*st.latest)
	}
	st.subs[key] = sub
	s.updateGaugesLocked()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := st.subs[key]; ok && cur == sub {
				delete(st.subs, key)
				close(sub.ch)
				s.updateGaugesLocked()
			}
		})
	}
	return sub.ch, cancel, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("delete session %s: %w", id, ErrNotFound)
	}
	s.dropLocked(id, st)
	s.updateGaugesLocked()
	return nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) dropLocked(id string, st *sessionState) {
	s.closeSubsLocked(st)
	delete(s.sessions, id)
}

func (s *MemoryStore) closeSubsLocked(st *sessionState) {
	for key, sub := range st.subs {
		close(sub.ch)
		delete(st.subs, key)
	}
}

func (s *MemoryStore) updateGaugesLocked() {
	n := 0
	for _, st := range s.sessions {
		n += len(st.subs)
	}
	metrics.UpdateSessionsActive(len(s.sessions))
	metrics.UpdateSubscribers(n)
}
