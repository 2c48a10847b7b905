package handlers

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultSessionIdle = 30 * time.Minute

type session[T any] struct {
	value      T
	createdAt  time.Time
	lastAccess time.Time
}

// sessionRegistry keeps per-client objects under random ids and closes the
// ones that have not been touched for the idle period.
type sessionRegistry[T any] struct {
	name    string
	idle    time.Duration
	closeFn func(T)
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session[T]

	done      chan struct{}
	closeOnce sync.Once
}

func newSessionRegistry[T any](name string, idle time.Duration, closeFn func(T)) *sessionRegistry[T] {
	if idle <= 0 {
		idle = defaultSessionIdle
	}
	r := &sessionRegistry[T]{
		name:     name,
		idle:     idle,
		closeFn:  closeFn,
		now:      time.Now,
		sessions: make(map[string]*session[T]),
		done:     make(chan struct{}),
	}
	go r.cleanupLoop()
	return r
}

func (r *sessionRegistry[T]) add(v T) string {
	id := uuid.New().String()
	now := r.now()
	r.mu.Lock()
	r.sessions[id] = &session[T]{value: v, createdAt: now, lastAccess: now}
	r.mu.Unlock()
	return id
}

// get returns the session value and marks it as used.
func (r *sessionRegistry[T]) get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		var zero T
		return zero, false
	}
	s.lastAccess = r.now()
	return s.value, true
}

func (r *sessionRegistry[T]) remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok && r.closeFn != nil {
		r.closeFn(s.value)
	}
	return ok
}

func (r *sessionRegistry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *sessionRegistry[T]) cleanupLoop() {
	interval := r.idle / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.cleanupStale()
		case <-r.done:
			return
		}
	}
}

// cleanupStale closes sessions that haven't been accessed within the idle period.
func (r *sessionRegistry[T]) cleanupStale() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var stale []T
	for id, s := range r.sessions {
		if s.lastAccess.Before(cutoff) {
			log.Printf("[%s] cleaning up idle session %s (age %s)", r.name, id, r.now().Sub(s.createdAt).Round(time.Second))
			stale = append(stale, s.value)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	if r.closeFn != nil {
		for _, v := range stale {
			r.closeFn(v)
		}
	}
	return len(stale)
}

// Close stops the cleanup loop and closes every remaining session.
func (r *sessionRegistry[T]) Close() {
	r.closeOnce.Do(func() {
		close(r.done)

		r.mu.Lock()
		all := make([]T, 0, len(r.sessions))
		for id, s := range r.sessions {
			all = append(all, s.value)
			delete(r.sessions, id)
		}
		r.mu.Unlock()

		if r.closeFn != nil {
			for _, v := range all {
				r.closeFn(v)
			}
		}
	})
}
