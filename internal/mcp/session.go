package mcp

import (
	"context"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// transportBufferSize is how many undelivered notifications a session
	// stream buffers before new ones are dropped for that stream (they remain
	// replayable from the event log).
	transportBufferSize = 16

	// sessionSweepInterval is how often idle sessions are reaped.
	sessionSweepInterval = 5 * time.Minute

	// sessionIdleExpiry is how long a session may go unused before the
	// sweeper removes it.
	sessionIdleExpiry = 1 * time.Hour
)

// Transport owns the single bidirectional message stream for one session.
// Live notifications flow through its channel; missed ones are recovered from
// the event log on reconnect.
type Transport struct {
	ID string

	notify    chan Event
	closed    chan struct{}
	closeOnce sync.Once
	attached  atomic.Bool

	createdAt time.Time
	lastUsed  time.Time // guarded by the owning registry's mutex
}

// Attach claims the single live stream slot. It reports false when another
// stream already holds it.
func (t *Transport) Attach() bool { return t.attached.CompareAndSwap(false, true) }

// Detach releases the stream slot so the session can reconnect.
func (t *Transport) Detach() { t.attached.Store(false) }

// Notify exposes the live notification channel for SSE delivery.
func (t *Transport) Notify() <-chan Event { return t.notify }

// Closed is closed when the transport has been torn down.
func (t *Transport) Closed() <-chan struct{} { return t.closed }

// Send delivers an event to a connected stream without blocking the caller.
// It reports false when the transport is closed or the stream buffer is full.
func (t *Transport) Send(ev Event) bool {
	select {
	case <-t.closed:
		return false
	default:
	}
	select {
	case t.notify <- ev:
		return true
	default:
		return false
	}
}

// Close tears the transport down. Safe to call more than once.
func (t *Transport) Close() {
	t.closeOnce.Do(func() { close(t.closed) })
}

// Registry owns the session-id to transport mapping. Lookups of known
// sessions take only a read lock; creation is serialized by a dedicated
// mutex so two session-less requests can never race to register the same id.
type Registry struct {
	mu       sync.RWMutex
	createMu sync.Mutex
	sessions map[string]*Transport
}

// NewRegistry returns an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Transport)}
}

// Get returns the transport for a known session id.
func (r *Registry) Get(id string) (*Transport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.sessions[id]
	return t, ok
}

// Create generates a fresh session id, constructs its transport, and
// registers it. The exclusive lock covers only this O(1) bookkeeping, never
// I/O.
func (r *Registry) Create() *Transport {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	id := newSessionID()
	now := time.Now()
	t := &Transport{
		ID:        id,
		notify:    make(chan Event, transportBufferSize),
		closed:    make(chan struct{}),
		createdAt: now,
		lastUsed:  now,
	}

	r.mu.Lock()
	r.sessions[id] = t
	r.mu.Unlock()

	log.Info().Str("session_id", id).Msg("created new session transport")
	return t
}

// Touch records session activity so the sweeper does not reap live sessions.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.sessions[id]; ok {
		t.lastUsed = time.Now()
	}
}

// Remove closes and deregisters one session.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	t, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		t.Close()
	}
	return ok
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll cancels every transport and clears the mapping. Called on process
// shutdown; the registry is in-memory only and must not leak transports
// across restarts.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	transports := make([]*Transport, 0, len(r.sessions))
	for _, t := range r.sessions {
		transports = append(transports, t)
	}
	r.sessions = make(map[string]*Transport)
	r.mu.Unlock()

	for _, t := range transports {
		t.Close()
	}
}

// Sweep reaps idle sessions until ctx is cancelled.
func (r *Registry) Sweep(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-sessionIdleExpiry)
			r.mu.Lock()
			for id, t := range r.sessions {
				if t.lastUsed.Before(cutoff) {
					t.Close()
					delete(r.sessions, id)
					log.Info().Str("session_id", id).Msg("reaped idle session")
				}
			}
			r.mu.Unlock()
		}
	}
}

// newSessionID returns a 128-bit random token as 32 hex characters.
func newSessionID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
