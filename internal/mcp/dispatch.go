package mcp

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// dispatcherCapacity bounds concurrently running background tasks.
const dispatcherCapacity = 64

// Dispatcher runs fire-and-forget notification work on a process-lifetime
// task group. Once shutdown begins, scheduling becomes a no-op: notifications
// are advisory telemetry, dropped rather than queued.
type Dispatcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	slots  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a dispatcher whose tasks are cancelled when the
// parent context ends.
func NewDispatcher(parent context.Context) *Dispatcher {
	ctx, cancel := context.WithCancel(parent)
	return &Dispatcher{
		ctx:    ctx,
		cancel: cancel,
		slots:  make(chan struct{}, dispatcherCapacity),
	}
}

// Schedule submits a unit of work. It returns false when the dispatcher is
// shut down or at capacity; in either case the work is dropped, not queued.
func (d *Dispatcher) Schedule(task func(ctx context.Context)) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	select {
	case d.slots <- struct{}{}:
	default:
		d.mu.Unlock()
		log.Warn().Msg("notification dispatcher at capacity, dropping task")
		return false
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer func() {
			<-d.slots
			d.wg.Done()
		}()
		task(d.ctx)
	}()
	return true
}

// Shutdown stops accepting work, cancels in-flight tasks, and waits for them
// to return. Partial notifications are abandoned, never retried.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}
