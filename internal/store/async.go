package store

import (
	"log"
	"sync"

	"github.com/theirongolddev/japa/internal/model"
)

// Backend is the synchronous gateway an AsyncGateway writes through.
type Backend interface {
	Load() (model.State, error)
	Save(model.State) error
}

// AsyncGateway makes saves fire-and-forget. Only the newest pending state is
// kept; older pending states are overwritten before they reach the backend.
// Write failures are logged and dropped.
type AsyncGateway struct {
	backend Backend

	mu      sync.Mutex
	pending *model.State
	closed  bool

	wake chan struct{}
	done chan struct{}
	idle *sync.Cond
	busy bool
}

// NewAsyncGateway starts the background writer.
func NewAsyncGateway(backend Backend) *AsyncGateway {
	g := &AsyncGateway{
		backend: backend,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	g.idle = sync.NewCond(&g.mu)
	go g.run()
	return g
}

// Load reads through to the backend.
func (g *AsyncGateway) Load() (model.State, error) {
	return g.backend.Load()
}

// Save queues st and returns immediately. The caller must not mutate st
// afterwards; pass a clone.
func (g *AsyncGateway) Save(st model.State) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.pending = &st
	select {
	case g.wake <- struct{}{}:
	default:
	}
	g.mu.Unlock()
	return nil
}

func (g *AsyncGateway) run() {
	defer close(g.done)
	for range g.wake {
		for {
			g.mu.Lock()
			st := g.pending
			g.pending = nil
			if st == nil {
				g.busy = false
				g.idle.Broadcast()
				closed := g.closed
				g.mu.Unlock()
				if closed {
					return
				}
				break
			}
			g.busy = true
			g.mu.Unlock()

			if err := g.backend.Save(*st); err != nil {
				log.Printf("[store] save failed: %v", err)
			}
		}
	}
}

// Flush blocks until every queued state has been written.
func (g *AsyncGateway) Flush() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.pending != nil || g.busy {
		g.idle.Wait()
	}
}

// Close writes any pending state and stops the writer. Later saves are ignored.
func (g *AsyncGateway) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		<-g.done
		return
	}
	g.closed = true
	close(g.wake)
	g.mu.Unlock()

	<-g.done
}
