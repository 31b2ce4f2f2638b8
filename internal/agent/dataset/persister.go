package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/proposal-review/advisor/internal/agent/model"
	"github.com/proposal-review/advisor/internal/agent/store"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

const DefaultWriteTimeout = 5 * time.Second

// Persister writes snapshots to a store on a background goroutine. Only the
// newest unsent snapshot is kept, so writes are last-write-wins and callers
// never wait for the store.
type Persister struct {
	store   store.Store
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan model.DatasetSnapshot
	done   chan struct{}
}

func NewPersister(st store.Store, writeTimeout time.Duration) *Persister {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	p := &Persister{
		store:   st,
		timeout: writeTimeout,
		queue:   make(chan model.DatasetSnapshot, 1),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Save enqueues snapshot, replacing any snapshot not yet written.
func (p *Persister) Save(snapshot model.DatasetSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		logx.Warn().Msg("Dataset persister closed - dropping snapshot")
		return
	}
	select {
	case <-p.queue:
		logx.Debug().Msg("Superseding unsent dataset snapshot")
	default:
	}
	p.queue <- snapshot
}

// Close writes the pending snapshot, if any, and stops the worker.
func (p *Persister) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *Persister) run() {
	defer close(p.done)
	for snap := range p.queue {
		p.write(snap)
	}
}

func (p *Persister) write(snap model.DatasetSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.store.Save(ctx, snap); err != nil {
		// The in-memory dataset stays authoritative.
		logx.Warn().Err(err).Msg("Failed to persist dataset snapshot")
		return
	}
	logx.Debug().Dur("elapsed", time.Since(start)).Msg("Persisted dataset snapshot")
}

var _ Saver = (*Persister)(nil)
