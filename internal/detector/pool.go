package detector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("session pool is closed")

// Pool hands out engines for exclusive use. Sessions keep their input and
// output tensors bound, so concurrent Run calls on one session would race;
// the pool guarantees each engine serves a single forward pass at a time.
type Pool struct {
	sessions chan engine
	done     chan struct{}
	size     int

	mu     sync.Mutex
	closed bool

	inUse    atomic.Int64
	acquired atomic.Uint64
	released atomic.Uint64
}

// PoolStats is a point-in-time view of pool usage.
type PoolStats struct {
	Size     int
	InUse    int
	Acquired uint64
	Released uint64
}

func newPool(engines []engine) *Pool {
	p := &Pool{
		sessions: make(chan engine, len(engines)),
		done:     make(chan struct{}),
		size:     len(engines),
	}
	for _, e := range engines {
		p.sessions <- e
	}
	return p
}

// Acquire blocks until a session is free, ctx is done, or the pool is closed.
func (p *Pool) Acquire(ctx context.Context) (engine, error) {
	start := time.Now()
	defer func() { poolWaitSeconds.Observe(time.Since(start).Seconds()) }()

	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}
	select {
	case e := <-p.sessions:
		p.inUse.Add(1)
		p.acquired.Add(1)
		return e, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a session to the pool. Sessions released after Close are
// destroyed.
func (p *Pool) Release(e engine) {
	p.inUse.Add(-1)
	p.released.Add(1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		e.Destroy()
		return
	}
	p.sessions <- e
}

// Close destroys idle sessions and makes in-flight ones be destroyed on
// release. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
	for {
		select {
		case e := <-p.sessions:
			e.Destroy()
		default:
			return
		}
	}
}

// Stats returns current counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Size:     p.size,
		InUse:    int(p.inUse.Load()),
		Acquired: p.acquired.Load(),
		Released: p.released.Load(),
	}
}
