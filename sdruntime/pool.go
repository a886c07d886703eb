package sdruntime

import (
	"context"
	"sync"
)

// contextPool hands out SD contexts, one per concurrent invocation. The pool
// size is the number of img2img runs a pipeline allows at once; extra callers
// wait for a release or for their ctx to end. Contexts are created lazily.
type contextPool struct {
	mu       sync.Mutex
	contexts chan *SDContext
	maxSize  int
	load     func() (*SDContext, error)
	closed   bool
	created  int
}

func newContextPool(maxSize int, load func() (*SDContext, error)) (*contextPool, error) {
	if maxSize <= 0 {
		return nil, ErrInvalidParams
	}
	return &contextPool{
		contexts: make(chan *SDContext, maxSize),
		maxSize:  maxSize,
		load:     load,
	}, nil
}

// acquire returns an idle context, creates one if below capacity, or waits.
func (p *contextPool) acquire(ctx context.Context) (*SDContext, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPipelineClosed
	}

	select {
	case c := <-p.contexts:
		p.mu.Unlock()
		return c, nil
	default:
	}

	if p.created < p.maxSize {
		p.created++
		p.mu.Unlock()

		c, err := p.load()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}
		return c, nil
	}
	p.mu.Unlock()

	select {
	case c, ok := <-p.contexts:
		if !ok {
			return nil, ErrPipelineClosed
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			FreeContext(c)
			return nil, ErrPipelineClosed
		}
		return c, nil
	case <-ctx.Done():
		return nil, ErrAcquireTimeout
	}
}

// release returns c to the pool, or frees it if the pool is closed.
func (p *contextPool) release(c *SDContext) {
	if c == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		FreeContext(c)
		p.created--
		return
	}

	select {
	case p.contexts <- c:
	default:
		FreeContext(c)
		p.created--
	}
}

// close frees idle contexts; in-use ones are freed on release.
func (p *contextPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.contexts)

	for c := range p.contexts {
		FreeContext(c)
		p.created--
	}
}

func (p *contextPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
