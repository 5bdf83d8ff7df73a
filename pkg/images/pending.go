package images

import (
	"context"
	"sync"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
)

// Result is the outcome of an image load. Rect, when not empty, selects the
// part of Image to draw.
type Result struct {
	Image graphics.Image
	Rect  css.RectF
	Err   error
}

// Pending is a future for an image load. Callbacks registered with OnDone
// fire exactly once, in registration order, on the goroutine that completes
// the load (or immediately when it already completed).
type Pending struct {
	URL string

	done      chan struct{}
	mu        sync.Mutex
	result    Result
	finished  bool
	callbacks []func(Result)
}

func newPending(url string) *Pending {
	return &Pending{URL: url, done: make(chan struct{})}
}

// Resolved returns an already completed future.
func Resolved(url string, r Result) *Pending {
	p := newPending(url)
	p.complete(r)
	return p
}

// Done is closed when the load finishes.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Ready reports whether the load finished.
func (p *Pending) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

// Result returns the outcome, or the zero Result while still loading.
func (p *Pending) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Wait blocks until the load finishes or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.Result(), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// OnDone registers fn to receive the result.
func (p *Pending) OnDone(fn func(Result)) {
	p.mu.Lock()
	if !p.finished {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return
	}
	r := p.result
	p.mu.Unlock()
	fn(r)
}

// complete stores r and fires the callbacks. Later calls are ignored.
func (p *Pending) complete(r Result) {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.finished = true
	p.result = r
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(r)
	}
}
