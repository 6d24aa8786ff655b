package match

import (
	"context"
	"sync"
)

// gate is the awaitable half of an asynchronous object. At most one waiter
// is outstanding; starting a new wait cancels the previous one.
type gate struct {
	mu     sync.Mutex
	ch     chan State
	cancel context.CancelFunc
}

// fire hands a state to the current waiter, if any. Non-blocking.
func (g *gate) fire(st State) {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- st:
	default:
	}
}

// wait blocks until the gate fires or ctx is cancelled. Any wait already in
// flight is cancelled first.
func (g *gate) wait(ctx context.Context) (State, error) {
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	wctx, cancel := context.WithCancel(ctx)
	ch := make(chan State, 1)
	g.ch, g.cancel = ch, cancel
	g.mu.Unlock()

	defer func() {
		cancel()
		g.mu.Lock()
		if g.ch == ch {
			g.ch, g.cancel = nil, nil
		}
		g.mu.Unlock()
	}()

	select {
	case st := <-ch:
		return st, nil
	case <-wctx.Done():
		return State{Result: NotSet}, wctx.Err()
	}
}

// reset cancels any in-flight wait.
func (g *gate) reset() {
	g.mu.Lock()
	cancel := g.cancel
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
