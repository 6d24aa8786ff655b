package match

import (
	"context"
	"sync"
)

// GMCPTrigger fires on a named GMCP message instead of a line pattern. Its
// id is the GMCP package name; the session routes messages to it by that
// name. The message value stays opaque text and is never evaluated.
type GMCPTrigger struct {
	Object

	mu    sync.Mutex
	value string

	gate gate
}

// NewGMCPTrigger creates a trigger bound to a GMCP package name such as
// "Char.Vitals".
func NewGMCPTrigger(name string, opts ...Option) *GMCPTrigger {
	g := &GMCPTrigger{
		Object: newObject(KindGMCPTrigger, opts...),
	}
	g.ID = name
	return g
}

// Fire delivers one GMCP message to this trigger: the callback runs and any
// asynchronous waiter is released.
func (g *GMCPTrigger) Fire(value string) {
	g.mu.Lock()
	g.value = value
	g.mu.Unlock()

	st := State{
		Result:    Success,
		ID:        g.ID,
		Line:      value,
		Wildcards: []string{value},
	}
	g.gate.fire(st)
	if g.OnSuccess != nil {
		g.OnSuccess(st)
	}
}

// SetEnabled flips the trigger on or off, safely against concurrent
// delivery.
func (g *GMCPTrigger) SetEnabled(enabled bool) {
	g.mu.Lock()
	g.Enabled = enabled
	g.mu.Unlock()
}

// IsEnabled reports whether the trigger accepts messages.
func (g *GMCPTrigger) IsEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Enabled
}

// Value returns the most recently delivered message text.
func (g *GMCPTrigger) Value() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Triggered blocks until the next message for this name arrives or ctx is
// cancelled. A new call cancels any wait already in flight.
func (g *GMCPTrigger) Triggered(ctx context.Context) (State, error) {
	return g.gate.wait(ctx)
}

// Reset cancels any in-flight asynchronous wait.
func (g *GMCPTrigger) Reset() {
	g.gate.reset()
}
