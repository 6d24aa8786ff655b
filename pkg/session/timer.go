package session

import (
	"context"
	"sync"
	"time"

	"github.com/arthur-debert/gomud/pkg/match"
)

// Timer fires its callback every Timeout interval while enabled. A one-shot
// timer stops itself after the first firing.
type Timer struct {
	match.Object

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewTimer creates a timer. It does not tick until Start is called.
func NewTimer(opts ...match.Option) *Timer {
	t := &Timer{Object: match.NewTimerObject(opts...)}
	return t
}

// Start begins ticking. Starting a running timer restarts it from a full
// interval.
func (t *Timer) Start(ctx context.Context) {
	t.Stop()

	t.mu.Lock()
	tctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(tctx)
}

// Stop halts the timer. The callback does not fire again until Start.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Running reports whether the timer is currently ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// SetEnabled flips the timer on or off, safely against the ticking
// goroutine.
func (t *Timer) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.Enabled = enabled
	t.mu.Unlock()
}

// IsEnabled reports whether the timer's callback may fire.
func (t *Timer) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Enabled
}

func (t *Timer) run(ctx context.Context) {
	if t.Timeout <= 0 {
		return
	}
	ticker := time.NewTicker(t.Timeout)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !t.IsEnabled() {
				return
			}
			if t.OnSuccess != nil {
				t.OnSuccess(match.State{Result: match.Success, ID: t.ID})
			}
			if t.OneShot {
				t.Stop()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
