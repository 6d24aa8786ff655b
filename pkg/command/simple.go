package command

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/gomud/pkg/logging"
	"github.com/arthur-debert/gomud/pkg/match"
)

// MaxRetry bounds how often a retry trigger may fire before the execution
// gives up with a failure.
const MaxRetry = 20

const (
	defaultSettleDelay  = 100 * time.Millisecond
	defaultRetryBackoff = 2 * time.Second
)

// Triggers are the response triggers a SimpleCommand races. Success must
// hold at least one entry; Failure and Retry may be empty.
type Triggers struct {
	Success []Trigger
	Failure []Trigger
	Retry   []Trigger
}

// Callbacks are caller-supplied overrides invoked after the built-in
// callbacks on a terminal outcome.
type Callbacks struct {
	OnSuccess match.Callback
	OnFailure match.Callback
	OnTimeout match.Callback
}

// SimpleCommand executes one command text and classifies the server's
// response through its trigger sets: first success trigger to fire wins,
// first failure trigger loses, a retry trigger re-sends the command after a
// backoff, a silent server times the round out.
type SimpleCommand struct {
	*Command

	logger    zerolog.Logger
	transport Transport
	triggers  Triggers

	// Tunables, preset to the standard values.
	SettleDelay  time.Duration
	RetryBackoff time.Duration
	MaxRetry     int

	mu         sync.Mutex
	raceCancel context.CancelFunc
	executed   string
}

// NewSimple creates a command racing the given trigger sets. The triggers
// are borrowed, not owned: they stay registered with the session and are
// reset at the start of every race round.
func NewSimple(transport Transport, patterns []string, triggers Triggers, opts ...match.Option) (*SimpleCommand, error) {
	base, err := New(patterns, opts...)
	if err != nil {
		return nil, err
	}
	return &SimpleCommand{
		Command:      base,
		logger:       logging.GetLogger("command"),
		transport:    transport,
		triggers:     triggers,
		SettleDelay:  defaultSettleDelay,
		RetryBackoff: defaultRetryBackoff,
		MaxRetry:     MaxRetry,
	}, nil
}

// ExecutedCommand returns the command text of the most recent execution.
func (s *SimpleCommand) ExecutedCommand() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executed
}

// Reset cancels an in-flight race and rewinds the command's own match state.
func (s *SimpleCommand) Reset() {
	s.mu.Lock()
	cancel := s.raceCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.Command.Reset()
}

// Execute runs the command without override callbacks.
func (s *SimpleCommand) Execute(ctx context.Context, cmd string) (match.State, error) {
	return s.ExecuteWith(ctx, cmd, Callbacks{})
}

// trigger classes inside one race round.
const (
	classSuccess = iota
	classFailure
	classRetry
)

type raceWin struct {
	class int
	state match.State
}

// ExecuteWith runs the command. An empty cmd falls back to the command's
// own first pattern. The returned state carries the terminal outcome; ctx
// cancellation aborts the race with the context's error.
func (s *SimpleCommand) ExecuteWith(ctx context.Context, cmd string, cbs Callbacks) (match.State, error) {
	s.Reset()

	if cmd == "" {
		cmd = s.Patterns()[0]
	}
	s.mu.Lock()
	s.executed = cmd
	s.mu.Unlock()

	retries := 0
	final := match.State{Result: match.NotSet, ID: s.ID}

race:
	for {
		rctx, cancel := context.WithCancel(ctx)
		s.mu.Lock()
		s.raceCancel = cancel
		s.mu.Unlock()

		winCh := make(chan raceWin, 1)
		s.spawnWaiters(rctx, winCh)

		// Let the waiters arm before the command goes out.
		if err := sleepCtx(ctx, s.SettleDelay); err != nil {
			cancel()
			return final, err
		}
		if err := s.transport.WriteLine(cmd); err != nil {
			cancel()
			return final, err
		}

		select {
		case win := <-winCh:
			cancel()
			switch win.class {
			case classSuccess:
				final = win.state
				final.Result = match.Success
				break race
			case classFailure:
				final = win.state
				final.Result = match.Failure
				break race
			case classRetry:
				retries++
				if retries > s.MaxRetry {
					s.logger.Warn().Str("cmd", cmd).Int("retries", retries-1).Msg("retry budget exhausted")
					final = win.state
					final.Result = match.Failure
					break race
				}
				s.logger.Debug().Str("cmd", cmd).Int("retry", retries).Msg("retrying command")
				if err := sleepCtx(ctx, s.RetryBackoff); err != nil {
					return final, err
				}
			}

		case <-time.After(s.Timeout):
			cancel()
			s.logger.Warn().Str("cmd", cmd).Dur("timeout", s.Timeout).Msg("command timed out")
			final.Result = match.Timeout
			break race

		case <-ctx.Done():
			cancel()
			return final, ctx.Err()
		}
	}

	final.ID = s.ID
	s.dispatch(final, cbs)
	return final, nil
}

// spawnWaiters starts one goroutine per configured trigger. Each resets its
// trigger's gate, waits for it to fire and reports its class; losing
// waiters exit when the round context is cancelled.
func (s *SimpleCommand) spawnWaiters(ctx context.Context, winCh chan<- raceWin) {
	start := func(class int, triggers []Trigger) {
		for _, tr := range triggers {
			tr.Reset()
			go func(tr Trigger) {
				st, err := tr.Triggered(ctx)
				if err != nil {
					return
				}
				select {
				case winCh <- raceWin{class: class, state: st}:
				default:
				}
			}(tr)
		}
	}
	start(classSuccess, s.triggers.Success)
	start(classFailure, s.triggers.Failure)
	start(classRetry, s.triggers.Retry)
}

// dispatch runs the built-in callback for the outcome, then the caller
// override with the same state.
func (s *SimpleCommand) dispatch(st match.State, cbs Callbacks) {
	run := func(builtin, override match.Callback) {
		if builtin != nil {
			builtin(st)
		}
		if override != nil {
			override(st)
		}
	}

	switch st.Result {
	case match.Success:
		run(s.OnSuccess, cbs.OnSuccess)
	case match.Failure:
		run(s.OnFailure, cbs.OnFailure)
	case match.Timeout:
		run(s.OnTimeout, cbs.OnTimeout)
	}
}

// sleepCtx waits for d unless ctx finishes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
