package command

import (
	"context"

	"github.com/arthur-debert/gomud/pkg/match"
)

// Transport writes one command line to the connection. The session
// implements it.
type Transport interface {
	WriteLine(text string) error
}

// Trigger is the awaitable side of a match object raced during execution.
// Both *match.Matcher and *match.GMCPTrigger satisfy it.
type Trigger interface {
	Triggered(ctx context.Context) (match.State, error)
	Reset()
}

// Command is the extension point for request/response commands. On its own
// it races nothing: Execute resets state and returns immediately. Concrete
// commands embed it and override Execute.
type Command struct {
	*match.Matcher
}

// New creates a bare command. Commands always run asynchronously; their
// match state is consumed through the racing waiters, never through
// synchronous callbacks.
func New(patterns []string, opts ...match.Option) (*Command, error) {
	m, err := match.NewMatcher(match.KindCommand, patterns, append(opts, match.WithAsync())...)
	if err != nil {
		return nil, err
	}
	return &Command{Matcher: m}, nil
}

// Execute resets the command and returns without racing.
func (c *Command) Execute(ctx context.Context, cmd string) (match.State, error) {
	c.Reset()
	return match.State{Result: match.NotSet, ID: c.ID}, nil
}
