package session

import (
	"time"

	"github.com/arthur-debert/gomud/pkg/command"
	"github.com/arthur-debert/gomud/pkg/match"
	"github.com/arthur-debert/gomud/pkg/script"
)

// Simple object constructors: the success callback is a code block instead
// of a function, so whole behaviors can be defined from text alone.

// NewSimpleTrigger registers a trigger whose success runs a code block with
// the match's line and wildcards in scope.
func (s *Session) NewSimpleTrigger(patterns []string, code string, opts ...match.Option) (*match.Matcher, error) {
	cb, err := script.ParseBlock(code)
	if err != nil {
		return nil, err
	}

	tr, err := match.NewTrigger(patterns, opts...)
	if err != nil {
		return nil, err
	}
	tr.OnSuccess = func(st match.State) {
		s.ExecBlock(cb, st)
	}

	if err := s.AddTrigger(tr); err != nil {
		return nil, err
	}
	return tr, nil
}

// NewSimpleAlias registers an alias whose success runs a code block. The
// alias consumes the input line; its captures are the block's wildcards.
func (s *Session) NewSimpleAlias(patterns []string, code string, opts ...match.Option) (*match.Matcher, error) {
	cb, err := script.ParseBlock(code)
	if err != nil {
		return nil, err
	}

	al, err := match.NewAlias(patterns, opts...)
	if err != nil {
		return nil, err
	}
	al.OnSuccess = func(st match.State) {
		s.ExecBlock(cb, st)
	}

	if err := s.AddAlias(al); err != nil {
		return nil, err
	}
	return al, nil
}

// NewSimpleTimer registers a timer whose every tick runs a code block.
func (s *Session) NewSimpleTimer(interval time.Duration, code string, opts ...match.Option) (*Timer, error) {
	cb, err := script.ParseBlock(code)
	if err != nil {
		return nil, err
	}

	t := NewTimer(append(opts, match.WithTimeout(interval))...)
	t.OnSuccess = func(st match.State) {
		s.ExecBlock(cb, st)
	}

	if err := s.AddTimer(t); err != nil {
		return nil, err
	}
	return t, nil
}

// NewSimpleCommand registers a command that sends through this session and
// races the given trigger sets, with the session's configured settle delay.
func (s *Session) NewSimpleCommand(patterns []string, triggers command.Triggers, opts ...match.Option) (*command.SimpleCommand, error) {
	c, err := command.NewSimple(s, patterns, triggers, opts...)
	if err != nil {
		return nil, err
	}
	c.SettleDelay = time.Duration(s.cfg.Client.SettleDelay) * time.Millisecond

	if err := s.AddCommand(c); err != nil {
		return nil, err
	}
	return c, nil
}

// NewGMCPTrigger registers a trigger fired by a named GMCP message; code
// receives the message text as %1.
func (s *Session) NewGMCPTrigger(name, code string, opts ...match.Option) (*match.GMCPTrigger, error) {
	cb, err := script.ParseBlock(code)
	if err != nil {
		return nil, err
	}

	g := match.NewGMCPTrigger(name, opts...)
	g.OnSuccess = func(st match.State) {
		s.ExecBlock(cb, st)
	}

	if err := s.AddGMCPTrigger(g); err != nil {
		return nil, err
	}
	return g, nil
}
