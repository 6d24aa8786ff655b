package match

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/gomud/pkg/errors"
	"github.com/arthur-debert/gomud/pkg/logging"
)

// Matcher compares incoming lines against its patterns. A single pattern
// matches one line at a time; a pattern sequence matches that many
// consecutive lines, restarting from scratch whenever an interior line
// fails to match.
type Matcher struct {
	Object

	logger zerolog.Logger

	mu        sync.Mutex
	patterns  []string
	multiline bool
	regexps   []*regexp.Regexp
	mline     int

	lines     []string
	wildcards []string
	last      State

	gate gate
}

// NewMatcher compiles the pattern set for a tagged object. A single-element
// pattern list is single-line mode; more elements switch to consecutive
// multi-line matching. Compilation failures surface as PatternCompile
// errors and the object must not be registered.
func NewMatcher(kind Kind, patterns []string, opts ...Option) (*Matcher, error) {
	m := &Matcher{
		Object: newObject(kind, opts...),
		logger: logging.GetLogger("match"),
	}
	if err := m.SetPatterns(patterns); err != nil {
		return nil, err
	}
	return m, nil
}

// NewAlias creates a matcher for outgoing-text rewriting.
func NewAlias(patterns []string, opts ...Option) (*Matcher, error) {
	return NewMatcher(KindAlias, patterns, opts...)
}

// NewTrigger creates a matcher for incoming-line reactions.
func NewTrigger(patterns []string, opts ...Option) (*Matcher, error) {
	return NewMatcher(KindTrigger, patterns, opts...)
}

// SetPatterns replaces the pattern set at runtime. The multi-line position
// resets so a partially advanced sequence never continues against new
// patterns.
func (m *Matcher) SetPatterns(patterns []string) error {
	if len(patterns) == 0 {
		return errors.New(errors.ErrPatternCompile, "at least one pattern is required")
	}
	if !m.IsRegExp && len(patterns) > 1 {
		return errors.New(errors.ErrPatternCompile, "literal matching supports a single pattern only")
	}

	regexps := make([]*regexp.Regexp, 0, len(patterns))
	if m.IsRegExp {
		for _, p := range patterns {
			expr := `\A(?:` + p + `)`
			if m.IgnoreCase {
				expr = `(?i)` + expr
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return errors.Wrapf(err, errors.ErrPatternCompile, "cannot compile pattern %q", p)
			}
			regexps = append(regexps, re)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append([]string(nil), patterns...)
	m.regexps = regexps
	m.multiline = len(patterns) > 1
	m.mline = 0
	return nil
}

// Patterns returns a copy of the current pattern set.
func (m *Matcher) Patterns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.patterns...)
}

// Match attempts the line. When fire is true a success additionally
// dispatches: synchronous objects run their callback, and the asynchronous
// gate is signalled for any waiter. When fire is false the attempt is a dry
// run that still advances multi-line position.
func (m *Matcher) Match(line string, fire bool) State {
	m.mu.Lock()
	result := NotSet
	if !m.multiline {
		result = m.matchSingle(line)
	} else {
		result = m.matchMulti(line)
	}

	st := State{
		Result:    result,
		ID:        m.ID,
		Line:      strings.Join(m.lines, "\n"),
		Wildcards: append([]string(nil), m.wildcards...),
	}
	m.last = st
	m.mu.Unlock()

	if fire {
		if m.Sync {
			switch st.Result {
			case Success:
				if m.OnSuccess != nil {
					m.OnSuccess(st)
				}
			case Failure:
				if m.OnFailure != nil {
					m.OnFailure(st)
				}
			case Timeout:
				if m.OnTimeout != nil {
					m.OnTimeout(st)
				}
			}
		}
		if st.Result == Success {
			m.gate.fire(st)
		}
	}

	return st
}

func (m *Matcher) matchSingle(line string) Result {
	if m.IsRegExp {
		groups := m.regexps[0].FindStringSubmatch(line)
		if groups == nil {
			return NotSet
		}
		m.wildcards = append(m.wildcards[:0], groups[1:]...)
		m.lines = append(m.lines[:0], line)
		return Success
	}

	if strings.Contains(line, m.patterns[0]) {
		m.wildcards = m.wildcards[:0]
		m.lines = append(m.lines[:0], line)
		return Success
	}
	return NotSet
}

func (m *Matcher) matchMulti(line string) Result {
	final := len(m.regexps) - 1

	switch {
	case m.mline == 0:
		groups := m.regexps[0].FindStringSubmatch(line)
		if groups != nil {
			m.lines = append(m.lines[:0], line)
			m.wildcards = append(m.wildcards[:0], groups[1:]...)
			m.mline = 1
		}

	case m.mline < final:
		groups := m.regexps[m.mline].FindStringSubmatch(line)
		if groups != nil {
			m.lines = append(m.lines, line)
			m.wildcards = append(m.wildcards, groups[1:]...)
			m.mline++
		} else {
			// Abandon the in-progress attempt; no mid-sequence retry.
			m.mline = 0
		}

	case m.mline == final:
		groups := m.regexps[final].FindStringSubmatch(line)
		m.mline = 0
		if groups != nil {
			m.lines = append(m.lines, line)
			m.wildcards = append(m.wildcards, groups[1:]...)
			return Success
		}
	}
	return NotSet
}

// SetEnabled flips the matcher on or off, safely against concurrent
// dispatch. Group toggles go through here rather than the field.
func (m *Matcher) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.Enabled = enabled
	m.mu.Unlock()
}

// IsEnabled reports whether the matcher participates in dispatch.
func (m *Matcher) IsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Enabled
}

// LastState returns the state of the most recent match attempt.
func (m *Matcher) LastState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Triggered blocks until the matcher next fires or ctx is cancelled. A new
// call cancels any wait already in flight, so at most one waiter is ever
// outstanding.
func (m *Matcher) Triggered(ctx context.Context) (State, error) {
	st, err := m.gate.wait(ctx)
	if err != nil {
		return st, err
	}
	return st, nil
}

// Reset cancels any in-flight asynchronous wait and rewinds the multi-line
// position.
func (m *Matcher) Reset() {
	m.gate.reset()
	m.mu.Lock()
	m.mline = 0
	m.mu.Unlock()
}
