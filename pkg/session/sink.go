package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/gomud/pkg/match"
	"github.com/arthur-debert/gomud/pkg/telnet"
)

// telnet.Sink implementation: the classifier feeds decoded output here,
// synchronously from the read loop.

// Data assembles plain bytes into lines and dispatches each completed one.
func (s *Session) Data(b byte) {
	s.lineMu.Lock()
	s.lineBuf.WriteByte(b)
	complete := b == '\n'
	s.lineMu.Unlock()

	if complete {
		s.flushLine()
	}
}

// GoAhead flushes whatever is buffered, so prompts without a terminator
// still reach the triggers and the display.
func (s *Session) GoAhead() {
	s.flushLine()
}

// GMCP routes a message to the trigger registered under its package name.
func (s *Session) GMCP(name, value string) {
	g, err := s.gmcpTriggers.Get(name)
	if err != nil || !g.IsEnabled() {
		s.logger.Debug().Str("name", name).Msg("GMCP message without a trigger")
		return
	}
	s.safeDispatch(name, func() { g.Fire(value) })
}

// MSDP stores each reported variable in the session's variable table.
func (s *Session) MSDP(name string, value interface{}) {
	s.SetVariable(name, fmt.Sprint(value))
}

// MSSP logs server status; the accumulated table lives on the classifier.
func (s *Session) MSSP(name, value string) {
	s.logger.Debug().Str("var", name).Str("val", value).Msg("server status")
}

// OptionNegotiated records protocol availability for scripts.
func (s *Session) OptionNegotiated(option byte, accepted bool) {
	s.SetVariable("%"+strings.ToLower(telnet.OptionName(option)), fmt.Sprint(accepted))
}

// Subnegotiation watches for the MXP support probe; everything else is
// already handled by the classifier's codecs.
func (s *Session) Subnegotiation(option byte, payload []byte) {
	if option == telnet.OptMXP && strings.Contains(string(payload), "<SUPPORT>") {
		if err := s.WriteLine("<SUPPORTS +bold +italic +underline +color>"); err != nil {
			s.logger.Warn().Err(err).Msg("cannot answer MXP support probe")
		}
	}
}

func (s *Session) flushLine() {
	s.lineMu.Lock()
	if s.lineBuf.Len() == 0 {
		s.lineMu.Unlock()
		return
	}
	raw := append([]byte(nil), s.lineBuf.Bytes()...)
	s.lineBuf.Reset()
	s.lineMu.Unlock()

	s.handleLine(strings.TrimRight(s.decodeIncoming(raw), "\r\n"))
}

// handleLine runs one incoming line through the trigger tables and then
// displays it, honoring any gag or replace a trigger applied.
func (s *Session) handleLine(raw string) {
	plain := StripANSI(raw)
	s.SetVariable("%raw", raw)
	s.SetVariable("%line", plain)

	s.dispMu.Lock()
	s.gagged = false
	s.replacement = nil
	s.dispMu.Unlock()

	s.dispatchLine(raw, plain)

	s.dispMu.Lock()
	gagged, replacement := s.gagged, s.replacement
	s.dispMu.Unlock()

	switch {
	case gagged:
	case replacement != nil:
		fmt.Fprintln(s.out, *replacement)
	default:
		fmt.Fprintln(s.out, raw)
	}
}

// dispatchLine offers the line to all enabled triggers in ascending
// priority order. The table is snapshotted first: callbacks may add or
// remove triggers without upsetting the iteration.
func (s *Session) dispatchLine(raw, plain string) {
	for _, tr := range s.snapshotByPriority(s.triggers) {
		target := plain
		if tr.Raw {
			target = raw
		}

		var st match.State
		s.safeDispatch(tr.ID, func() { st = tr.Match(target, true) })
		if st.Result != match.Success {
			continue
		}

		if tr.OneShot {
			if err := s.triggers.Remove(tr.ID); err != nil {
				s.logger.Debug().Str("id", tr.ID).Msg("one-shot trigger already removed")
			}
		}
		if !tr.KeepEval {
			break
		}
	}
}

// snapshotByPriority returns the enabled matchers of a table, sorted by
// ascending priority with id as the tie-breaker.
func (s *Session) snapshotByPriority(table interface{ Values() []*match.Matcher }) []*match.Matcher {
	all := table.Values()
	enabled := all[:0]
	for _, m := range all {
		if m.IsEnabled() {
			enabled = append(enabled, m)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		if enabled[i].Priority != enabled[j].Priority {
			return enabled[i].Priority < enabled[j].Priority
		}
		return enabled[i].ID < enabled[j].ID
	})
	return enabled
}

// safeDispatch keeps a panicking callback from taking down the read loop.
func (s *Session) safeDispatch(id string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("id", id).Interface("panic", r).Msg("callback panicked")
			s.Error("script error in %s: %v", id, r)
		}
	}()
	fn()
}
