package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/gomud/pkg/match"
	"github.com/arthur-debert/gomud/pkg/script"
)

// Exec runs one piece of user or script input: it is parsed into a code
// block and executed according to the block's sync mode.
func (s *Session) Exec(text string) error {
	cb, err := script.ParseBlock(text)
	if err != nil {
		s.Error("cannot parse %q: %v", text, err)
		return err
	}
	s.ExecBlock(cb, match.State{})
	return nil
}

// ExecBlock executes a parsed block. Forced-sync blocks run inline on the
// caller; everything else runs on its own goroutine with the configured
// inter-command interval between lines. A conflicted block degrades to
// asynchronous execution with a warning.
func (s *Session) ExecBlock(cb *script.CodeBlock, st match.State) {
	mode := cb.Mode
	if mode == script.SyncConflict {
		s.Warning("code mixes forced sync and forced async commands, running async with sync commands disabled")
		mode = script.AsyncForced
	}

	if mode == script.SyncForced {
		for _, cl := range cb.Lines {
			s.execLine(cl, st, true)
		}
		return
	}

	interval := time.Duration(s.cfg.Client.Interval) * time.Millisecond
	go func() {
		for _, cl := range cb.Lines {
			s.execLine(cl, st, false)
			if interval > 0 {
				select {
				case <-time.After(interval):
				case <-s.ctx.Done():
					return
				}
			}
		}
	}()
}

// execLine expands one code line and either interprets its hash command or
// hands the text to the alias table.
func (s *Session) execLine(cl *script.CodeLine, st match.State, syncMode bool) {
	text, tokens := cl.Expand(s, script.ExpandContext{
		Line:      st.Line,
		Wildcards: st.Wildcards,
	})
	if len(tokens) == 0 {
		return
	}

	if tokens[0] == "#" {
		s.execHash(text, tokens, st, syncMode)
		return
	}
	s.sendThroughAliases(text)
}

// execHash interprets one #command.
func (s *Session) execHash(text string, tokens []string, st match.State, syncMode bool) {
	if len(tokens) < 2 {
		s.Warning("empty # command")
		return
	}

	switch cmd := tokens[1]; cmd {
	case "wait", "wa":
		if syncMode {
			s.Warning("#%s is not available in forced sync execution", cmd)
			return
		}
		if len(tokens) < 3 {
			s.Warning("#%s requires a duration in seconds", cmd)
			return
		}
		secs, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			s.Warning("bad #%s duration %q", cmd, tokens[2])
			return
		}
		select {
		case <-time.After(time.Duration(secs * float64(time.Second))):
		case <-s.ctx.Done():
		}

	case "gag":
		s.Gag()

	case "replace":
		s.Replace(hashRemainder(text, "replace"))

	case "variable", "var":
		if len(tokens) < 3 {
			s.Warning("#%s requires a name", cmd)
			return
		}
		s.SetVariable(tokens[2], strings.Join(tokens[3:], " "))

	case "show", "showme":
		s.Info("%s", hashRemainder(text, cmd))

	case "t+":
		if len(tokens) < 3 {
			s.Warning("#t+ requires a group name")
			return
		}
		n := s.EnableGroup(tokens[2], true)
		s.Info("enabled %d objects in group %q", n, tokens[2])

	case "t-":
		if len(tokens) < 3 {
			s.Warning("#t- requires a group name")
			return
		}
		n := s.EnableGroup(tokens[2], false)
		s.Info("disabled %d objects in group %q", n, tokens[2])

	case "load":
		if len(tokens) < 3 {
			s.Warning("#load requires a file path")
			return
		}
		if err := s.LoadModule(tokens[2]); err != nil {
			s.Error("cannot load %s: %v", tokens[2], err)
		}

	case "unload":
		if len(tokens) < 3 {
			s.Warning("#unload requires a module name")
			return
		}
		s.UnloadModule(tokens[2])

	default:
		// #<n> {block}: run a block a fixed number of times.
		if n, err := strconv.Atoi(cmd); err == nil && n > 0 {
			s.execRepeat(n, hashRemainder(text, cmd), st)
			return
		}
		s.Warning("unknown command #%s", cmd)
	}
}

// execRepeat runs a sub-block n times, sequentially in the caller's mode.
func (s *Session) execRepeat(n int, code string, st match.State) {
	cb, err := script.ParseBlock(code)
	if err != nil {
		s.Error("cannot parse repeat block %q: %v", code, err)
		return
	}
	for i := 0; i < n; i++ {
		for _, cl := range cb.Lines {
			s.execLine(cl, st, false)
		}
	}
}

// sendThroughAliases offers outgoing text to the alias table; if no alias
// claims it, it goes to the server untouched.
func (s *Session) sendThroughAliases(text string) {
	matched := false
	for _, al := range s.snapshotByPriority(s.aliases) {
		var st match.State
		s.safeDispatch(al.ID, func() { st = al.Match(text, true) })
		if st.Result != match.Success {
			continue
		}
		matched = true
		if al.OneShot {
			if err := s.aliases.Remove(al.ID); err != nil {
				s.logger.Debug().Str("id", al.ID).Msg("one-shot alias already removed")
			}
		}
		if !al.KeepEval {
			break
		}
	}

	if !matched {
		if err := s.WriteLine(text); err != nil {
			s.logger.Warn().Err(err).Str("text", text).Msg("cannot send")
		}
	}
}

// hashRemainder returns the text after "#cmd ", preserving braces and
// internal spacing that tokenization would lose.
func hashRemainder(text, cmd string) string {
	idx := strings.Index(text, cmd)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(cmd):])
}
