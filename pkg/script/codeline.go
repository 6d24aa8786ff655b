package script

import (
	"github.com/arthur-debert/gomud/pkg/errors"
)

// SyncMode classifies how a code line or block wants to be executed.
type SyncMode int

const (
	// SyncDontCare lines run in whatever mode their surroundings pick.
	SyncDontCare SyncMode = iota
	// SyncForced lines must run synchronously (#gag, #replace).
	SyncForced
	// AsyncForced lines must run asynchronously (#wait, #wa).
	AsyncForced
	// SyncConflict marks a block mixing forced sync and forced async lines.
	SyncConflict
)

func (m SyncMode) String() string {
	switch m {
	case SyncForced:
		return "sync"
	case AsyncForced:
		return "async"
	case SyncConflict:
		return "conflict"
	default:
		return "dontcare"
	}
}

// CodeLine is a single parsed command. It is immutable after parsing: the
// original text, the token list and the sync mode never change.
type CodeLine struct {
	Text   string
	Tokens []string
	Mode   SyncMode
}

// ParseLine tokenizes one command line. Spaces separate tokens only at brace
// depth zero with no quote open; quote characters toggle quoting and are
// dropped, brace characters nest and are kept. A leading '#' becomes its own
// token. Unmatched braces or quotes are an InvalidCodeBlock error.
func ParseLine(line string) (*CodeLine, error) {
	cl := &CodeLine{Text: line, Mode: SyncDontCare}
	if len(line) == 0 {
		return cl, nil
	}

	var arg []byte
	braces := 0
	inSingle, inDouble := false, false

	start := 0
	if line[0] == '#' {
		cl.Tokens = append(cl.Tokens, "#")
		start = 1
	}

	for i := start; i < len(line); i++ {
		ch := line[i]
		switch ch {
		case '{':
			braces++
			arg = append(arg, ch)
		case '}':
			braces--
			if braces < 0 {
				return nil, errors.Newf(errors.ErrInvalidCodeBlock, "unmatched closing brace at column %d in %q", i, line)
			}
			arg = append(arg, ch)
		case '\'':
			inSingle = !inSingle
		case '"':
			inDouble = !inDouble
		case ' ':
			if braces == 0 && !inSingle && !inDouble {
				cl.Tokens = append(cl.Tokens, string(arg))
				arg = arg[:0]
			} else {
				arg = append(arg, ch)
			}
		default:
			arg = append(arg, ch)
		}
	}

	if inSingle || inDouble {
		return nil, errors.Newf(errors.ErrInvalidCodeBlock, "unterminated quote in %q", line)
	}
	if braces > 0 {
		return nil, errors.Newf(errors.ErrInvalidCodeBlock, "unmatched opening brace in %q", line)
	}
	if len(arg) > 0 {
		cl.Tokens = append(cl.Tokens, string(arg))
	}

	if len(cl.Tokens) >= 2 && cl.Tokens[0] == "#" {
		switch cl.Tokens[1] {
		case "gag", "replace":
			cl.Mode = SyncForced
		case "wait", "wa":
			cl.Mode = AsyncForced
		}
	}

	return cl, nil
}
