package script

import (
	"github.com/arthur-debert/gomud/pkg/errors"
)

// CodeBlock is an immutable ordered sequence of code lines parsed from one
// input string, with a sync mode folded from its children.
type CodeBlock struct {
	Text  string
	Lines []*CodeLine
	Mode  SyncMode
}

// ParseBlock parses an input string into its command sequence. An outer
// {...} wrapper is stripped, then the string is split on ';' at brace depth
// zero and each piece re-split recursively, so nested blocks like
// "{a;b};{c;d}" flatten into four lines.
//
// Unlike the per-line tokenizer this splitting is brace-aware but not
// quote-aware. Scripts rely on that, so it stays that way.
func ParseBlock(code string) (*CodeBlock, error) {
	lines, err := splitBlock(code)
	if err != nil {
		return nil, err
	}

	cb := &CodeBlock{Text: code, Lines: lines, Mode: SyncDontCare}
	for _, cl := range lines {
		switch cl.Mode {
		case SyncForced:
			if cb.Mode == AsyncForced {
				cb.Mode = SyncConflict
			} else {
				cb.Mode = SyncForced
			}
		case AsyncForced:
			if cb.Mode == SyncForced {
				cb.Mode = SyncConflict
			} else {
				cb.Mode = AsyncForced
			}
		}
		if cb.Mode == SyncConflict {
			break
		}
	}
	return cb, nil
}

func splitBlock(code string) ([]*CodeLine, error) {
	if isWrapped(code) {
		code = code[1 : len(code)-1]
	}

	var segments []string
	var seg []byte
	braces := 0
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch ch {
		case '{':
			braces++
			seg = append(seg, ch)
		case '}':
			braces--
			if braces < 0 {
				return nil, errors.Newf(errors.ErrInvalidCodeBlock, "unmatched closing brace at column %d in %q", i, code)
			}
			seg = append(seg, ch)
		case ';':
			if braces == 0 {
				segments = append(segments, string(seg))
				seg = seg[:0]
			} else {
				seg = append(seg, ch)
			}
		default:
			seg = append(seg, ch)
		}
	}
	if len(seg) > 0 {
		segments = append(segments, string(seg))
	}

	// A single segment is one command line; anything else recurses so that
	// nested braced groups decompose into the same flat sequence.
	if len(segments) == 1 {
		cl, err := ParseLine(code)
		if err != nil {
			return nil, err
		}
		return []*CodeLine{cl}, nil
	}

	var lines []*CodeLine
	for _, s := range segments {
		if s == "" {
			continue
		}
		sub, err := splitBlock(s)
		if err != nil {
			return nil, err
		}
		lines = append(lines, sub...)
	}
	return lines, nil
}

// isWrapped reports whether the whole string is one balanced {...} group,
// so "{a;b}" is wrapped but "{a;b};{c;d}" is not.
func isWrapped(code string) bool {
	if len(code) < 2 || code[0] != '{' || code[len(code)-1] != '}' {
		return false
	}
	depth := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 && i < len(code)-1 {
				return false
			}
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
