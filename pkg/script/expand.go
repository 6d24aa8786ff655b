package script

import (
	"strings"
)

// VarSource provides named variable lookup during expansion. The session's
// variable table implements it.
type VarSource interface {
	GetVariable(name string) (string, bool)
}

// ExpandContext carries the per-match values available to one expansion.
type ExpandContext struct {
	// Line is the ANSI-stripped text of the triggering line.
	Line string
	// Raw is the triggering line with its ANSI markers intact.
	Raw string
	// Wildcards are the captured groups of the triggering match, in order.
	Wildcards []string
}

// Expand substitutes variables into a code line and returns the rewritten
// text plus the expanded token list. Each token drives at most one
// first-occurrence replacement in the text, so repeated tokens are replaced
// independently at their own positions.
//
// Token forms: %1..%9 index into the wildcards (out of range yields the
// literal "None"); %line and %raw take the context values; any other %name
// or @name looks the variable up in vars, defaulting to the empty string.
func (cl *CodeLine) Expand(vars VarSource, ctx ExpandContext) (string, []string) {
	text := cl.Text
	tokens := make([]string, 0, len(cl.Tokens))

	line := ctx.Line
	if line == "" {
		line = lookupVar(vars, "%line", "None")
	}
	raw := ctx.Raw
	if raw == "" {
		raw = lookupVar(vars, "%raw", "None")
	}

	replace := func(token, value string) {
		tokens = append(tokens, value)
		text = strings.Replace(text, token, value, 1)
	}

	for _, token := range cl.Tokens {
		if len(token) == 0 {
			continue
		}

		switch {
		case isWildcardRef(token):
			idx := int(token[1] - '0')
			value := "None"
			if idx <= len(ctx.Wildcards) {
				value = ctx.Wildcards[idx-1]
			}
			replace(token, value)

		case token == "%line":
			replace(token, line)

		case token == "%raw":
			replace(token, raw)

		case token[0] == '%':
			replace(token, lookupVar(vars, token, ""))

		case token[0] == '@':
			replace(token, lookupVar(vars, token[1:], ""))

		default:
			tokens = append(tokens, token)
		}
	}

	return text, tokens
}

// isWildcardRef reports whether a token is exactly %1 through %9.
func isWildcardRef(token string) bool {
	return len(token) == 2 && token[0] == '%' && token[1] >= '1' && token[1] <= '9'
}

func lookupVar(vars VarSource, name, fallback string) string {
	if vars == nil {
		return fallback
	}
	if value, ok := vars.GetVariable(name); ok {
		return value
	}
	return fallback
}
