package match

// Kind tags what a session object is. Dispatch decisions are made on this
// tag, never by inspecting the concrete type.
type Kind int

const (
	KindAlias Kind = iota
	KindTrigger
	KindCommand
	KindTimer
	KindGMCPTrigger
)

func (k Kind) String() string {
	switch k {
	case KindAlias:
		return "alias"
	case KindTrigger:
		return "trigger"
	case KindCommand:
		return "command"
	case KindTimer:
		return "timer"
	case KindGMCPTrigger:
		return "gmcp"
	default:
		return "object"
	}
}

// Abbr returns the short prefix used when generating ids for this kind.
func (k Kind) Abbr() string {
	switch k {
	case KindAlias:
		return "ali"
	case KindTrigger:
		return "tri"
	case KindCommand:
		return "cmd"
	case KindTimer:
		return "ti"
	case KindGMCPTrigger:
		return "gmcp"
	default:
		return "obj"
	}
}
