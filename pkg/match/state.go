package match

// Result is the outcome of one match attempt or command execution.
type Result int

const (
	NotSet Result = iota - 1
	Failure
	Success
	Timeout
	Abort
)

func (r Result) String() string {
	switch r {
	case Failure:
		return "FAILURE"
	case Success:
		return "SUCCESS"
	case Timeout:
		return "TIMEOUT"
	case Abort:
		return "ABORT"
	default:
		return "NOTSET"
	}
}

// State is the record produced by a match attempt. It is created fresh per
// attempt and never mutated after being returned.
type State struct {
	Result    Result
	ID        string
	Line      string
	Wildcards []string
}
