package match

import (
	"time"
)

// Callback is invoked with the state of a finished match attempt.
type Callback func(st State)

// Object holds the metadata shared by every kind of session object.
type Object struct {
	kind Kind

	ID       string
	Group    string
	Enabled  bool
	Priority int
	Timeout  time.Duration
	Sync     bool
	OneShot  bool

	// Matching behavior. Meaningless for timers but kept in the shared
	// record so every kind serializes the same way.
	KeepEval   bool
	IgnoreCase bool
	IsRegExp   bool
	Raw        bool

	OnSuccess Callback
	OnFailure Callback
	OnTimeout Callback
}

const (
	DefaultPriority = 100
	DefaultTimeout  = 10 * time.Second
)

func newObject(kind Kind, opts ...Option) Object {
	o := Object{
		kind:     kind,
		Enabled:  true,
		Priority: DefaultPriority,
		Timeout:  DefaultTimeout,
		Sync:     true,
		IsRegExp: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewTimerObject creates the shared metadata record for a timer. Timers
// have no patterns, so they carry the record directly instead of a Matcher.
func NewTimerObject(opts ...Option) Object {
	return newObject(KindTimer, opts...)
}

// Kind returns the object's tag.
func (o *Object) Kind() Kind {
	return o.kind
}

// Meta gives the session access to the shared metadata record.
func (o *Object) Meta() *Object {
	return o
}

// Option configures an object at construction time.
type Option func(*Object)

func WithID(id string) Option {
	return func(o *Object) { o.ID = id }
}

func WithGroup(group string) Option {
	return func(o *Object) { o.Group = group }
}

func WithEnabled(enabled bool) Option {
	return func(o *Object) { o.Enabled = enabled }
}

func WithPriority(priority int) Option {
	return func(o *Object) { o.Priority = priority }
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Object) { o.Timeout = timeout }
}

// WithAsync marks the object asynchronous: it signals its gate on success
// and skips callback invocation during Match.
func WithAsync() Option {
	return func(o *Object) { o.Sync = false }
}

// WithOneShot removes the object from the session after its first firing.
func WithOneShot() Option {
	return func(o *Object) { o.OneShot = true }
}

// WithKeepEval lets lower-priority objects still see a line this one fired on.
func WithKeepEval() Option {
	return func(o *Object) { o.KeepEval = true }
}

func WithIgnoreCase() Option {
	return func(o *Object) { o.IgnoreCase = true }
}

// WithLiteral switches from regex matching to substring matching.
func WithLiteral() Option {
	return func(o *Object) { o.IsRegExp = false }
}

// WithRaw matches against the line with its ANSI markers intact.
func WithRaw() Option {
	return func(o *Object) { o.Raw = true }
}

func WithOnSuccess(cb Callback) Option {
	return func(o *Object) { o.OnSuccess = cb }
}

func WithOnFailure(cb Callback) Option {
	return func(o *Object) { o.OnFailure = cb }
}

func WithOnTimeout(cb Callback) Option {
	return func(o *Object) { o.OnTimeout = cb }
}
