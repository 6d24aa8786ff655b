// Package match implements the reactive objects a session dispatches
// incoming lines to: aliases, triggers, commands, timers and GMCP triggers.
//
// Every object carries the same metadata (id, group, priority, enabled and
// so on) plus an explicit Kind tag; the session's tables select behavior on
// the tag, never on the concrete type's name. Matchers compare lines against
// compiled patterns, either a single pattern or an ordered multi-line
// sequence, and expose both synchronous callbacks and an awaitable gate for
// asynchronous waiters.
package match
