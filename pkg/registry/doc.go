// Package registry provides a generic, type-safe registry used by sessions
// to manage their reactive objects (aliases, triggers, timers, commands)
// by id.
package registry
