// Package command implements multi-step request/response commands: a
// command is written to the connection, configured success, failure and
// retry triggers race against a timeout, and the first to fire decides the
// outcome. Retries are bounded and backed off.
package command
