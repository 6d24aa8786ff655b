// Package session ties the client together: one Session owns a server
// connection, drives the telnet classifier over it, assembles decoded bytes
// into lines, dispatches those lines to the registered triggers in priority
// order, expands and executes script input, and manages the tables of
// aliases, triggers, commands, timers and GMCP triggers.
package session
