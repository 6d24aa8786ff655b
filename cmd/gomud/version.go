package main

// Version information, set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
