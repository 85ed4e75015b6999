package main

// Set via -ldflags at build time; zero values are harmless for local runs.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
