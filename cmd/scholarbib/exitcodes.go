package main

const (
	ExitSuccess     = 0 // Success, including a skipped update
	ExitError       = 1 // Runtime failure (fetch, write)
	ExitConfigError = 2 // Invalid or unreadable configuration
	ExitDataError   = 3 // Missing or unusable bibliography file
)
