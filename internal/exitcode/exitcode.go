// Package exitcode defines the process exit status for each failure class.
package exitcode

const (
	Success        = 0
	UsageError     = 1
	DecodeError    = 2
	ParseError     = 3
	ReferenceError = 4
	OutputError    = 5
	PublishError   = 6
	DBConnError    = 7
)
