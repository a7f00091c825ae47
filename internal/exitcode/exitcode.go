// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown command, out of range).
	UserError = 1

	// AuthError indicates a missing or rejected session.
	AuthError = 2

	// BackendError indicates a service or network error.
	BackendError = 3
)
