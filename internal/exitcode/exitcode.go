// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown setting/task/command,
	// invalid date, duplicate task).
	UserError = 1

	// ConfigError indicates that server, user or password is not configured.
	ConfigError = 2

	// RemoteError indicates the dotProject server rejected or failed a submission.
	RemoteError = 3

	// StoreError indicates the data file could not be read, parsed or written.
	StoreError = 4
)
