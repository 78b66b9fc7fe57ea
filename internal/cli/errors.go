package cli

import "fmt"

// Process exit codes.
const (
	// ExitUsage signals invalid arguments, flags or configuration.
	ExitUsage = 1
	// ExitRoot signals a scan target that does not exist or cannot be read.
	ExitRoot = 2
	// ExitLog signals a failure writing the log file.
	ExitLog = 3
	// ExitArchive signals a failure reading or writing the scan archive.
	ExitArchive = 4
)

// ExitError carries the exit code a failure should terminate the process with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitErrorf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}
