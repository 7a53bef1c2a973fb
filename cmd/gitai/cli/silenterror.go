package cli

// SilentError wraps an error a command has already reported to the user
// (e.g. via a formatted message on stderr), so main.go's top-level error
// handler can skip printing it a second time. Grounded on the teacher's
// own NewSilentError/SilentError pattern, used throughout its resume and
// reset commands for exactly this "already explained, just exit non-zero"
// case.
type SilentError struct {
	Err error
}

func NewSilentError(err error) *SilentError {
	return &SilentError{Err: err}
}

func (e *SilentError) Error() string { return e.Err.Error() }

func (e *SilentError) Unwrap() error { return e.Err }
