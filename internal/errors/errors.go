package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/studyflow/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		var h *HintError
		if stderrors.As(err, &h) {
			fmt.Fprintf(os.Stderr, "%s\n", WithHint(h.Err, h.Hint))
		} else {
			fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		}
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}

// WithHint appends a guidance line to a formatted error.
func WithHint(err error, hint string) string {
	if err == nil {
		return ""
	}
	if hint == "" {
		return Format(err)
	}
	return fmt.Sprintf("%s\n  Hint: %s", Format(err), hint)
}

// HintError carries a guidance line that Fatal prints below the error.
type HintError struct {
	Err  error
	Hint string
}

func (e *HintError) Error() string { return e.Err.Error() }

func (e *HintError) Unwrap() error { return e.Err }

// Hint attaches a guidance line to err.
func Hint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &HintError{Err: err, Hint: hint}
}
