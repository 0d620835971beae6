package errorhandler

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"
)

// Executor runs a Cobra command while capturing its error stream so failures
// are reported once, with a normalized message.
type Executor struct {
	normalizer DefaultNormalizer
}

// NewExecutor constructs an Executor.
func NewExecutor() *Executor {
	return &Executor{normalizer: DefaultNormalizer{}}
}

// Execute runs the command with stderr redirected into a buffer. On failure
// it returns a *CommandError carrying the normalized stderr output together
// with the original error, so errors.Is and errors.As still see the cause.
func (e *Executor) Execute(cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	var errBuf bytes.Buffer

	originalErrWriter := cmd.ErrOrStderr()

	cmd.SetErr(&errBuf)
	defer cmd.SetErr(originalErrWriter)

	err := cmd.Execute()
	if err == nil {
		return nil
	}

	return &CommandError{
		message: e.normalizer.Normalize(errBuf.String()),
		cause:   err,
	}
}

// CommandError is a Cobra execution failure augmented with the normalized
// stderr output captured during the run.
type CommandError struct {
	message string
	cause   error
}

// Error implements the error interface. The normalized message wins when it
// already contains the cause, otherwise the two are joined.
func (e *CommandError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return e.message
	case e.message != "":
		if strings.Contains(e.message, e.cause.Error()) {
			return e.message
		}

		return e.message + ": " + e.cause.Error()
	default:
		return e.cause.Error()
	}
}

// Unwrap exposes the underlying cause for errors.Is/errors.As consumers.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// DefaultNormalizer cleans up the stderr output Cobra produces on failure.
type DefaultNormalizer struct{}

// Normalize trims whitespace, strips the leading "Error: " prefix, and keeps
// multi-line usage hints intact.
func (DefaultNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) == 0 {
		return ""
	}

	first := strings.TrimSpace(lines[0])
	first = strings.TrimPrefix(first, "Error: ")
	lines[0] = first

	return strings.Join(lines, "\n")
}
