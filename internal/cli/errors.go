package cli

import (
	"errors"
	"fmt"
)

// ErrUsage matches every error caused by bad input: flags, config files,
// unreadable documents or unwritable output.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg   string
	cause error
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

// newUsageErrorf formats like fmt.Errorf; a %w operand stays reachable
// through errors.Is and errors.As.
func newUsageErrorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return usageError{msg: err.Error(), cause: errors.Unwrap(err)}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

func (e usageError) Unwrap() error { return e.cause }
