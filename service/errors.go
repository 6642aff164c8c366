package service

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when a non-admin invokes an admin command
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMissingArgument is returned when a command requires an argument that was not provided
	ErrMissingArgument = errors.New("missing argument")
)

// ParseError indicates a message that looked like a numeric entry but could
// not be parsed as a signed decimal. It is reported back to the user as a
// format hint, never escalated.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("not a signed decimal entry: %q", e.Input)
}

// IsParseError reports whether err is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
