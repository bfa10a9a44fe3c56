package options

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidValueError reports a value that cannot be coerced to its option's
// type. Source tells the user where to fix it.
type InvalidValueError struct {
	Option   string
	Value    string
	Expected string
	Source   Source
}

func (e *InvalidValueError) Error() string {
	msg := fmt.Sprintf("invalid value %q for option %q: expected %s", e.Value, e.Option, e.Expected)
	if e.Source.Kind != FromDefault {
		msg += " (from " + e.Source.String() + ")"
	}
	return msg
}

// NewInvalidValueError creates an InvalidValueError for sp.
func NewInvalidValueError(sp Spec, value string, src Source) *InvalidValueError {
	return &InvalidValueError{Option: sp.Name, Value: value, Expected: sp.Expected(), Source: src}
}

// IsInvalidValueError checks if the error is an InvalidValueError.
func IsInvalidValueError(err error) bool {
	var e *InvalidValueError
	return errors.As(err, &e)
}

// RequiredError reports options that must be set but have no value from any
// source.
type RequiredError struct {
	Options []string
}

func (e *RequiredError) Error() string {
	if len(e.Options) == 1 {
		return fmt.Sprintf("required option --%s is not set", e.Options[0])
	}
	return "required options are not set: --" + strings.Join(e.Options, ", --")
}
