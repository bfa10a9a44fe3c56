package ini

import (
	"errors"
	"fmt"
)

// ParseError reports malformed INI syntax.
type ParseError struct {
	File    string // File being parsed
	Line    int    // 1-based line number
	Content string // Offending line
	Reason  string // Why the line was rejected
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	if e.Content != "" {
		return fmt.Sprintf("%s:%d: %s (%q)", file, e.Line, e.Reason, e.Content)
	}
	return fmt.Sprintf("%s:%d: %s", file, e.Line, e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(file string, line int, content, reason string) *ParseError {
	return &ParseError{
		File:    file,
		Line:    line,
		Content: content,
		Reason:  reason,
	}
}

// IsParseError checks if an error is a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
