package loader

import (
	"fmt"
	"regexp"
	"strconv"
)

// ParseError reports a forest file that could not be read or decoded.
// Line is 1-based and zero when unknown.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a decoded forest that breaks a node rule.
type ValidationError struct {
	Path  string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var lineRegex = regexp.MustCompile(`line (\d+)`)

// extractLine pulls the first "line N" out of a decoder error message.
func extractLine(err error) int {
	if err == nil {
		return 0
	}
	matches := lineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	line, convErr := strconv.Atoi(matches[1])
	if convErr != nil {
		return 0
	}
	return line
}

// lineAtOffset converts a byte offset into a 1-based line number.
func lineAtOffset(data []byte, offset int64) int {
	if offset <= 0 {
		return 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line := 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
		}
	}
	return line
}
