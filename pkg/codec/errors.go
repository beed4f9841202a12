package codec

import (
	"errors"
	"fmt"
)

// Issue codes reported by ShapeError.
const (
	CodeParseError   = "parse_error"
	CodeInvalidType  = "invalid_type"
	CodeRequired     = "required"
	CodeDuplicateKey = "duplicate_key"
)

// ParseMessage is the user-facing text for input that is not JSON.
const ParseMessage = "Invalid JSON: could not parse."

// ParseError reports input that is not valid JSON.
type ParseError struct {
	// Offset is the byte offset reported by the decoder, -1 when unknown.
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("codec: could not parse JSON (offset %d): %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("codec: could not parse JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError reports valid JSON that does not describe a field list. Path is
// the dotted location of the offending element ("2", "1.0.name"); Expected
// describes the shape that was required there.
type ShapeError struct {
	Path     string
	Code     string
	Expected string
	Got      string
}

func (e *ShapeError) Error() string {
	return "codec: " + e.Message()
}

// Message renders the error the way the review pane shows it.
func (e *ShapeError) Message() string {
	where := ""
	if e.Path != "" {
		where = " at " + e.Path
	}
	if e.Got != "" {
		return fmt.Sprintf("Invalid form JSON%s: %s (got %s)", where, e.Expected, e.Got)
	}
	return fmt.Sprintf("Invalid form JSON%s: %s", where, e.Expected)
}

// Message returns the user-facing text for a Hydrate failure.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return ParseMessage
	}
	var shapeErr *ShapeError
	if errors.As(err, &shapeErr) {
		return shapeErr.Message()
	}
	return err.Error()
}

// IsParseError reports whether err is a syntax failure.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsShapeError reports whether err is a structural failure.
func IsShapeError(err error) bool {
	var shapeErr *ShapeError
	return errors.As(err, &shapeErr)
}
