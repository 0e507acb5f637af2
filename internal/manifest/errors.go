package manifest

import (
	"errors"
	"fmt"
)

// Resolution errors. All of them abort a run before any unit is packaged.
var (
	// ErrParse indicates a malformed document or a failed directive.
	ErrParse = errors.New("manifest parse error")

	// ErrUnresolvedReference indicates a placeholder path that does not exist.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrInvalidPathSegment indicates a path segment that cannot index a sequence.
	ErrInvalidPathSegment = errors.New("invalid path segment")

	// ErrCyclicReference indicates placeholders that reference each other.
	ErrCyclicReference = errors.New("cyclic reference")

	// ErrNonScalarReference indicates a mapping or sequence embedded in a longer string.
	ErrNonScalarReference = errors.New("non-scalar reference")

	// ErrInvalidUnit indicates a unit that cannot be deployed as declared.
	ErrInvalidUnit = errors.New("invalid unit")
)

// ReferenceError describes a placeholder that failed to resolve.
type ReferenceError struct {
	// Path is the dotted path inside ${...}.
	Path string

	// Segment is the path segment where lookup stopped.
	Segment string

	Err error
}

func (e *ReferenceError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("${%s}: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("${%s}: segment %q: %v", e.Path, e.Segment, e.Err)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}
