package sunburnt

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTypeTag signals a definition without the required "type" meta tag.
	ErrMissingTypeTag = errors.New("sunburnt: definition requires a \"type\" meta tag")
	// ErrUnknownField signals a declared field the backend schema cannot resolve.
	ErrUnknownField = errors.New("sunburnt: field not present in backend schema")
	// ErrMissingHook signals a field with neither an attribute path nor a registered hook.
	ErrMissingHook = errors.New("sunburnt: no attribute path and no registered hook")
	// ErrNoAttribute signals a missing attribute during path traversal.
	ErrNoAttribute = errors.New("sunburnt: attribute not found")
)

// FieldResolutionError reports an attribute path that could not be walked to
// the end, naming the segment that failed. It unwraps to ErrNoAttribute, which
// is what marks it recoverable for optional fields.
type FieldResolutionError struct {
	Record  any
	Path    string
	Segment string
}

func (e *FieldResolutionError) Error() string {
	return fmt.Sprintf(
		"record %v does not contain %q (resolving segment %q): %s",
		e.Record, e.Path, e.Segment, ErrNoAttribute.Error(),
	)
}

func (e *FieldResolutionError) Unwrap() error { return ErrNoAttribute }
