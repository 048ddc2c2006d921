package dispatch

import (
	"errors"
	"fmt"
)

// ValidationError rejects an operation before any state changes. Field
// names the offending input when one can be singled out.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports a lookup miss. Kind is "vehicle" or "trip".
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConsistencyWarning flags a tolerated inconsistency met during an
// operation that still succeeded. It travels in results and the audit
// journal, never as an operation failure.
type ConsistencyWarning struct {
	Op     string
	Plate  string
	Detail string
}

func (w *ConsistencyWarning) Error() string {
	return fmt.Sprintf("%s: %s", w.Op, w.Detail)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
