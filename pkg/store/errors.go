package store

import (
	"errors"
	"fmt"
)

// ErrAggregateUnavailable marks an aggregate relation that cannot be
// queried. It is distinct from an empty (but available) relation so callers
// can decide between retrying and rendering an empty scene.
var ErrAggregateUnavailable = errors.New("aggregate relation unavailable")

// UnavailableError wraps a query failure against one aggregate relation.
type UnavailableError struct {
	Relation Relation
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("aggregate relation %s unavailable: %v", e.Relation, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool {
	return target == ErrAggregateUnavailable
}
