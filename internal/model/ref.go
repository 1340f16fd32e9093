package model

import (
	"errors"
	"fmt"
)

// ErrIdentityDrift is returned when a reference is resolved with an entity
// whose key differs from the foreign key the reference was created with.
var ErrIdentityDrift = errors.New("reference identity drift")

// Keyed is implemented by every entity with an integer surrogate key.
type Keyed interface {
	Key() uint64
}

// Ref is a foreign-key reference that is either unresolved (only the id is
// known) or resolved to the loaded entity. A nil *Ref means "no relation";
// a Ref never carries id 0.
type Ref[T Keyed] struct {
	id  uint64
	val *T
}

// Unresolved returns a stub reference for id, or nil when id is 0.
func Unresolved[T Keyed](id uint64) *Ref[T] {
	if id == 0 {
		return nil
	}
	return &Ref[T]{id: id}
}

// Resolved returns a reference that already holds v.
func Resolved[T Keyed](v *T) *Ref[T] {
	if v == nil {
		return nil
	}
	return &Ref[T]{id: (*v).Key(), val: v}
}

// ID returns the referenced key. It is safe to call on a nil Ref.
func (r *Ref[T]) ID() uint64 {
	if r == nil {
		return 0
	}
	return r.id
}

// Get returns the resolved entity and whether the reference is resolved.
func (r *Ref[T]) Get() (*T, bool) {
	if r == nil || r.val == nil {
		return nil, false
	}
	return r.val, true
}

// IsResolved reports whether the reference holds a loaded entity.
func (r *Ref[T]) IsResolved() bool {
	return r != nil && r.val != nil
}

// Resolve replaces the stub with v. The key of v must match the stub id.
func (r *Ref[T]) Resolve(v *T) error {
	if r == nil {
		return errors.New("resolve on nil reference")
	}
	if v == nil {
		return errors.New("resolve with nil entity")
	}
	if got := (*v).Key(); got != r.id {
		return fmt.Errorf("%w: want %d, got %d", ErrIdentityDrift, r.id, got)
	}
	r.val = v
	return nil
}
