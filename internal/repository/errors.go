// Package repository is the row store: one repo per table, every method
// running on the caller's database.Session. Records come back fully
// scalar with relationship fields as unresolved model.Ref stubs; resolving
// them is the hydrator's job.
package repository

import "errors"

// ErrNotFound is wrapped by every per-entity not-found error so callers
// can test for the class with errors.Is.
var ErrNotFound = errors.New("not found")

// ErrWriteFailed is returned when a mutation affected zero rows or the
// database did not return a generated id. It is the row store's only
// existence check for updates and deletes.
var ErrWriteFailed = errors.New("write failed")

// ErrForbidden marks an operation the caller may not perform, such as an
// inactive staff account logging in.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is wrapped by errors for writes that clash with stored state.
var ErrConflict = errors.New("conflict")
