// Package storage defines the Storage interface: the contract any record
// store backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so tests can run them against a
// throwaway database and a different backend only needs a new
// implementation plus one line in main.go.
//
// Failures come back as one of three shapes:
//
//   - ErrNotFound     the referenced id does not exist
//   - *ConflictError  a write would break a uniqueness constraint
//   - anything else   an unexpected store failure
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/types"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = errors.New("student not found")

// ConflictError reports a write rejected by a uniqueness constraint.
// Field is the form field name of the first conflicting field, e.g.
// "rollNumber" or "email".
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate value for unique field %q", e.Field)
}

// Field names a student attribute that a Query can filter or sort on.
type Field string

const (
	FieldName       Field = "name"
	FieldDepartment Field = "department"
	FieldGPA        Field = "gpa"
	FieldCreatedAt  Field = "createdAt"
)

// Contains is a case-insensitive substring match of Term against Field.
type Contains struct {
	Field Field
	Term  string
}

// Filter selects records. A record matches when ANY of the Contains
// predicates matches; an empty filter matches every record.
type Filter struct {
	AnyOf []Contains
}

// Order is one sort key.
type Order struct {
	Field Field
	Desc  bool
}

// Query is a complete find request: which records, in which order.
type Query struct {
	Filter Filter
	Order  []Order
}

// Storage is the record store contract.
type Storage interface {
	// CreateStudent inserts a new record. The store assigns ID and
	// CreatedAt and returns the stored record.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// GetStudentByID returns ErrNotFound if no record has this id.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// GetStudents returns the records matching q in q's order.
	// Returns an empty slice (not nil) when nothing matches.
	GetStudents(ctx context.Context, q Query) ([]types.Student, error)

	// UpdateStudentByID replaces the mutable fields of an existing record.
	// ID and CreatedAt are left untouched.
	UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a record permanently. Returns ErrNotFound
	// if there was nothing to delete.
	DeleteStudentByID(ctx context.Context, id string) error
}
