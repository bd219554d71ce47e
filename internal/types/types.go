// Package types holds the shared data structures used across the
// application. Handlers, storage and validation all import types without
// depending on each other.
package types

import (
	"strconv"
	"time"
)

// Student is a normalized, validated student record as it lives in the
// store.
//
// ID and CreatedAt are owned by the store: they are assigned on creation
// and never change afterwards.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RollNumber int       `json:"rollNumber"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	GPA        float64   `json:"gpa"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StudentInput is a raw candidate record exactly as submitted by a form.
// Every field is text so that a re-rendered form can echo back what the
// user typed, including values that failed to parse.
//
// The form:"..." tags name the HTML form fields and are also the keys used
// in validation error maps.
type StudentInput struct {
	Name       string `form:"name"`
	RollNumber string `form:"rollNumber"`
	Email      string `form:"email"`
	Department string `form:"department"`
	GPA        string `form:"gpa"`
}

// Input converts a stored record back into form values, used to pre-fill
// the edit form and as the base of a partial update.
func (s Student) Input() StudentInput {
	return StudentInput{
		Name:       s.Name,
		RollNumber: strconv.Itoa(s.RollNumber),
		Email:      s.Email,
		Department: s.Department,
		GPA:        strconv.FormatFloat(s.GPA, 'f', -1, 64),
	}
}
