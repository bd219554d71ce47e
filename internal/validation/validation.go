// Package validation turns a raw StudentInput into a normalized Student,
// or reports every failing field at once so a form can show all problems
// in a single round trip.
//
// Rules are declared as go-playground/validator tags on an internal
// struct. The numeric and email rules are custom tags because they work on
// the raw text: "abc" in the roll number box must be reported the same way
// as "-3".
package validation

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Field names used as keys in Errors. They match the HTML form fields.
const (
	FieldName       = "name"
	FieldRollNumber = "rollNumber"
	FieldEmail      = "email"
	FieldDepartment = "department"
	FieldGPA        = "gpa"
)

// messages holds the one message shown per failing field.
var messages = map[string]string{
	FieldName:       "Name is required",
	FieldRollNumber: "Roll number must be a positive integer",
	FieldEmail:      "Please enter a valid email",
	FieldDepartment: "Department is required",
	FieldGPA:        "GPA must be between 0 and 4",
}

// emailPattern is the legacy address pattern. It is permissive in places
// (2-3 character top-level segment only, no quoted local parts) and is
// kept as is so previously accepted addresses stay valid.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// decimalPattern is the plain decimal notation accepted for a GPA. It keeps
// out the hex, underscore and Inf forms strconv.ParseFloat also takes.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Errors maps a form field name to a human-readable message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// AsErrors extracts Errors from err, if it is one.
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// candidate is the trimmed input that the tag rules run against.
type candidate struct {
	Name       string `form:"name"       validate:"required"`
	RollNumber string `form:"rollNumber" validate:"rollnumber"`
	Email      string `form:"email"      validate:"legacyemail"`
	Department string `form:"department" validate:"required"`
	GPA        string `form:"gpa"        validate:"gpa"`
}

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name instead of the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})

	mustRegister(v, "rollnumber", func(fl validator.FieldLevel) bool {
		_, ok := parseRollNumber(fl.Field().String())
		return ok
	})
	mustRegister(v, "legacyemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "gpa", func(fl validator.FieldLevel) bool {
		_, ok := parseGPA(fl.Field().String())
		return ok
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate checks every field of in. On success it returns the normalized
// record: strings trimmed, email lowercased, numbers parsed. Otherwise the
// error is an Errors value with one entry per failing field.
func Validate(in types.StudentInput) (types.Student, error) {
	c := normalize(in)

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return types.Student{}, err
		}

		errs := make(Errors, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs[fe.Field()] = messages[fe.Field()]
		}
		return types.Student{}, errs
	}

	rollNumber, _ := parseRollNumber(c.RollNumber)
	gpa, _ := parseGPA(c.GPA)

	return types.Student{
		Name:       c.Name,
		RollNumber: rollNumber,
		Email:      c.Email,
		Department: c.Department,
		GPA:        gpa,
	}, nil
}

func normalize(in types.StudentInput) candidate {
	return candidate{
		Name:       strings.TrimSpace(in.Name),
		RollNumber: strings.TrimSpace(in.RollNumber),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Department: strings.TrimSpace(in.Department),
		GPA:        strings.TrimSpace(in.GPA),
	}
}

func parseRollNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func parseGPA(s string) (float64, bool) {
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 4 {
		return 0, false
	}
	return f, true
}
