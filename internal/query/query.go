// Package query translates the list page's query string into a
// storage.Query.
package query

import (
	"net/url"

	"github.com/aanand-mishra/student-records/internal/storage"
)

// Query string parameter names.
const (
	ParamSearch    = "search"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
)

const orderDesc = "desc"

// sortable lists the fields a caller may sort by. Everything else falls
// back to newest-first.
var sortable = map[string]storage.Field{
	"name": storage.FieldName,
	"gpa":  storage.FieldGPA,
}

// Params is the list request as the page echoes it back into its search
// box and sort controls.
type Params struct {
	Search    string
	SortBy    string
	SortOrder string
}

// FromValues reads the list parameters from a query string.
func FromValues(v url.Values) Params {
	return Params{
		Search:    v.Get(ParamSearch),
		SortBy:    v.Get(ParamSortBy),
		SortOrder: v.Get(ParamSortOrder),
	}
}

// Echo returns p with the defaults the list page displays when a
// parameter was not given.
func (p Params) Echo() Params {
	if p.SortBy == "" {
		p.SortBy = string(storage.FieldCreatedAt)
	}
	if p.SortOrder == "" {
		p.SortOrder = orderDesc
	}
	return p
}

// Query builds the store query for p.
func (p Params) Query() storage.Query {
	return Build(p.Search, p.SortBy, p.SortOrder)
}

// Build returns a query that matches records whose name or department
// contains search (case-insensitive, anywhere in the value), or every
// record when search is empty.
//
// sortBy must be "name" or "gpa"; sortOrder "desc" sorts descending and
// anything else ascending. Any other sortBy, including none, orders by
// creation time, newest first.
func Build(search, sortBy, sortOrder string) storage.Query {
	var q storage.Query

	if search != "" {
		q.Filter.AnyOf = []storage.Contains{
			{Field: storage.FieldName, Term: search},
			{Field: storage.FieldDepartment, Term: search},
		}
	}

	if field, ok := sortable[sortBy]; ok {
		q.Order = []storage.Order{{Field: field, Desc: sortOrder == orderDesc}}
	} else {
		q.Order = []storage.Order{{Field: storage.FieldCreatedAt, Desc: true}}
	}

	return q
}
