// Package student contains all HTTP handlers for the Student resource.
//
// Every handler is built by a factory that receives its dependencies once
// at startup and returns the function the router calls on each request:
//
//	router.HandleFunc("GET /students", site.Wrap(student.List(store, view)))
//
// Page handlers return an error instead of writing failure pages
// themselves; web.Site renders the fallback page for it. Validation and
// uniqueness failures never leave the handler: they re-render the form
// with per-field messages.
package student

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aanand-mishra/student-records/internal/http/render"
	"github.com/aanand-mishra/student-records/internal/http/web"
	"github.com/aanand-mishra/student-records/internal/query"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// ListView is the view-model of the student list.
type ListView struct {
	Title     string
	Students  []types.Student
	Search    string
	SortBy    string
	SortOrder string
}

// FormView is the view-model of the add and edit forms. Student holds the
// values to show in the inputs, which after a failed submission are the
// submitted ones.
type FormView struct {
	Title   string
	ID      string
	Student types.StudentInput
	Errors  validation.Errors
}

// DetailsView is the view-model of a single student's page.
type DetailsView struct {
	Title   string
	Student types.Student
}

const (
	titleList    = "Students"
	titleAdd     = "Add New Student"
	titleEdit    = "Edit Student"
	titleDetails = "Student Details"
)

// ─────────────────────────────────────────────────────────────────────────────
// List handles GET /students?search=&sortBy=&sortOrder=
// Lists the students whose name or department contains `search`, sorted
// by name or gpa when asked, newest first otherwise.
// ─────────────────────────────────────────────────────────────────────────────
func List(store storage.Storage, view render.Renderer) web.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		params := query.FromValues(r.URL.Query())
		slog.Debug("listing students",
			slog.String("search", params.Search),
			slog.String("sortBy", params.SortBy),
			slog.String("sortOrder", params.SortOrder))

		students, err := store.GetStudents(r.Context(), params.Query())
		if err != nil {
			return &web.Error{
				Status:  http.StatusInternalServerError,
				Title:   "Error",
				Message: "Failed to fetch students",
				Err:     err,
			}
		}

		echo := params.Echo()
		return view.Render(w, http.StatusOK, render.PageStudents, ListView{
			Title:     titleList,
			Students:  students,
			Search:    echo.Search,
			SortBy:    echo.SortBy,
			SortOrder: echo.SortOrder,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// AddForm handles GET /students/add
// ─────────────────────────────────────────────────────────────────────────────
func AddForm(view render.Renderer) web.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		return view.Render(w, http.StatusOK, render.PageAddStudent, FormView{
			Title:  titleAdd,
			Errors: validation.Errors{},
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Create handles POST /students/add
// Validates the submitted form and stores a new student.
//
//	302 → /students   on success
//	400 add form      with one message per invalid field
//	409 add form      when the roll number or email is already taken
// ─────────────────────────────────────────────────────────────────────────────
func Create(store storage.Storage, view render.Renderer) web.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		slog.Info("creating a student")

		in, err := readInput(w, r, types.StudentInput{})
		if err != nil {
			return err
		}

		form := func(status int, errs validation.Errors) error {
			return view.Render(w, status, render.PageAddStudent, FormView{
				Title:   titleAdd,
				Student: in,
				Errors:  errs,
			})
		}

		student, err := validation.Validate(in)
		if errs, ok := validation.AsErrors(err); ok {
			return form(http.StatusBadRequest, errs)
		}
		if err != nil {
			return err
		}

		created, err := store.CreateStudent(r.Context(), student)
		var conflict *storage.ConflictError
		if errors.As(err, &conflict) {
			return form(http.StatusConflict, conflictErrors(conflict))
		}
		if err != nil {
			return &web.Error{
				Status:  http.StatusInternalServerError,
				Title:   "Error",
				Message: "Failed to add student. Please try again.",
				Err:     err,
			}
		}

		slog.Info("student created", slog.String("id", created.ID))
		http.Redirect(w, r, "/students", http.StatusFound)
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Details handles GET /students/{id}
// ─────────────────────────────────────────────────────────────────────────────
func Details(store storage.Storage, view render.Renderer) web.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		student, err := find(r, store, "The student you are looking for does not exist.")
		if err != nil {
			return err
		}

		return view.Render(w, http.StatusOK, render.PageStudentDetails, DetailsView{
			Title:   titleDetails,
			Student: student,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// EditForm handles GET /students/edit/{id}
// ─────────────────────────────────────────────────────────────────────────────
func EditForm(store storage.Storage, view render.Renderer) web.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		student, err := find(r, store, "The student you are looking for does not exist.")
		if err != nil {
			return err
		}

		return view.Render(w, http.StatusOK, render.PageEditStudent, FormView{
			Title:   titleEdit,
			ID:      student.ID,
			Student: student.Input(),
			Errors:  validation.Errors{},
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/edit/{id}
// Merges the submitted fields over the stored record and saves the result.
// Fields missing from the submission keep their stored value.
//
// The record is looked up before anything is validated, so an unknown id
// is a 404 and never a form full of errors against an empty record.
//
//	302 → /students/{id}  on success
//	400 edit form         with one message per invalid field
//	409 edit form         when the roll number or email is already taken
//	404 error page        unknown id
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage, view render.Renderer) web.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		existing, err := find(r, store, "The student you are trying to edit does not exist.")
		if err != nil {
			return err
		}
		slog.Info("updating a student", slog.String("id", existing.ID))

		in, err := readInput(w, r, existing.Input())
		if err != nil {
			return err
		}

		form := func(status int, errs validation.Errors) error {
			return view.Render(w, status, render.PageEditStudent, FormView{
				Title:   titleEdit,
				ID:      existing.ID,
				Student: in,
				Errors:  errs,
			})
		}

		student, err := validation.Validate(in)
		if errs, ok := validation.AsErrors(err); ok {
			return form(http.StatusBadRequest, errs)
		}
		if err != nil {
			return err
		}

		updated, err := store.UpdateStudentByID(r.Context(), existing.ID, student)
		var conflict *storage.ConflictError
		switch {
		case errors.As(err, &conflict):
			return form(http.StatusConflict, conflictErrors(conflict))
		case errors.Is(err, storage.ErrNotFound):
			// Deleted between the lookup and the write.
			return notFound("The student you are trying to edit does not exist.", err)
		case err != nil:
			return &web.Error{
				Status:  http.StatusInternalServerError,
				Title:   "Error",
				Message: "Failed to update student",
				Err:     err,
			}
		}

		slog.Info("student updated", slog.String("id", updated.ID))
		http.Redirect(w, r, "/students/"+updated.ID, http.StatusFound)
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /students/delete/{id}
// Browsers call this asynchronously, so failures are JSON, not pages:
//
//	302 → /students                                on success
//	404 { "error": "Student not found" }           unknown id
//	500 { "error": "Failed to delete student" }    store failure
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		err := storage.ErrNotFound
		if validID(id) {
			err = store.DeleteStudentByID(r.Context(), id)
		}

		switch {
		case errors.Is(err, storage.ErrNotFound):
			response.WriteJSON(w, http.StatusNotFound, response.Error("Student not found"))
			return
		case err != nil:
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Error("Failed to delete student"))
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		http.Redirect(w, r, "/students", http.StatusFound)
	}
}

// find loads the student named by the {id} path segment. Ids that are not
// even well-formed are reported as not found without asking the store.
func find(r *http.Request, store storage.Storage, missing string) (types.Student, error) {
	id := r.PathValue("id")
	if !validID(id) {
		return types.Student{}, notFound(missing, storage.ErrNotFound)
	}

	student, err := store.GetStudentByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return types.Student{}, notFound(missing, err)
	}
	if err != nil {
		return types.Student{}, &web.Error{
			Status:  http.StatusInternalServerError,
			Title:   "Error",
			Message: "Failed to fetch student details",
			Err:     err,
		}
	}
	return student, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(message string, err error) error {
	return &web.Error{
		Status:  http.StatusNotFound,
		Title:   "Student Not Found",
		Message: message,
		Err:     err,
	}
}

// conflictErrors reports a uniqueness conflict against the offending
// field, e.g. {"rollNumber": "RollNumber already exists"}.
func conflictErrors(c *storage.ConflictError) validation.Errors {
	label := c.Field
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return validation.Errors{c.Field: label + " already exists"}
}
