// Package web is the error boundary between page handlers and the
// browser.
//
// Page handlers are written as HandlerFunc and simply return an error when
// they cannot produce their page. Site.Wrap turns them into ordinary
// http.HandlerFuncs and renders the fallback error page for whatever they
// return, so not-found and store failures are reported the same way
// everywhere.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/http/render"
	"github.com/aanand-mishra/student-records/internal/storage"
)

// HandlerFunc is a page handler that may fail.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Error carries the status and wording of the page to show for a failure.
type Error struct {
	Status  int
	Title   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Site renders the pages that do not belong to any one resource: the
// landing page, the not-found page and the fallback error page.
type Site struct {
	View render.Renderer

	// ShowDetail exposes the raw error text on the error page. Keep it off
	// in production.
	ShowDetail bool
}

// Wrap adapts a page handler to net/http.
func (s *Site) Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.Fail(w, r, err)
		}
	}
}

// Fail renders the error page for err and logs it.
//
//   - *Error          its own status and wording
//   - storage.ErrNotFound  404
//   - anything else   500
func (s *Site) Fail(w http.ResponseWriter, r *http.Request, err error) {
	view := render.ErrorView{
		Title:   "Error",
		Message: "Something went wrong!",
	}
	status := http.StatusInternalServerError

	var pageErr *Error
	switch {
	case errors.As(err, &pageErr):
		status = pageErr.Status
		view.Title = pageErr.Title
		view.Message = pageErr.Message
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
		view.Title = "Not Found"
		view.Message = "The requested record does not exist."
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	} else {
		slog.Info("request rejected",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}

	if s.ShowDetail {
		view.Detail = err.Error()
	}

	s.render(w, status, render.PageError, view)
}

// Home renders the landing page.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, render.PageIndex, render.IndexView{
		Title: "Student Management System",
	})
}

// NotFound renders the page for paths no route matched.
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, render.PageError, render.ErrorView{
		Title:   "Page Not Found",
		Message: "The page you are looking for does not exist.",
	})
}

func (s *Site) render(w http.ResponseWriter, status int, page string, data any) {
	if err := s.View.Render(w, status, page, data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
