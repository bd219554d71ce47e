// Package server assembles the route table and middleware chain.
//
// Route table:
//
//	GET    /                         landing page
//	GET    /static/...               stylesheet
//	GET    /students                 list, ?search=&sortBy=&sortOrder=
//	GET    /students/add             empty add form
//	POST   /students/add             create
//	GET    /students/{id}            details
//	GET    /students/edit/{id}       edit form
//	PUT    /students/edit/{id}       update
//	DELETE /students/delete/{id}     delete
//	*                                not-found page
//
// HTML forms reach PUT and DELETE through the _method override.
package server

import (
	"net/http"

	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/http/render"
	"github.com/aanand-mishra/student-records/internal/http/web"
	"github.com/aanand-mishra/student-records/internal/storage"
)

// Options are the knobs of NewHandler.
type Options struct {
	// ShowErrorDetail exposes raw error text on error pages.
	ShowErrorDetail bool
}

// NewHandler returns the application's root http.Handler.
func NewHandler(store storage.Storage, view render.Renderer, opts Options) http.Handler {
	site := &web.Site{View: view, ShowDetail: opts.ShowErrorDetail}

	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", site.Home)
	router.Handle("GET /static/", render.Static())

	router.HandleFunc("GET /students", site.Wrap(student.List(store, view)))
	router.HandleFunc("GET /students/add", site.Wrap(student.AddForm(view)))
	router.HandleFunc("POST /students/add", site.Wrap(student.Create(store, view)))
	router.HandleFunc("GET /students/{id}", site.Wrap(student.Details(store, view)))
	router.HandleFunc("GET /students/edit/{id}", site.Wrap(student.EditForm(store, view)))
	router.HandleFunc("PUT /students/edit/{id}", site.Wrap(student.Update(store, view)))
	router.HandleFunc("DELETE /students/delete/{id}", student.Delete(store))

	router.HandleFunc("/", site.NotFound)

	// Outermost first: log, recover, rewrite the method, route.
	var h http.Handler = router
	h = middleware.MethodOverride(h)
	h = middleware.Recover(site.Fail)(h)
	h = middleware.Logger(h)
	return h
}
