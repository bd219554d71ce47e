// Package middleware holds the http.Handler wrappers applied to every
// request before it reaches the router.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// MethodOverrideParam is the query string or form field that carries the
// real method of a POST sent by an HTML form.
const MethodOverrideParam = "_method"

// MethodOverrideHeader is the header alternative to MethodOverrideParam.
const MethodOverrideHeader = "X-HTTP-Method-Override"

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride lets HTML forms, which can only GET and POST, reach PUT
// and DELETE routes. Only POST requests are rewritten, and only to PUT,
// PATCH or DELETE.
//
// Lookup order: "_method" query parameter, X-HTTP-Method-Override header,
// "_method" form field.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := r.URL.Query().Get(MethodOverrideParam)
			if method == "" {
				method = r.Header.Get(MethodOverrideHeader)
			}
			if method == "" && isForm(r) {
				method = r.PostFormValue(MethodOverrideParam)
			}

			method = strings.ToUpper(method)
			if overridable[method] {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger logs one line per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

// Recover turns a panic in next into a call to onPanic instead of a
// dropped connection.
func Recover(onPanic func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					onPanic(w, r, fmt.Errorf("panic: %v", v))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
