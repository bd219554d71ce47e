package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func methodEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Method))
	})
}

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		name string
		req  func() *http.Request
		want string
	}{
		{"query", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/x?_method=DELETE", nil)
		}, http.MethodDelete},
		{"lowercase query", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/x?_method=put", nil)
		}, http.MethodPut},
		{"header", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/x", nil)
			r.Header.Set(MethodOverrideHeader, "PUT")
			return r
		}, http.MethodPut},
		{"form field", func() *http.Request {
			body := url.Values{"_method": {"DELETE"}, "name": {"Ann"}}.Encode()
			r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return r
		}, http.MethodDelete},
		{"only POST is rewritten", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/x?_method=DELETE", nil)
		}, http.MethodGet},
		{"unsupported target", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/x?_method=CONNECT", nil)
		}, http.MethodPost},
		{"no override", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/x", nil)
		}, http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			MethodOverride(methodEcho()).ServeHTTP(w, tt.req())
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestMethodOverride_FormStaysReadable(t *testing.T) {
	body := url.Values{"_method": {"PUT"}, "name": {"Ann"}}.Encode()
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var got string
	MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got = r.PostForm.Get("name")
	})).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "Ann", got)
}

func TestRecover(t *testing.T) {
	var caught error
	h := Recover(func(w http.ResponseWriter, r *http.Request, err error) {
		caught = err
		w.WriteHeader(http.StatusInternalServerError)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.EqualError(t, caught, "panic: kaboom")
}

func TestLogger_PassesThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
