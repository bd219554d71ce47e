package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/render"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	view, err := render.New()
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(store, view, Options{ShowErrorDetail: true}))
	t.Cleanup(srv.Close)
	return srv
}

// noRedirect lets tests look at the redirect itself.
var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func do(t *testing.T, method, target string, form url.Values) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func annLee() url.Values {
	return url.Values{
		"name":       {"Ann Lee"},
		"rollNumber": {"2001"},
		"email":      {"ann.lee@u.edu"},
		"department": {"Physics"},
		"gpa":        {"3.5"},
	}
}

// idFromList pulls the first /students/{id} link out of the list page.
func idFromList(t *testing.T, page string) string {
	t.Helper()
	const marker = `href="/students/edit/`
	i := strings.Index(page, marker)
	require.GreaterOrEqual(t, i, 0, "no student link on page")
	rest := page[i+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}

func TestHomeAndUnknownPaths(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Student Management System")

	resp, body = do(t, http.MethodGet, srv.URL+"/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page Not Found")

	resp, _ = do(t, http.MethodGet, srv.URL+"/static/style.css", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStudentLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/students/add", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Add New Student")

	resp, _ = do(t, http.MethodPost, srv.URL+"/students/add", annLee())
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/students", resp.Header.Get("Location"))

	resp, body = do(t, http.MethodGet, srv.URL+"/students?search=phys", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Ann Lee")
	id := idFromList(t, body)

	resp, body = do(t, http.MethodGet, srv.URL+"/students/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "ann.lee@u.edu")
	assert.Contains(t, body, "3.50")

	// HTML forms send PUT as POST with _method.
	resp, _ = do(t, http.MethodPost, srv.URL+"/students/edit/"+id+"?_method=PUT", url.Values{"gpa": {"3.9"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/students/"+id, resp.Header.Get("Location"))

	_, body = do(t, http.MethodGet, srv.URL+"/students/edit/"+id, nil)
	assert.Contains(t, body, `value="3.9"`)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/students/delete/"+id, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/students/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Student Not Found")

	resp, body = do(t, http.MethodDelete, srv.URL+"/students/delete/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Student not found"}`, body)
}

func TestCreate_ConflictShownOnForm(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/students/add", annLee())
	require.Equal(t, http.StatusFound, resp.StatusCode)

	dup := annLee()
	dup.Set("email", "other@u.edu")
	resp, body := do(t, http.MethodPost, srv.URL+"/students/add", dup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "RollNumber already exists")
	assert.Contains(t, body, `value="other@u.edu"`)
}

func TestCreate_ValidationShownOnForm(t *testing.T) {
	srv := newTestServer(t)

	bad := annLee()
	bad.Set("email", "not-an-email")
	bad.Set("rollNumber", "0")
	resp, body := do(t, http.MethodPost, srv.URL+"/students/add", bad)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please enter a valid email")
	assert.Contains(t, body, "Roll number must be a positive integer")
	assert.NotContains(t, body, "Name is required")
}

func TestNotFoundPages(t *testing.T) {
	srv := newTestServer(t)
	const id = "6f1c1f4e-6a44-4a53-9d6c-3f8f2d6c0b11"

	for _, path := range []string{"/students/" + id, "/students/edit/" + id, "/students/garbage"} {
		resp, body := do(t, http.MethodGet, srv.URL+path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, body, "Student Not Found", path)
	}

	resp, _ := do(t, http.MethodPut, srv.URL+"/students/edit/"+id, annLee())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreate_NonScalarJSONIsRejected(t *testing.T) {
	srv := newTestServer(t)

	body := `{"name":["x","y"],"rollNumber":7,"email":"a@b.edu","department":{"k":1},"gpa":2}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/students/add", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, page := do(t, http.MethodGet, srv.URL+"/students", nil)
	assert.NotContains(t, page, `href="/students/edit/`)
}
