package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aanand-mishra/student-records/internal/http/web"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validation"
)

const (
	maxFormMemory = 1 << 20
	maxJSONBody   = 10 << 20
)

// readInput overlays the submitted fields on base. Only fields present in
// the submission are replaced, which makes a partial update keep the
// stored values of everything it does not mention.
func readInput(w http.ResponseWriter, r *http.Request, base types.StudentInput) (types.StudentInput, error) {
	values, err := submittedValues(w, r)
	if err != nil {
		return types.StudentInput{}, &web.Error{
			Status:  http.StatusBadRequest,
			Title:   "Bad Request",
			Message: "The submitted form could not be read.",
			Err:     err,
		}
	}

	in := base
	for field, dst := range map[string]*string{
		validation.FieldName:       &in.Name,
		validation.FieldRollNumber: &in.RollNumber,
		validation.FieldEmail:      &in.Email,
		validation.FieldDepartment: &in.Department,
		validation.FieldGPA:        &in.GPA,
	} {
		if _, ok := values[field]; ok {
			*dst = values.Get(field)
		}
	}
	return in, nil
}

// submittedValues reads a urlencoded, multipart or JSON body.
func submittedValues(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return jsonValues(http.MaxBytesReader(w, r.Body, maxJSONBody))
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return r.PostForm, nil
}

// jsonValues flattens a JSON object into form values so both body kinds
// go through the same text validation. Every field must be a scalar.
func jsonValues(body io.Reader) (url.Values, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return url.Values{}, nil
		}
		return nil, err
	}

	values := make(url.Values, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			values.Set(k, "")
		case string:
			values.Set(k, v)
		case json.Number:
			values.Set(k, v.String())
		case bool:
			values.Set(k, strconv.FormatBool(v))
		default:
			return nil, fmt.Errorf("field %q: want a scalar, got %T", k, v)
		}
	}
	return values, nil
}
