package httpx

import (
	"errors"
	"mime"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
)

// datetimeLayouts are accepted for time.Time form fields, most specific first.
//
//nolint:gochecknoglobals // read-only
var datetimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", model.DateLayout}

//nolint:gochecknoglobals // schema.Decoder caches struct metadata and is safe for concurrent use
var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		s = strings.TrimSpace(s)
		if s == "" {
			return reflect.ValueOf(time.Time{})
		}
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return reflect.ValueOf(t.UTC())
			}
		}
		return reflect.Value{}
	})
	return d
}

// isJSONRequest reports whether the request body is JSON.
func isJSONRequest(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}

// DecodeForm parses a urlencoded form body into dst using its `schema` tags.
// Malformed values are reported as a *model.ValidationError.
func DecodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "malformed form body")
	}
	return decodeValues(dst, r.PostForm)
}

// DecodeQuery decodes the URL query into dst using its `schema` tags.
func DecodeQuery(r *http.Request, dst any) error {
	return decodeValues(dst, r.URL.Query())
}

func decodeValues(dst any, values map[string][]string) error {
	err := formDecoder.Decode(dst, values)
	if err == nil {
		return nil
	}
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "malformed form values")
	}
	verr := &model.ValidationError{}
	for field := range multi {
		verr.Fields = append(verr.Fields, model.FieldError{Field: field, Message: "is invalid"})
	}
	sort.Slice(verr.Fields, func(i, j int) bool { return verr.Fields[i].Field < verr.Fields[j].Field })
	return verr
}
