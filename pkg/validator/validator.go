package validator

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/lostfound/pkg/httpx"
)

var validate = newValidate()

// newValidate reports fields by their JSON name so error maps line up with
// request bodies.
func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors converts validator.ValidationErrors into a map of
// JSON field name to message. Other errors yield an empty map.
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, e := range ve {
		out[e.Field()] = formatFieldError(e)
	}
	return out
}

// fixedMessages covers tags whose message does not depend on the parameter.
var fixedMessages = map[string]string{
	"required": "This field is required",
	"uuid":     "Must be a valid UUID",
	"email":    "Must be a valid email address",
	"datauri":  "Must be a base64 data URL",
}

func formatFieldError(e validator.FieldError) string {
	if msg, ok := fixedMessages[e.Tag()]; ok {
		return msg
	}
	switch e.Tag() {
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// ValidateRequest decodes the JSON request body into T, validates it, and
// writes the error response if either step fails.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if !httpx.DecodeJSON(w, r, &req) {
		return nil, false
	}
	if !ValidateValue(w, &req) {
		return nil, false
	}
	return &req, true
}

// Trimmer is implemented by request types that strip surrounding whitespace
// from their fields. ValidateValue calls Trim before validating.
type Trimmer interface {
	Trim()
}

// ValidateValue validates an already decoded value and writes a 400 response
// listing the failing fields when it is invalid.
func ValidateValue(w http.ResponseWriter, v any) bool {
	if t, ok := v.(Trimmer); ok {
		t.Trim()
	}
	if err := Validate(v); err != nil {
		httpx.ValidationError(w, FormatValidationErrors(err))
		return false
	}
	return true
}
