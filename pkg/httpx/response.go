package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Messages shared by the request helpers.
const (
	MsgInvalidJSON      = "Invalid JSON"
	MsgBodyTooLarge     = "request body too large"
	MsgValidationFailed = "Validation failed"
)

// JSON writes v as JSON with the given status code. Encoding errors are
// discarded; use it for handler responses only.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes the {"status": "error", "error": message} envelope.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"status": "error", "error": message})
}

// ValidationError writes a 400 error envelope with per-field messages.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"status": "error",
		"error":  MsgValidationFailed,
		"fields": fields,
	})
}

// ReadBody reads the whole request body. A body cut off by RequestBodyLimit
// is answered with 413, any other read failure with 400.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBodyError(w, err, "could not read request body")
		return nil, false
	}
	return body, true
}

// DecodeJSON decodes the request body into v. Oversized bodies get 413 and
// malformed JSON gets 400.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBodyError(w, err, MsgInvalidJSON)
		return false
	}
	return true
}

func writeBodyError(w http.ResponseWriter, err error, fallback string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		JSONError(w, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
		return
	}
	JSONError(w, http.StatusBadRequest, fallback)
}

// SafeError returns the message to send to clients. In production 5xx
// messages are replaced by the status text.
func SafeError(err error, status int, isProduction bool) string {
	if isProduction && status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
