package httpapi

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Error codes returned in the "error_code" field.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeBodyTooLarge      = "BODY_TOO_LARGE"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeUnreadable        = "UNREADABLE_DOCUMENT"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, fields map[string]interface{}) {
	fields["success"] = true
	writeJSON(w, http.StatusOK, fields)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success":    false,
		"error":      msg,
		"error_code": code,
	})
}

// writeFailure maps a service error onto a status and code.
func writeFailure(w http.ResponseWriter, err error) {
	var (
		maxErr *http.MaxBytesError
		reqErr *requestError
		valErr *redact.ValidationError
		ioErr  *redact.FatalIOError
	)
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, err.Error())
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, redact.ErrUnknownPreset):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.As(err, &valErr):
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, redact.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, CodeUnsupportedFormat, err.Error())
	case errors.As(err, &ioErr):
		writeError(w, http.StatusUnprocessableEntity, CodeUnreadable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

// decodeBody reads a JSON body into v. Oversized bodies surface as
// *http.MaxBytesError.
func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return badRequest(err)
	}
	return nil
}

// requestError marks a malformed request.
type requestError struct{ err error }

func badRequest(err error) error { return &requestError{err} }

func (e *requestError) Error() string { return "invalid request: " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }
