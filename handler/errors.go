package handler

import (
	"errors"
	"net/http"
	"strings"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status code and a translation key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string {
	return e.Key
}

// NewHTTPError creates an HTTPError. An empty key uses the lower-cased
// status text.
func NewHTTPError(code int, key string) HTTPError {
	if key == "" {
		key = keyFromStatus(code)
	}
	return HTTPError{Code: code, Key: key}
}

var statusKeyReplacer = strings.NewReplacer(" ", "_", "-", "_", "'", "")

func keyFromStatus(code int) string {
	return statusKeyReplacer.Replace(strings.ToLower(http.StatusText(code)))
}

var (
	ErrBadRequest            = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound              = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrRequestEntityTooLarge = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}
	ErrUnsupportedMediaType  = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrUnprocessableEntity   = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternalServerError   = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)
