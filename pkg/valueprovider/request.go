package valueprovider

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	// DefaultMaxMemory is the default maximum memory used for parsing multipart forms (10MB).
	DefaultMaxMemory = 10 << 20
	// DefaultMaxJSONSize is the default maximum size for JSON request bodies (1MB).
	DefaultMaxJSONSize = 1 << 20
)

// RequestOptions tunes FromRequest.
type RequestOptions struct {
	MaxMemory   int64
	MaxJSONSize int64
	// SkipJSON disables projecting JSON bodies into values, leaving the body
	// untouched for a body binder.
	SkipJSON bool
}

// FromQuery creates a provider over the request's query string.
func FromQuery(r *http.Request) *Values {
	return NewQuery(r.URL.Query())
}

// FromRoute creates a provider over chi URL parameters.
// Requests that were not routed by chi yield an empty provider.
func FromRoute(r *http.Request) *Values {
	params := make(map[string]string)
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return NewRoute(params)
}

// FromForm creates a provider over url-encoded or multipart form values.
// Other content types return ErrUnsupportedMediaType.
func FromForm(r *http.Request, maxMemory int64) (*Values, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return nil, fmt.Errorf("%w: expected application/x-www-form-urlencoded or multipart/form-data", ErrMissingContentType)
	}
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}

	switch mediaType := mediaTypeOf(contentType); {
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
		return NewForm(r.PostForm), nil

	case mediaType == "multipart/form-data":
		_, params, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed content type with boundary", ErrInvalidForm)
		}
		boundary, ok := params["boundary"]
		if !ok || boundary == "" {
			return nil, fmt.Errorf("%w: missing boundary in content type", ErrInvalidForm)
		}
		if !validBoundary(boundary) {
			return nil, fmt.Errorf("%w: invalid boundary parameter", ErrInvalidForm)
		}
		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(maxMemory); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
		}
		if r.MultipartForm == nil {
			return NewForm(nil), nil
		}
		return NewForm(r.MultipartForm.Value), nil

	default:
		return nil, fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded or multipart/form-data", ErrUnsupportedMediaType, mediaType)
	}
}

// FromJSON reads and flattens a JSON body. The body is restored afterwards so
// a body binder can decode it again.
func FromJSON(r *http.Request, maxSize int64) (*Values, error) {
	if mt := mediaTypeOf(r.Header.Get("Content-Type")); mt != "application/json" {
		return nil, fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, mt)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxJSONSize
	}
	if r.Body == nil {
		return NewJSON(nil)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read request body: %v", ErrInvalidJSON, err)
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	if int64(len(body)) > maxSize {
		return nil, fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, maxSize)
	}
	return NewJSON(body)
}

// FromRequest combines form, route, query and JSON values, in that order.
// Form and JSON providers are only added when the content type matches.
func FromRequest(r *http.Request, opts RequestOptions) (Composite, error) {
	providers := make([]ValueProvider, 0, 4)

	mediaType := mediaTypeOf(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		form, err := FromForm(r, opts.MaxMemory)
		if err != nil {
			return nil, err
		}
		providers = append(providers, form)
	}

	providers = append(providers, FromRoute(r), FromQuery(r))

	if mediaType == "application/json" && !opts.SkipJSON {
		js, err := FromJSON(r, opts.MaxJSONSize)
		if err != nil {
			return nil, err
		}
		providers = append(providers, js)
	}

	return NewComposite(providers...), nil
}

func mediaTypeOf(contentType string) string {
	mediaType := contentType
	if idx := strings.Index(contentType, ";"); idx != -1 {
		mediaType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// validBoundary applies the RFC 2046 limits: 1 to 70 characters from a
// restricted set, not ending with a space.
func validBoundary(boundary string) bool {
	if len(boundary) == 0 || len(boundary) > 70 {
		return false
	}
	if strings.HasSuffix(boundary, " ") {
		return false
	}
	for _, c := range boundary {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune("'()+_,-./:=? ", c):
		default:
			return false
		}
	}
	return true
}
