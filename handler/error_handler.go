package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/binder"
	"github.com/dmitrymomot/modelbind/pkg/logger"
	"github.com/dmitrymomot/modelbind/pkg/render"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

const genericErrorMessage = "An error occurred processing your request"

// ErrorPageParams is the model of an error page view.
type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
	RetryURL   string
}

// ErrorHandlerConfig configures NewErrorHandler.
type ErrorHandlerConfig struct {
	// ErrorPage renders the page for requests that do not want JSON. Without
	// it a plain text body is written.
	ErrorPage render.View
	// RequestIDHeader names the header logged as the request id.
	RequestIDHeader string
}

// ErrorInfo is an error classified for a response.
type ErrorInfo struct {
	StatusCode int
	Key        string
	Message    string
	LogLevel   slog.Level
}

func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Key:        "internal_error",
		Message:    genericErrorMessage,
	}

	var httpErr HTTPError
	var valErr ValidationError
	switch {
	case errors.As(err, &valErr):
		info.StatusCode = http.StatusUnprocessableEntity
		info.Key = "validation_error"
		info.Message = valErr.Error()
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Key = httpErr.Key
		info.Message = http.StatusText(httpErr.Code)
	case errors.Is(err, binder.ErrUnsupportedMedia),
		errors.Is(err, valueprovider.ErrUnsupportedMediaType),
		errors.Is(err, valueprovider.ErrMissingContentType):
		info.StatusCode = ErrUnsupportedMediaType.Code
		info.Key = ErrUnsupportedMediaType.Key
		info.Message = err.Error()
	case errors.Is(err, binder.ErrRequestBodyTooBig),
		errors.Is(err, valueprovider.ErrBodyTooLarge):
		info.StatusCode = ErrRequestEntityTooLarge.Code
		info.Key = ErrRequestEntityTooLarge.Key
		info.Message = err.Error()
	case errors.Is(err, valueprovider.ErrInvalidJSON),
		errors.Is(err, valueprovider.ErrInvalidForm),
		errors.Is(err, binder.ErrMaxDepthExceeded):
		info.StatusCode = ErrBadRequest.Code
		info.Key = ErrBadRequest.Key
		info.Message = err.Error()
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode >= http.StatusBadRequest && info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	if accept == "" || accept == "*/*" {
		return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	}
	return false
}

// defaultErrorHandler writes the classified message as plain text.
func defaultErrorHandler[C Context](ctx C, err error) {
	info := classifyError(err)
	http.Error(ctx.ResponseWriter(), info.Message, info.StatusCode)
}

// NewErrorHandler logs the error and answers with JSON for API requests and
// with cfg.ErrorPage, or plain text, otherwise.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = "X-Request-ID"
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		w := ctx.ResponseWriter()
		info := classifyError(err)
		requestID := r.Header.Get(cfg.RequestIDHeader)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestID),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if wantsJSON(r) {
			if rerr := JSONError(err).Render(w, r); rerr != nil {
				log.ErrorContext(r.Context(), "failed to render error response",
					logger.Error(rerr),
					logger.Component("error_handler"),
				)
			}
			return
		}

		if cfg.ErrorPage == nil {
			http.Error(w, info.Message, info.StatusCode)
			return
		}

		page := ErrorPageParams{
			Error:      info.Message,
			StatusCode: info.StatusCode,
			RequestID:  requestID,
			RetryURL:   r.URL.Path,
		}
		if rerr := View(cfg.ErrorPage, page, WithViewStatus(info.StatusCode)).Render(w, r); rerr != nil {
			log.ErrorContext(r.Context(), "failed to render error page",
				logger.Error(rerr),
				logger.Component("error_handler"),
			)
		}
	}
}
