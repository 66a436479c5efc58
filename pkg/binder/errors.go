package binder

import "errors"

// Configuration errors. They are returned from CreateBinder and Bind and are
// never recorded in model state.
var (
	ErrNoBinder           = errors.New("no binder for model type")
	ErrInvalidBinderType  = errors.New("binder type does not implement binder.Binder")
	ErrUnknownBinder      = errors.New("unknown named binder")
	ErrCannotActivate     = errors.New("cannot create an instance of model type")
	ErrMaxDepthExceeded   = errors.New("model binding exceeded the maximum recursion depth")
	ErrInvalidDefault     = errors.New("invalid default value")
	ErrInvalidModel       = errors.New("model must be a non-nil pointer")
	ErrNilMetadata        = errors.New("model metadata is nil")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrRequestBodyTooBig  = errors.New("request body too large")
	ErrUnsupportedConvert = errors.New("no converter for type")
	ErrSetProperty        = errors.New("failed to set property")
)
