package logger

import (
	"log/slog"
	"reflect"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// ModelName records a binding model path under the key "model_name".
func ModelName(name string) slog.Attr {
	return slog.String("model_name", name)
}

// ModelType records a Go type under the key "model_type".
// If t is nil, it returns an empty Attr.
func ModelType(t reflect.Type) slog.Attr {
	if t == nil {
		return slog.Attr{}
	}
	return slog.String("model_type", t.String())
}

// BinderKind records the binder implementation under the key "binder".
func BinderKind(kind string) slog.Attr {
	return slog.String("binder", kind)
}

// Field records a field name under the key "field".
func Field(name string) slog.Attr {
	return slog.String("field", name)
}
