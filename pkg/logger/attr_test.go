package logger_test

import (
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/logger"
)

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestBindingAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"model name", logger.ModelName("order.Lines[0]"), "model_name", "order.Lines[0]"},
		{"model type", logger.ModelType(reflect.TypeFor[[]int]()), "model_type", "[]int"},
		{"binder", logger.BinderKind("complex"), "binder", "complex"},
		{"field", logger.Field("Qty"), "field", "Qty"},
		{"component", logger.Component("tempdata"), "component", "tempdata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantKey, tt.attr.Key)
			assert.Equal(t, tt.wantVal, tt.attr.Value.String())
		})
	}

	assert.True(t, logger.ModelType(nil).Equal(slog.Attr{}))
}
