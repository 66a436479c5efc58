package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/logger"
)

type requestKey struct{}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output: %s", buf.String())
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults to json at info", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Debug("hidden")
		log.Info("bound", logger.ModelName("order"))

		entry := decodeEntry(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "bound", entry["msg"])
		assert.Equal(t, "order", entry["model_name"])
	})

	t.Run("last format option wins", func(t *testing.T) {
		t.Parallel()

		text := &bytes.Buffer{}
		logger.New(logger.WithOutput(text), logger.WithJSONFormatter(), logger.WithTextFormatter()).
			Info("bound", logger.Field("Qty"))
		assert.Contains(t, text.String(), "msg=bound")
		assert.Contains(t, text.String(), "field=Qty")

		js := &bytes.Buffer{}
		logger.New(logger.WithOutput(js), logger.WithTextFormatter(), logger.WithFormat(logger.FormatJSON)).
			Info("bound")
		assert.Equal(t, "bound", decodeEntry(t, js)["msg"])
	})

	t.Run("static attributes", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger.New(logger.WithOutput(buf), logger.WithAttr(logger.Component("binder"))).Info("msg")
		assert.Equal(t, "binder", decodeEntry(t, buf)["component"])
	})

	t.Run("handler options replace level", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithLevel(slog.LevelError),
			logger.WithHandlerOptions(&slog.HandlerOptions{Level: slog.LevelDebug}),
		)
		log.Debug("visible")
		assert.Equal(t, "visible", decodeEntry(t, buf)["msg"])
	})
}

func TestWithContextValue(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextValue("request_id", requestKey{}),
		logger.WithContextValue("", requestKey{}),
		logger.WithContextValue("ignored", nil),
	)

	log.InfoContext(context.Background(), "no id")
	assert.NotContains(t, buf.String(), "request_id")

	buf.Reset()
	ctx := context.WithValue(context.Background(), requestKey{}, "req-7")
	log.InfoContext(ctx, "with id")
	assert.Equal(t, "req-7", decodeEntry(t, buf)["request_id"])
}

func TestWithContextExtractors(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextExtractors(
			nil,
			func(context.Context) (slog.Attr, bool) { return logger.Error(nil), true },
			func(context.Context) (slog.Attr, bool) { return logger.Component("binder"), true },
		),
	)
	log.InfoContext(context.Background(), "bound")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "binder", entry["component"])
	assert.NotContains(t, entry, "error")
}

func TestLogHandlerDecorator_KeepsExtractors(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextValue("request_id", requestKey{}),
	).With(logger.Component("tempdata")).WithGroup("bind")

	ctx := context.WithValue(context.Background(), requestKey{}, "req-9")
	log.InfoContext(ctx, "saved", logger.Field("status"))

	entry := decodeEntry(t, buf)
	assert.Equal(t, "tempdata", entry["component"])
	group, ok := entry["bind"].(map[string]any)
	require.True(t, ok, "entry: %v", entry)
	assert.Equal(t, "status", group["field"])
	assert.Equal(t, "req-9", group["request_id"])
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decodeEntry(t, buf)["msg"])
}

func TestWithFormatPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
