package binder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"reflect"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/logger"
)

// bodyBinder decodes a JSON request body into the model.
type bodyBinder struct {
	maxSize    int64
	strict     bool
	allowEmpty bool
}

func (b *bodyBinder) Bind(ctx context.Context, bc *Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	r := bc.Request
	if r == nil || r.Body == nil {
		return b.empty(bc)
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "application/json" && !strings.HasSuffix(mediaType, "+json")) {
			return Result{}, fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMedia, ct)
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, b.maxSize+1))
	if err != nil {
		return Result{}, fmt.Errorf("read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if int64(len(body)) > b.maxSize {
		return Result{}, fmt.Errorf("%w: max %d bytes", ErrRequestBodyTooBig, b.maxSize)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return b.empty(bc)
	}

	meta := bc.ModelMetadata
	target := reflect.New(meta.ModelType)
	if isSet(bc.Model) {
		if cv, err := coerce(meta.ModelType, bc.Model); err == nil {
			target.Elem().Set(cv)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if b.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(target.Interface()); err != nil {
		b.addDecodeError(ctx, bc, err)
		return Failed(), nil
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		b.addDecodeError(ctx, bc, errors.New("unexpected data after JSON value"))
		return Failed(), nil
	}

	sanitizeStrings(target.Elem())
	return Success(target.Elem()), nil
}

func (b *bodyBinder) empty(bc *Context) (Result, error) {
	if b.allowEmpty {
		return NotAttempted(), nil
	}
	bc.ModelState.AddModelError(bc.ModelName, bc.Messages().MissingRequestBodyRequiredValue())
	return Failed(), nil
}

func (b *bodyBinder) addDecodeError(ctx context.Context, bc *Context, err error) {
	bc.logger().DebugContext(ctx, "request body rejected",
		logger.ModelName(bc.ModelName),
		logger.Error(err),
	)
	bc.ModelState.AddModelException(bc.ModelName, err, bc.ModelMetadata)
}

// sanitizeStrings strips NUL bytes from every settable string in v.
func sanitizeStrings(v reflect.Value) {
	switch v.Kind() {
	case reflect.String:
		if v.CanSet() && strings.IndexByte(v.String(), 0) >= 0 {
			v.SetString(strings.ReplaceAll(v.String(), "\x00", ""))
		}
	case reflect.Struct:
		for i := range v.NumField() {
			if f := v.Field(i); f.CanSet() {
				sanitizeStrings(f)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			sanitizeStrings(v.Index(i))
		}
	case reflect.Pointer:
		if !v.IsNil() {
			sanitizeStrings(v.Elem())
		}
	}
}
