package binder

import (
	"context"
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"
)

// byteArrayBinder decodes a base64 value into []byte.
type byteArrayBinder struct{}

func (byteArrayBinder) Bind(_ context.Context, bc *Context) (Result, error) {
	res := bc.ValueProvider.GetValue(bc.ModelName)
	if res.IsNone() {
		return NotAttempted(), nil
	}
	bc.ModelState.SetModelValue(bc.ModelName, res.Values, res.String())

	value := strings.TrimSpace(res.First())
	if value == "" {
		return NotAttempted(), nil
	}

	raw, err := decodeBase64(value)
	if err != nil {
		bc.ModelState.AddModelException(bc.ModelName,
			&ConversionError{Value: value, Type: bc.ModelMetadata.ModelType, Err: err},
			bc.ModelMetadata)
		return Failed(), nil
	}
	v, err := coerce(bc.ModelMetadata.ModelType, reflect.ValueOf(raw))
	if err != nil {
		return Result{}, fmt.Errorf("byte array binder: %w", err)
	}
	return Success(v), nil
}

// decodeBase64 accepts the standard and URL alphabets, padded or not.
func decodeBase64(s string) ([]byte, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.URLEncoding,
		base64.RawStdEncoding, base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
