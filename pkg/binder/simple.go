package binder

import (
	"context"
	"reflect"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/logger"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// simpleTypeBinder converts the first value found at the model name.
type simpleTypeBinder struct {
	converter *Converter
}

func (b *simpleTypeBinder) Bind(ctx context.Context, bc *Context) (Result, error) {
	res := bc.ValueProvider.GetValue(bc.ModelName)
	if res.IsNone() {
		bc.logger().DebugContext(ctx, "no value for simple type", logger.ModelName(bc.ModelName))
		return NotAttempted(), nil
	}
	bc.ModelState.SetModelValue(bc.ModelName, res.Values, res.String())
	return b.convert(bc, res)
}

func (b *simpleTypeBinder) convert(bc *Context, res valueprovider.Result) (Result, error) {
	meta := bc.ModelMetadata
	value := res.First()
	t := meta.ModelType

	if meta.UnderlyingType.Kind() == reflect.String {
		if strings.TrimSpace(value) == "" && meta.ConvertEmptyStringToNull && t.Kind() == reflect.Pointer {
			return Success(reflect.Zero(t)), nil
		}
		v, err := b.converter.Convert(value, t)
		if err != nil {
			bc.ModelState.AddModelException(bc.ModelName, err, meta)
			return Failed(), nil
		}
		return Success(v), nil
	}

	if strings.TrimSpace(value) == "" {
		if meta.IsReferenceOrNullableType {
			return Success(reflect.Zero(t)), nil
		}
		bc.ModelState.AddModelError(bc.ModelName, bc.Messages().ValueMustNotBeNull(res.String()))
		return Failed(), nil
	}

	v, err := b.converter.Convert(value, t)
	if err != nil {
		bc.ModelState.AddModelException(bc.ModelName, err, meta)
		return Failed(), nil
	}
	return Success(v), nil
}
