package binder

import (
	"context"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelname"
)

// KeyValuePair is a bindable pair posted as "prefix.Key" and "prefix.Value".
type KeyValuePair[K comparable, V any] struct {
	Key   K
	Value V
}

func (KeyValuePair[K, V]) isKeyValuePair() {}

type keyValuePairMarker interface{ isKeyValuePair() }

var keyValuePairType = reflect.TypeFor[keyValuePairMarker]()

func isKeyValuePairType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && (t.Implements(keyValuePairType) || isMapEntryType(t))
}

// keyValuePairBinder binds any struct with Key and Value fields.
type keyValuePairBinder struct {
	keyMeta   *metadata.ModelMetadata
	valueMeta *metadata.ModelMetadata
	key       Binder
	value     Binder
}

func (b *keyValuePairBinder) Bind(ctx context.Context, bc *Context) (Result, error) {
	keyName := modelname.Property(bc.ModelName, "Key")
	valueName := modelname.Property(bc.ModelName, "Value")

	keyResult, err := bc.Nested(ctx, b.keyMeta, "Key", keyName, reflect.Value{}, b.key)
	if err != nil {
		return Result{}, err
	}
	valueResult, err := bc.Nested(ctx, b.valueMeta, "Value", valueName, reflect.Value{}, b.value)
	if err != nil {
		return Result{}, err
	}

	t := bc.ModelMetadata.UnderlyingType
	switch {
	case keyResult.IsModelSet() && valueResult.IsModelSet():
		pair := reflect.New(t).Elem()
		if err := setPairField(pair, 0, keyResult.Model()); err != nil {
			return Result{}, err
		}
		if err := setPairField(pair, 1, valueResult.Model()); err != nil {
			return Result{}, err
		}
		model, err := coerce(bc.ModelMetadata.ModelType, pair)
		if err != nil {
			return Result{}, err
		}
		return Success(model), nil

	case keyResult.IsNotAttempted() && valueResult.IsNotAttempted():
		if bc.IsTopLevelObject {
			model, err := coerce(bc.ModelMetadata.ModelType, reflect.New(t).Elem())
			if err != nil {
				return Result{}, err
			}
			return Success(model), nil
		}
		return NotAttempted(), nil
	}

	// Data exists for the pair; a side that found nothing is reported.
	msg := bc.Messages().MissingKeyOrValue()
	if keyResult.IsNotAttempted() {
		bc.ModelState.AddModelError(keyName, msg)
	}
	if valueResult.IsNotAttempted() {
		bc.ModelState.AddModelError(valueName, msg)
	}
	return Failed(), nil
}

func setPairField(pair reflect.Value, i int, v reflect.Value) error {
	f := pair.Field(i)
	cv, err := coerce(f.Type(), v)
	if err != nil {
		return err
	}
	f.Set(cv)
	return nil
}
