package binder

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/logger"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelname"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// dictionaryBinder binds maps. Indexed "prefix[i].Key"/"prefix[i].Value"
// pairs are tried first; when they yield nothing, every "prefix[key]" entry
// becomes one map entry with its key converted from the posted segment.
type dictionaryBinder struct {
	entryMeta        *metadata.ModelMetadata
	entry            Binder
	value            Binder
	converter        *Converter
	maxSize          int
	validateTopLevel bool
}

// entryType is the struct bound for each indexed map entry.
func entryType(mapType reflect.Type) reflect.Type {
	return reflect.StructOf([]reflect.StructField{
		{Name: "Key", Type: mapType.Key()},
		{Name: "Value", Type: mapType.Elem()},
	})
}

// isMapEntryType reports whether t is a type built by entryType.
func isMapEntryType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.Name() == "" && t.NumField() == 2 &&
		t.Field(0).Name == "Key" && t.Field(1).Name == "Value"
}

func (b *dictionaryBinder) Bind(ctx context.Context, bc *Context) (Result, error) {
	meta := bc.ModelMetadata
	mapType := meta.UnderlyingType

	if !bc.ValueProvider.ContainsPrefix(bc.ModelName) {
		if !bc.IsTopLevelObject {
			return NotAttempted(), nil
		}
		model := bc.Model
		if !isSet(model) {
			var err error
			if model, err = emptyCollection(meta.ModelType); err != nil {
				return Result{}, err
			}
		}
		if b.validateTopLevel {
			addErrorIfBindingRequired(bc)
		}
		return Success(model), nil
	}

	// An existing map is merged into; otherwise a new one is built.
	target := reflect.Indirect(bc.Model)
	if !target.IsValid() || target.Kind() != reflect.Map || target.IsNil() {
		target = reflect.MakeMap(mapType)
	}

	res := bc.ValueProvider.GetValue(bc.ModelName)
	var (
		entries []reflect.Value
		indices []string
		err     error
	)
	if res.IsNone() {
		entries, indices, err = bindComplexCollection(ctx, bc, b.entryMeta, b.entry, b.maxSize)
	} else {
		entries, err = bindSimpleCollection(ctx, bc, b.entryMeta, b.entry, res, b.maxSize)
		bc.ModelState.SetModelValue(bc.ModelName, res.Values, res.String())
	}
	if err != nil {
		return Result{}, err
	}

	var pairs []modelstate.ValidationEntry
	for i, e := range entries {
		e = reflect.Indirect(e)
		if !e.IsValid() {
			continue
		}
		k, err := coerce(mapType.Key(), e.Field(0))
		if err != nil {
			return Result{}, fmt.Errorf("dictionary key: %w", err)
		}
		v, err := coerce(mapType.Elem(), e.Field(1))
		if err != nil {
			return Result{}, fmt.Errorf("dictionary value: %w", err)
		}
		target.SetMapIndex(k, v)

		token := strconv.Itoa(i)
		if i < len(indices) {
			token = indices[i]
		}
		pairs = append(pairs, modelstate.ValidationEntry{
			Metadata: b.entryMeta,
			Key:      modelname.Key(bc.ModelName, token),
			Model:    e,
		})
	}

	// Pairs are validated under the keys they were posted with.
	if res.IsNone() && len(pairs) > 0 {
		bc.ValidationState.Add(target, &modelstate.ValidationStateEntry{
			Key: bc.ModelName,
			Strategy: modelstate.StrategyFunc(func(*metadata.ModelMetadata, string, reflect.Value) []modelstate.ValidationEntry {
				return pairs
			}),
		})
	}

	if len(pairs) == 0 {
		if err := b.bindShortForm(ctx, bc, target); err != nil {
			return Result{}, err
		}
	}

	model, err := coerce(meta.ModelType, target)
	if err != nil {
		return Result{}, err
	}
	return Success(model), nil
}

// bindShortForm binds "prefix[key]" entries into target.
func (b *dictionaryBinder) bindShortForm(ctx context.Context, bc *Context, target reflect.Value) error {
	keys := valueprovider.KeysFromPrefix(bc.ValueProvider, bc.ModelName)
	if len(keys) == 0 {
		return nil
	}
	segments := make([]string, 0, len(keys))
	for seg := range keys {
		segments = append(segments, seg)
	}
	sort.Strings(segments)

	mapType := target.Type()
	valueMeta := bc.ModelMetadata.ElementMetadata()
	mappings := make([]modelstate.KeyMapping, 0, len(segments))
	indexName := modelname.Property(bc.ModelName, "index")

	for _, seg := range segments {
		if b.maxSize > 0 && len(mappings) >= b.maxSize {
			bc.logger().DebugContext(ctx, "dictionary size limit reached", logger.ModelName(bc.ModelName))
			break
		}
		fullName := keys[seg]
		if strings.EqualFold(fullName, indexName) {
			continue
		}
		key, err := b.converter.Convert(seg, mapType.Key())
		if err != nil {
			bc.ModelState.AddModelException(fullName, err, bc.ModelMetadata.KeyMetadata())
			continue
		}

		r, err := bc.Nested(ctx, valueMeta, bc.FieldName, fullName, reflect.Value{}, b.value)
		if err != nil {
			return err
		}
		if !r.IsModelSet() {
			continue
		}
		v, err := coerce(mapType.Elem(), r.Model())
		if err != nil {
			return fmt.Errorf("dictionary value: %w", err)
		}
		target.SetMapIndex(key, v)
		mappings = append(mappings, modelstate.KeyMapping{Name: seg, ModelName: fullName, Key: key})
	}

	if len(mappings) > 0 {
		bc.ValidationState.Add(target, &modelstate.ValidationStateEntry{
			Key:      bc.ModelName,
			Strategy: modelstate.ShortFormDictionaryStrategy(mappings, valueMeta),
		})
	}
	return nil
}
