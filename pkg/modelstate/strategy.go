package modelstate

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelname"
)

// ValidationEntry is one child the validator visits.
type ValidationEntry struct {
	Metadata *metadata.ModelMetadata
	Key      string
	Model    reflect.Value
}

// ValidationStrategy enumerates the children of a model for validation.
// model is already dereferenced and valid.
type ValidationStrategy interface {
	Children(meta *metadata.ModelMetadata, key string, model reflect.Value) []ValidationEntry
}

// StrategyFunc adapts a function to ValidationStrategy.
type StrategyFunc func(meta *metadata.ModelMetadata, key string, model reflect.Value) []ValidationEntry

func (f StrategyFunc) Children(meta *metadata.ModelMetadata, key string, model reflect.Value) []ValidationEntry {
	return f(meta, key, model)
}

// DefaultStrategy returns the strategy for meta when binding did not record one.
func DefaultStrategy(meta *metadata.ModelMetadata) ValidationStrategy {
	switch {
	case meta.IsComplexType:
		return ComplexObjectStrategy
	case meta.IsCollectionType:
		return CollectionStrategy
	case meta.IsDictionaryType:
		return DictionaryStrategy
	}
	return nil
}

// ComplexObjectStrategy visits struct fields in declaration order.
var ComplexObjectStrategy ValidationStrategy = StrategyFunc(func(meta *metadata.ModelMetadata, key string, model reflect.Value) []ValidationEntry {
	if model.Kind() != reflect.Struct {
		return nil
	}
	props := meta.Properties()
	children := make([]ValidationEntry, 0, len(props))
	for _, p := range props {
		children = append(children, ValidationEntry{
			Metadata: p,
			Key:      modelname.Property(key, p.ModelName()),
			Model:    model.FieldByIndex(p.FieldIndex),
		})
	}
	return children
})

// CollectionStrategy visits elements with zero-based indices.
var CollectionStrategy ValidationStrategy = StrategyFunc(func(meta *metadata.ModelMetadata, key string, model reflect.Value) []ValidationEntry {
	if model.Kind() != reflect.Slice && model.Kind() != reflect.Array {
		return nil
	}
	elem := meta.ElementMetadata()
	children := make([]ValidationEntry, 0, model.Len())
	for i := 0; i < model.Len(); i++ {
		children = append(children, ValidationEntry{
			Metadata: elem,
			Key:      modelname.Index(key, i),
			Model:    model.Index(i),
		})
	}
	return children
})

// ExplicitIndexCollectionStrategy visits elements under the index tokens that
// were posted for them, e.g. "lines[abc]".
func ExplicitIndexCollectionStrategy(indices []string) ValidationStrategy {
	return StrategyFunc(func(meta *metadata.ModelMetadata, key string, model reflect.Value) []ValidationEntry {
		if model.Kind() != reflect.Slice && model.Kind() != reflect.Array {
			return nil
		}
		elem := meta.ElementMetadata()
		n := min(len(indices), model.Len())
		children := make([]ValidationEntry, 0, n)
		for i := 0; i < n; i++ {
			children = append(children, ValidationEntry{
				Metadata: elem,
				Key:      modelname.Key(key, indices[i]),
				Model:    model.Index(i),
			})
		}
		return children
	})
}

// KeyMapping pairs the key segment posted for a dictionary entry with the
// converted dictionary key. ModelName, when set, is the full posted name
// and is used as the validation key as is.
type KeyMapping struct {
	Name      string
	ModelName string
	Key       reflect.Value
}

// ShortFormDictionaryStrategy visits dictionary values bound from
// "prefix[key]" entries, under the posted key names.
func ShortFormDictionaryStrategy(keyMappings []KeyMapping, valueMeta *metadata.ModelMetadata) ValidationStrategy {
	return StrategyFunc(func(_ *metadata.ModelMetadata, key string, model reflect.Value) []ValidationEntry {
		if model.Kind() != reflect.Map {
			return nil
		}
		children := make([]ValidationEntry, 0, len(keyMappings))
		for _, km := range keyMappings {
			v := model.MapIndex(km.Key)
			if !v.IsValid() {
				continue
			}
			childKey := km.ModelName
			if childKey == "" {
				childKey = modelname.Key(key, km.Name)
			}
			children = append(children, ValidationEntry{
				Metadata: valueMeta,
				Key:      childKey,
				Model:    v,
			})
		}
		return children
	})
}

// DictionaryStrategy visits map values under "prefix[key]", ordered by key.
var DictionaryStrategy ValidationStrategy = StrategyFunc(func(meta *metadata.ModelMetadata, key string, model reflect.Value) []ValidationEntry {
	if model.Kind() != reflect.Map {
		return nil
	}
	keys := model.MapKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = fmt.Sprint(k.Interface())
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return names[order[a]] < names[order[b]] })

	elem := meta.ElementMetadata()
	children := make([]ValidationEntry, 0, len(keys))
	for _, i := range order {
		children = append(children, ValidationEntry{
			Metadata: elem,
			Key:      modelname.Key(key, names[i]),
			Model:    model.MapIndex(keys[i]),
		})
	}
	return children
})
