package binder

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/logger"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelname"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// collectionBinder binds slices and arrays. Elements come from, in order of
// preference, explicit "prefix.index" tokens, values stored at the prefix
// itself, or zero-based "prefix[i]" probing that stops at the first gap.
type collectionBinder struct {
	elem             Binder
	maxSize          int
	validateTopLevel bool
}

func (b *collectionBinder) Bind(ctx context.Context, bc *Context) (Result, error) {
	meta := bc.ModelMetadata
	if !canCreateInstance(meta.UnderlyingType) {
		return NotAttempted(), nil
	}

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

	elemMeta := meta.ElementMetadata()
	res := bc.ValueProvider.GetValue(bc.ModelName)

	var (
		elems   []reflect.Value
		indices []string
		err     error
	)
	if res.IsNone() {
		elems, indices, err = bindComplexCollection(ctx, bc, elemMeta, b.elem, b.maxSize)
	} else {
		elems, err = bindSimpleCollection(ctx, bc, elemMeta, b.elem, res, b.maxSize)
	}
	if err != nil {
		return Result{}, err
	}

	model, err := buildCollection(meta.ModelType, elems)
	if err != nil {
		return Result{}, err
	}
	if indices != nil {
		bc.ValidationState.Add(reflect.Indirect(model), &modelstate.ValidationStateEntry{
			Key:      bc.ModelName,
			Strategy: modelstate.ExplicitIndexCollectionStrategy(indices),
		})
	}
	if !res.IsNone() {
		bc.ModelState.SetModelValue(bc.ModelName, res.Values, res.String())
	}
	return Success(model), nil
}

// bindSimpleCollection binds every value stored at the model name as one
// element. Comma-joined values split into several elements.
func bindSimpleCollection(ctx context.Context, bc *Context, elemMeta *metadata.ModelMetadata, elem Binder, res valueprovider.Result, maxSize int) ([]reflect.Value, error) {
	values := splitValues(res.Values)
	out := make([]reflect.Value, 0, len(values))
	for _, value := range values {
		if maxSize > 0 && len(out) >= maxSize {
			bc.logger().DebugContext(ctx, "collection size limit reached", logger.ModelName(bc.ModelName))
			break
		}
		r, err := bindElement(ctx, bc, elemMeta, elem, value)
		if err != nil {
			return nil, err
		}
		if r.IsModelSet() {
			out = append(out, r.Model())
		}
	}
	return out, nil
}

func bindElement(ctx context.Context, bc *Context, elemMeta *metadata.ModelMetadata, elem Binder, value string) (Result, error) {
	scope, err := bc.EnterNestedScope(elemMeta, bc.FieldName, bc.ModelName, reflect.Value{})
	if err != nil {
		return Result{}, err
	}
	defer scope.Exit()
	bc.ValueProvider = valueprovider.NewElemental(bc.ModelName, value)
	return elem.Bind(ctx, bc)
}

// bindComplexCollection binds "prefix[token]" elements. The returned
// indices are non-nil only when explicit index tokens were posted.
func bindComplexCollection(ctx context.Context, bc *Context, elemMeta *metadata.ModelMetadata, elem Binder, maxSize int) ([]reflect.Value, []string, error) {
	idx := bc.ValueProvider.GetValue(modelname.Property(bc.ModelName, "index"))
	var indices []string
	if !idx.IsNone() {
		indices = distinct(idx.Values)
	}
	return bindFromIndexes(ctx, bc, elemMeta, elem, indices, maxSize)
}

func bindFromIndexes(ctx context.Context, bc *Context, elemMeta *metadata.ModelMetadata, elem Binder, indices []string, maxSize int) ([]reflect.Value, []string, error) {
	finite := indices != nil
	var out []reflect.Value
	for i := 0; ; i++ {
		var token string
		if finite {
			if i >= len(indices) {
				break
			}
			token = indices[i]
		} else {
			token = strconv.Itoa(i)
		}
		if maxSize > 0 && i >= maxSize {
			bc.logger().DebugContext(ctx, "collection size limit reached", logger.ModelName(bc.ModelName))
			if finite {
				indices = indices[:i]
			}
			break
		}

		r, err := bc.Nested(ctx, elemMeta, token, modelname.Key(bc.ModelName, token), reflect.Value{}, elem)
		if err != nil {
			return nil, nil, err
		}
		if !r.IsModelSet() {
			if !finite {
				break
			}
			out = append(out, reflect.Value{})
			continue
		}
		out = append(out, r.Model())
	}
	if finite {
		return out, indices, nil
	}
	return out, nil, nil
}

func splitValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !strings.Contains(v, ",") {
			out = append(out, v)
			continue
		}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func canCreateInstance(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// buildCollection converts bound elements to t. Unbound elements become
// zero values; arrays keep at most their length.
func buildCollection(t reflect.Type, elems []reflect.Value) (reflect.Value, error) {
	u := t
	for u.Kind() == reflect.Pointer {
		u = u.Elem()
	}
	var v reflect.Value
	switch u.Kind() {
	case reflect.Slice:
		v = reflect.MakeSlice(u, 0, len(elems))
		for _, e := range elems {
			ev, err := coerce(u.Elem(), e)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("collection element: %w", err)
			}
			v = reflect.Append(v, ev)
		}
	case reflect.Array:
		v = reflect.New(u).Elem()
		for i := 0; i < len(elems) && i < u.Len(); i++ {
			ev, err := coerce(u.Elem(), elems[i])
			if err != nil {
				return reflect.Value{}, fmt.Errorf("collection element: %w", err)
			}
			v.Index(i).Set(ev)
		}
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrCannotActivate, t)
	}
	return coerce(t, v)
}

func emptyCollection(t reflect.Type) (reflect.Value, error) {
	u := t
	for u.Kind() == reflect.Pointer {
		u = u.Elem()
	}
	switch u.Kind() {
	case reflect.Slice:
		return coerce(t, reflect.MakeSlice(u, 0, 0))
	case reflect.Array:
		return coerce(t, reflect.New(u).Elem())
	case reflect.Map:
		return coerce(t, reflect.MakeMap(u))
	}
	return reflect.Value{}, fmt.Errorf("%w: %s", ErrCannotActivate, t)
}

func addErrorIfBindingRequired(bc *Context) {
	if bc.ModelMetadata.IsBindingRequired() {
		bc.ModelState.AddModelError(bc.ModelName, bc.Messages().MissingBindRequiredValue(bc.FieldName))
	}
}

// isSet reports whether v holds a usable existing instance.
func isSet(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return !v.IsNil()
	}
	return true
}
