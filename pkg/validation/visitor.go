package validation

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/validator"
)

type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

// Visitor walks one model graph. Children are enumerated by the strategy
// recorded in the validation state during binding, or by the default
// strategy for the node's metadata. A Visitor is used once.
type Visitor struct {
	ctx      context.Context
	ms       *modelstate.Dictionary
	vs       *modelstate.ValidationStateDictionary
	registry *validator.Registry
	maxDepth int
	logger   *slog.Logger

	path  map[visitKey]struct{}
	depth int
}

// Validate visits model under key. A nil model is only validated when
// alwaysValidateAtTopLevel is set; otherwise an existing entry for key is
// marked valid.
func (v *Visitor) Validate(meta *metadata.ModelMetadata, key string, model reflect.Value, alwaysValidateAtTopLevel bool) error {
	if isNil(model) && !alwaysValidateAtTopLevel {
		if _, ok := v.ms.Entry(key); ok {
			v.ms.MarkFieldValid(key)
		}
		return nil
	}
	_, err := v.visit(meta, key, model)
	return err
}

func (v *Visitor) visit(meta *metadata.ModelMetadata, key string, model reflect.Value) (bool, error) {
	if err := v.ctx.Err(); err != nil {
		return false, err
	}
	if v.depth >= v.maxDepth {
		return false, fmt.Errorf("%w: %d at %q", ErrMaxDepthExceeded, v.maxDepth, key)
	}

	// An instance already on the current path is treated as valid.
	if id, ok := keyOf(model); ok {
		if _, seen := v.path[id]; seen {
			v.logger.DebugContext(v.ctx, "validation cycle skipped", slog.String("key", key))
			return true, nil
		}
		v.path[id] = struct{}{}
		defer delete(v.path, id)
	}
	v.depth++
	defer func() { v.depth-- }()

	var strategy modelstate.ValidationStrategy
	entry := v.entryFor(model)
	if entry != nil {
		if entry.Key != "" {
			key = entry.Key
		}
		if entry.Metadata != nil {
			meta = entry.Metadata
		}
		strategy = entry.Strategy
	}

	if v.ms.HasReachedMaxErrors() {
		v.suppress(key)
		return false, nil
	}
	if entry != nil && entry.SuppressValidation {
		v.suppress(key)
		return true, nil
	}

	if meta.IsCollectionType || meta.IsDictionaryType || meta.IsComplexType {
		return v.visitComplex(meta, key, model, strategy)
	}
	return v.validateNode(meta, key, model)
}

func (v *Visitor) visitComplex(meta *metadata.ModelMetadata, key string, model reflect.Value, strategy modelstate.ValidationStrategy) (bool, error) {
	valid := true
	if inner, ok := deref(model); ok {
		childMeta := meta
		if meta.UnderlyingType.Kind() == reflect.Interface {
			childMeta = meta.Provider().ForType(inner.Type())
		}
		if strategy == nil {
			strategy = modelstate.DefaultStrategy(childMeta)
		}
		if strategy != nil {
			for _, child := range strategy.Children(childMeta, key, inner) {
				ok, err := v.visit(child.Metadata, child.Key, child.Model)
				if err != nil {
					return false, err
				}
				valid = valid && ok
			}
		}
	}

	if valid && !v.ms.HasReachedMaxErrors() {
		return v.validateNode(meta, key, model)
	}
	return valid, nil
}

// validateNode applies the rules of one node. Keys already invalid from
// binding are not validated again.
func (v *Visitor) validateNode(meta *metadata.ModelMetadata, key string, model reflect.Value) (bool, error) {
	if v.ms.GetValidationState(key) != modelstate.Invalid {
		if rules := nodeRules(meta); len(rules) > 0 {
			if err := v.registry.Validate(key, model, rules); err != nil {
				verrs := validator.ExtractValidationErrors(err)
				if verrs == nil {
					return false, err
				}
				for _, ve := range verrs {
					v.ms.AddError(key, ve)
				}
			}
		}
		if m, ok := validatableOf(model); ok {
			if err := m.Validate(); err != nil {
				verrs := validator.ExtractValidationErrors(err)
				if verrs == nil {
					return false, fmt.Errorf("%w: %q: %w", ErrValidatable, key, err)
				}
				for _, ve := range verrs.WithPrefix(key) {
					v.ms.AddError(ve.Field, ve)
				}
			}
		}
	}

	if v.ms.GetFieldValidationState(key) == modelstate.Invalid {
		return false, nil
	}
	if _, ok := v.ms.Entry(key); ok {
		v.ms.MarkFieldValid(key)
	}
	return true, nil
}

// suppress marks key and its descendants skipped.
func (v *Visitor) suppress(key string) {
	for _, k := range v.ms.FindKeysWithPrefix(key) {
		v.ms.MarkFieldSkipped(k)
	}
}

// entryFor looks up the validation state entry of model, then of the value
// it points to.
func (v *Visitor) entryFor(model reflect.Value) *modelstate.ValidationStateEntry {
	if e, ok := v.vs.Get(model); ok {
		return e
	}
	if model.IsValid() && (model.Kind() == reflect.Pointer || model.Kind() == reflect.Interface) && !model.IsNil() {
		if e, ok := v.vs.Get(model.Elem()); ok {
			return e
		}
	}
	return nil
}

// nodeRules returns the tag rules of meta, with required added for
// parameters marked required through binding info.
func nodeRules(meta *metadata.ModelMetadata) []validator.TagRule {
	if !meta.IsRequired {
		return meta.Rules
	}
	for _, r := range meta.Rules {
		if r.Name == "required" {
			return meta.Rules
		}
	}
	return append([]validator.TagRule{{Name: "required"}}, meta.Rules...)
}

func validatableOf(model reflect.Value) (Validatable, bool) {
	for model.IsValid() && model.Kind() == reflect.Interface && !model.IsNil() {
		model = model.Elem()
	}
	if isNil(model) || !model.CanInterface() {
		return nil, false
	}
	if m, ok := model.Interface().(Validatable); ok {
		return m, true
	}
	if model.CanAddr() {
		m, ok := model.Addr().Interface().(Validatable)
		return m, ok
	}
	return nil, false
}

func keyOf(model reflect.Value) (visitKey, bool) {
	if !model.IsValid() {
		return visitKey{}, false
	}
	switch model.Kind() {
	case reflect.Pointer, reflect.Map:
		if model.IsNil() {
			return visitKey{}, false
		}
		return visitKey{typ: model.Type(), ptr: model.Pointer()}, true
	case reflect.Interface:
		if model.IsNil() {
			return visitKey{}, false
		}
		return keyOf(model.Elem())
	}
	return visitKey{}, false
}

// deref follows pointers and interfaces down to a non-nil value.
func deref(model reflect.Value) (reflect.Value, bool) {
	for model.IsValid() && (model.Kind() == reflect.Pointer || model.Kind() == reflect.Interface) {
		if model.IsNil() {
			return reflect.Value{}, false
		}
		model = model.Elem()
	}
	return model, model.IsValid()
}

func isNil(model reflect.Value) bool {
	if !model.IsValid() {
		return true
	}
	switch model.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return model.IsNil()
	}
	return false
}
