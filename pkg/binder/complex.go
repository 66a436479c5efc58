package binder

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/logger"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelname"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

type dataAvailability uint8

const (
	noDataAvailable dataAvailability = iota
	greedyPropertiesMayHaveData
	valueProviderDataAvailable
)

type propertyBinder struct {
	meta   *metadata.ModelMetadata
	binder Binder
}

// complexTypeBinder binds structs property by property.
type complexTypeBinder struct {
	properties []propertyBinder
	converter  *Converter
}

func (b *complexTypeBinder) Bind(ctx context.Context, bc *Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	meta := bc.ModelMetadata

	availability := b.canCreateModel(bc)
	if availability == noDataAvailable {
		return NotAttempted(), nil
	}

	model := bc.Model
	if isSet(model) && model.Kind() != reflect.Pointer {
		// A struct value cannot be filled in place; copy it.
		p := reflect.New(model.Type())
		p.Elem().Set(model)
		model = p
	}
	for isSet(model) && model.Kind() == reflect.Pointer && model.Elem().Kind() == reflect.Pointer {
		model = model.Elem()
	}
	if !isSet(model) {
		var err error
		if model, err = b.createModel(bc); err != nil {
			return Result{}, err
		}
	}
	if model.Elem().Kind() != reflect.Struct {
		return Result{}, fmt.Errorf("%w: %s", ErrCannotActivate, meta.ModelType)
	}

	if !bc.enterModel(model) {
		bc.logger().DebugContext(ctx, "model already being bound",
			logger.ModelName(bc.ModelName),
			logger.ModelType(meta.ModelType),
		)
		return NotAttempted(), nil
	}
	defer bc.exitModel()

	attempted, err := b.bindProperties(ctx, bc, model)
	if err != nil {
		return Result{}, err
	}
	if !attempted && availability == greedyPropertiesMayHaveData && !bc.IsTopLevelObject {
		return NotAttempted(), nil
	}

	out, err := coerce(meta.ModelType, model)
	if err != nil {
		return Result{}, err
	}
	return Success(out), nil
}

// canCreateModel decides whether this model has any data to bind. The
// original value provider is consulted for properties with their own
// binding source, so data from other sources does not create the model.
func (b *complexTypeBinder) canCreateModel(bc *Context) dataAvailability {
	if !bc.IsTopLevelObject && bc.BindingSource != nil && bc.BindingSource.Greedy {
		return noDataAvailable
	}
	if bc.IsTopLevelObject {
		return valueProviderDataAvailable
	}
	if len(b.properties) == 0 {
		return noDataAvailable
	}

	hasGreedy := false
	for _, p := range b.properties {
		if !b.canBindProperty(bc, p.meta) {
			continue
		}
		src := p.meta.BindingSource
		if src != nil && src.Greedy {
			hasGreedy = true
			continue
		}
		vp := bc.ValueProvider
		if src != nil {
			vp = valueprovider.Filter(bc.OriginalValueProvider, src)
		}
		if vp.ContainsPrefix(modelname.Property(bc.ModelName, p.meta.ModelName())) {
			return valueProviderDataAvailable
		}
	}
	if hasGreedy {
		return greedyPropertiesMayHaveData
	}
	return noDataAvailable
}

// canBindProperty applies the type's and the caller's property filters,
// the binding behavior and the read-only rules.
func (b *complexTypeBinder) canBindProperty(bc *Context, prop *metadata.ModelMetadata) bool {
	if f := bc.ModelMetadata.PropertyFilter; f != nil && !f(prop) {
		return false
	}
	if f := bc.PropertyFilter; f != nil && !f(prop) {
		return false
	}
	if !prop.IsBindingAllowed() {
		return false
	}
	if prop.ReadOnly {
		return canUpdateReadOnly(prop)
	}
	return true
}

// canUpdateReadOnly reports whether a read-only property can still be
// populated in place.
func canUpdateReadOnly(prop *metadata.ModelMetadata) bool {
	switch prop.ModelType.Kind() {
	case reflect.Map:
		return true
	case reflect.Pointer:
		return prop.UnderlyingType.Kind() == reflect.Struct
	}
	return false
}

// createModel allocates the struct and applies default: initializers.
func (b *complexTypeBinder) createModel(bc *Context) (reflect.Value, error) {
	meta := bc.ModelMetadata
	if !meta.CanActivate || meta.UnderlyingType.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrCannotActivate, meta.ModelType)
	}
	p := reflect.New(meta.UnderlyingType)
	if err := applyDefaults(b.converter, p.Elem(), meta); err != nil {
		return reflect.Value{}, err
	}
	return p, nil
}

// applyDefaults sets default: values, descending into embedded and nested
// struct values.
func applyDefaults(c *Converter, v reflect.Value, meta *metadata.ModelMetadata) error {
	for _, prop := range meta.Properties() {
		field := v.FieldByIndex(prop.FieldIndex)
		switch {
		case prop.HasDefaultValue:
			dv, err := c.Convert(prop.DefaultValue, prop.ModelType)
			if err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrInvalidDefault, meta.UnderlyingType, prop.Name, err)
			}
			field.Set(dv)
		case prop.ModelType.Kind() == reflect.Struct && prop.IsComplexType:
			if err := applyDefaults(c, field, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *complexTypeBinder) bindProperties(ctx context.Context, bc *Context, model reflect.Value) (bool, error) {
	attempted := false
	container := model.Elem()
	for _, p := range b.properties {
		if !b.canBindProperty(bc, p.meta) {
			continue
		}
		fieldName := p.meta.ModelName()
		modelName := modelname.Property(bc.ModelName, fieldName)
		field := container.FieldByIndex(p.meta.FieldIndex)

		r, err := bc.Nested(ctx, p.meta, fieldName, modelName, existingValue(field), p.binder)
		if err != nil {
			return attempted, err
		}

		switch {
		case r.IsModelSet():
			attempted = true
			b.setProperty(ctx, bc, modelName, p.meta, field, r)
		case r.IsFailed():
			attempted = true
		case p.meta.IsBindingRequired():
			bc.ModelState.AddModelError(modelName, bc.Messages().MissingBindRequiredValue(fieldName))
		}
	}
	return attempted, nil
}

// existingValue returns the current field value when nested binders can
// update it: non-nil pointers and maps, and copies of struct values.
func existingValue(field reflect.Value) reflect.Value {
	switch field.Kind() {
	case reflect.Pointer, reflect.Map:
		if !field.IsNil() {
			return field
		}
	case reflect.Struct:
		p := reflect.New(field.Type())
		p.Elem().Set(field)
		return p
	}
	return reflect.Value{}
}

// setProperty assigns a bound value. Read-only properties were updated in
// place. Assignment failures are recorded against the property.
func (b *complexTypeBinder) setProperty(ctx context.Context, bc *Context, modelName string, prop *metadata.ModelMetadata, field reflect.Value, r Result) {
	if prop.ReadOnly {
		return
	}
	value := r.Model()
	if !isSet(value) && prop.HasDefaultValue {
		return
	}

	v, err := coerce(field.Type(), value)
	if err == nil {
		err = assign(field, v)
	}
	if err != nil {
		err = fmt.Errorf("%w %s: %v", ErrSetProperty, prop.Name, err)
		bc.logger().DebugContext(ctx, "property assignment failed",
			logger.ModelName(modelName),
			logger.Error(err),
		)
		bc.ModelState.AddModelException(modelName, err, prop)
	}
}

func assign(field, v reflect.Value) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	field.Set(v)
	return nil
}
