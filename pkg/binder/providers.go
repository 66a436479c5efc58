package binder

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
)

var (
	binderType  = reflect.TypeFor[Binder]()
	contextType = reflect.TypeFor[context.Context]()
	bytesType   = reflect.TypeFor[[]byte]()
)

// DefaultProviders returns the built-in providers in resolution order.
// The first provider returning a binder wins.
func DefaultProviders() []Provider {
	return []Provider{
		ProviderFunc(BinderTypeProvider),
		ProviderFunc(BodyProvider),
		ProviderFunc(HeaderProvider),
		ProviderFunc(ContextProvider),
		ProviderFunc(FormFileProvider),
		ProviderFunc(ByteArrayProvider),
		ProviderFunc(KeyValuePairProvider),
		ProviderFunc(DictionaryProvider),
		ProviderFunc(CollectionProvider),
		ProviderFunc(SimpleTypeProvider),
		ProviderFunc(ComplexTypeProvider),
	}
}

// BinderTypeProvider resolves binder:"name" tags and binder type overrides.
func BinderTypeProvider(pc *ProviderContext) (Binder, error) {
	meta := pc.Metadata
	if meta.BinderName != "" {
		b, ok := pc.NamedBinder(meta.BinderName)
		if !ok {
			return nil, fmt.Errorf("%w: %q on %s", ErrUnknownBinder, meta.BinderName, meta.ModelType)
		}
		return b, nil
	}
	if meta.BinderType == nil {
		return nil, nil
	}
	return instantiateBinder(meta.BinderType)
}

func instantiateBinder(t reflect.Type) (Binder, error) {
	switch {
	case t.Kind() == reflect.Pointer && t.Implements(binderType):
		return reflect.New(t.Elem()).Interface().(Binder), nil
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(binderType):
		return reflect.New(t).Interface().(Binder), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidBinderType, t)
}

// BodyProvider handles models bound from the request body.
func BodyProvider(pc *ProviderContext) (Binder, error) {
	if pc.Metadata.BindingSource != bindingsource.Body {
		return nil, nil
	}
	return &bodyBinder{
		maxSize:    pc.Options.MaxJSONSize,
		strict:     pc.Options.StrictJSON,
		allowEmpty: pc.Options.AllowEmptyBody,
	}, nil
}

// HeaderProvider handles simple values and collections of simple values
// bound from request headers.
func HeaderProvider(pc *ProviderContext) (Binder, error) {
	meta := pc.Metadata
	if meta.BindingSource != bindingsource.Header {
		return nil, nil
	}
	if !meta.IsSimpleType && !(meta.IsCollectionType && meta.ElementMetadata().IsSimpleType) {
		return nil, fmt.Errorf("%w: header binding needs a simple type or a collection of simple types, got %s", ErrNoBinder, meta.ModelType)
	}
	inner, err := pc.CreateBinder(pc.MetadataProvider.ForType(meta.ModelType))
	if err != nil {
		return nil, err
	}
	return &headerBinder{inner: inner}, nil
}

// ContextProvider binds context.Context parameters to the request context.
func ContextProvider(pc *ProviderContext) (Binder, error) {
	if pc.Metadata.ModelType != contextType {
		return nil, nil
	}
	return BinderFunc(func(ctx context.Context, _ *Context) (Result, error) {
		return Success(reflect.ValueOf(&ctx).Elem()), nil
	}), nil
}

// FormFileProvider handles *multipart.FileHeader and its slices.
func FormFileProvider(pc *ProviderContext) (Binder, error) {
	if !isFormFileType(pc.Metadata.ModelType) {
		return nil, nil
	}
	return formFileBinder{}, nil
}

// ByteArrayProvider handles []byte as base64 text.
func ByteArrayProvider(pc *ProviderContext) (Binder, error) {
	if pc.Metadata.UnderlyingType != bytesType {
		return nil, nil
	}
	return byteArrayBinder{}, nil
}

// KeyValuePairProvider handles KeyValuePair and map entries.
func KeyValuePairProvider(pc *ProviderContext) (Binder, error) {
	meta := pc.Metadata
	if !isKeyValuePairType(meta.UnderlyingType) {
		return nil, nil
	}
	keyMeta, valueMeta := meta.Property("Key"), meta.Property("Value")
	if keyMeta == nil || valueMeta == nil {
		return nil, fmt.Errorf("%w: %s has no Key or Value field", ErrNoBinder, meta.ModelType)
	}
	key, err := pc.CreateBinder(keyMeta)
	if err != nil {
		return nil, err
	}
	value, err := pc.CreateBinder(valueMeta)
	if err != nil {
		return nil, err
	}
	return &keyValuePairBinder{keyMeta: keyMeta, valueMeta: valueMeta, key: key, value: value}, nil
}

// DictionaryProvider handles maps.
func DictionaryProvider(pc *ProviderContext) (Binder, error) {
	meta := pc.Metadata
	if !meta.IsDictionaryType {
		return nil, nil
	}
	entryMeta := pc.MetadataProvider.ForType(entryType(meta.UnderlyingType))
	entry, err := pc.CreateBinder(entryMeta)
	if err != nil {
		return nil, err
	}
	value, err := pc.CreateBinder(meta.ElementMetadata())
	if err != nil {
		return nil, err
	}
	return &dictionaryBinder{
		entryMeta:        entryMeta,
		entry:            entry,
		value:            value,
		converter:        pc.Converter,
		maxSize:          pc.Options.MaxCollectionSize,
		validateTopLevel: pc.Options.ValidateTopLevelNodes,
	}, nil
}

// CollectionProvider handles slices and arrays.
func CollectionProvider(pc *ProviderContext) (Binder, error) {
	meta := pc.Metadata
	if !meta.IsCollectionType {
		return nil, nil
	}
	elem, err := pc.CreateBinder(meta.ElementMetadata())
	if err != nil {
		return nil, err
	}
	return &collectionBinder{
		elem:             elem,
		maxSize:          pc.Options.MaxCollectionSize,
		validateTopLevel: pc.Options.ValidateTopLevelNodes,
	}, nil
}

// SimpleTypeProvider handles types converted from a single string.
func SimpleTypeProvider(pc *ProviderContext) (Binder, error) {
	meta := pc.Metadata
	if !meta.IsSimpleType && !pc.Converter.Has(meta.ModelType) && !pc.Converter.Has(meta.UnderlyingType) {
		return nil, nil
	}
	return &simpleTypeBinder{converter: pc.Converter}, nil
}

// ComplexTypeProvider handles structs and interfaces. Property binders are
// created up front.
func ComplexTypeProvider(pc *ProviderContext) (Binder, error) {
	meta := pc.Metadata
	if !meta.IsComplexType {
		return nil, nil
	}
	b := &complexTypeBinder{converter: pc.Converter}
	for _, prop := range meta.Properties() {
		if !prop.IsBindingAllowed() {
			continue
		}
		pb, err := pc.CreateBinder(prop)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", meta.UnderlyingType, prop.Name, err)
		}
		b.properties = append(b.properties, propertyBinder{meta: prop, binder: pb})
	}
	return b, nil
}
