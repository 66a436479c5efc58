package metadata

import (
	"encoding"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
	"github.com/dmitrymomot/modelbind/pkg/validator"
)

// Kind tells what a ModelMetadata describes.
type Kind int

const (
	KindType Kind = iota
	KindProperty
	KindParameter
)

func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindParameter:
		return "parameter"
	default:
		return "type"
	}
}

// BindingBehavior controls whether a property takes part in binding.
type BindingBehavior int

const (
	BindingOptional BindingBehavior = iota
	BindingRequired
	BindingNever
)

// BindIncluder limits binding of a type to the named properties.
type BindIncluder interface {
	BindInclude() []string
}

// PropertyFilterer supplies a predicate that decides which properties of a
// type are bound.
type PropertyFilterer interface {
	BindPropertyFilter() func(*ModelMetadata) bool
}

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	timeType            = reflect.TypeFor[time.Time]()
	bindIncluderType    = reflect.TypeFor[BindIncluder]()
	propertyFiltererTyp = reflect.TypeFor[PropertyFilterer]()
)

// ModelMetadata holds the binding facts for a type, a struct field or a
// parameter. Instances are created by a Provider and never change.
type ModelMetadata struct {
	provider *Provider

	ModelType      reflect.Type
	UnderlyingType reflect.Type
	Kind           Kind

	// ContainerType and FieldIndex are set for properties.
	ContainerType reflect.Type
	FieldIndex    []int

	// Name is the Go field name or the parameter name.
	Name string

	BinderModelName string
	BindingSource   *bindingsource.Source
	BinderName      string
	BinderType      reflect.Type
	BindingBehavior BindingBehavior

	// IsRequired is set by a validate:"required" rule.
	IsRequired bool
	Rules      []validator.TagRule

	DisplayName     string
	DefaultValue    string
	HasDefaultValue bool
	ReadOnly        bool

	ConvertEmptyStringToNull bool
	PropertyFilter           func(*ModelMetadata) bool

	IsSimpleType              bool
	IsComplexType             bool
	IsCollectionType          bool
	IsDictionaryType          bool
	IsReferenceOrNullableType bool
	CanActivate               bool

	propsOnce  sync.Once
	properties []*ModelMetadata
	byName     map[string]*ModelMetadata

	elemOnce sync.Once
	element  *ModelMetadata
	key      *ModelMetadata
}

// IsBindingRequired reports whether the property must receive a value.
func (m *ModelMetadata) IsBindingRequired() bool {
	return m.BindingBehavior == BindingRequired
}

// IsBindingAllowed reports whether the property may be bound at all.
func (m *ModelMetadata) IsBindingAllowed() bool {
	return m.BindingBehavior != BindingNever
}

// ModelName returns the name used for the property in request keys.
func (m *ModelMetadata) ModelName() string {
	if m.BinderModelName != "" {
		return m.BinderModelName
	}
	return m.Name
}

// GetDisplayName returns the display name, falling back to the model name.
func (m *ModelMetadata) GetDisplayName() string {
	switch {
	case m.DisplayName != "":
		return m.DisplayName
	case m.Name != "":
		return m.Name
	}
	return m.UnderlyingType.Name()
}

// Messages returns the messages of the provider that created m.
func (m *ModelMetadata) Messages() *Messages {
	if m.provider == nil {
		return DefaultMessages()
	}
	return m.provider.messages
}

// Provider returns the provider that created m.
func (m *ModelMetadata) Provider() *Provider {
	return m.provider
}

// Properties returns the bindable fields of a struct type in declaration
// order, with fields of embedded structs promoted in place.
func (m *ModelMetadata) Properties() []*ModelMetadata {
	if m.delegates() {
		return m.provider.ForType(m.UnderlyingType).Properties()
	}
	m.propsOnce.Do(m.loadProperties)
	return m.properties
}

// Property returns the property with the given Go field name, or nil.
func (m *ModelMetadata) Property(name string) *ModelMetadata {
	if m.delegates() {
		return m.provider.ForType(m.UnderlyingType).Property(name)
	}
	m.propsOnce.Do(m.loadProperties)
	if p, ok := m.byName[name]; ok {
		return p
	}
	for n, p := range m.byName {
		if strings.EqualFold(n, name) {
			return p
		}
	}
	return nil
}

// ElementMetadata returns the metadata of a collection's element type or a
// dictionary's value type.
func (m *ModelMetadata) ElementMetadata() *ModelMetadata {
	if m.delegates() {
		return m.provider.ForType(m.UnderlyingType).ElementMetadata()
	}
	m.elemOnce.Do(m.loadElements)
	return m.element
}

// KeyMetadata returns the metadata of a dictionary's key type.
func (m *ModelMetadata) KeyMetadata() *ModelMetadata {
	if m.delegates() {
		return m.provider.ForType(m.UnderlyingType).KeyMetadata()
	}
	m.elemOnce.Do(m.loadElements)
	return m.key
}

// delegates reports whether structural lookups are served by the metadata of
// the underlying type, so that recursive types share one property graph.
func (m *ModelMetadata) delegates() bool {
	return m.Kind != KindType || m.ModelType != m.UnderlyingType
}

func (m *ModelMetadata) loadElements() {
	switch m.UnderlyingType.Kind() {
	case reflect.Slice, reflect.Array:
		m.element = m.provider.ForType(m.UnderlyingType.Elem())
	case reflect.Map:
		m.element = m.provider.ForType(m.UnderlyingType.Elem())
		m.key = m.provider.ForType(m.UnderlyingType.Key())
	}
}

func (m *ModelMetadata) loadProperties() {
	m.byName = make(map[string]*ModelMetadata)
	if m.UnderlyingType.Kind() != reflect.Struct {
		return
	}
	m.collectFields(m.UnderlyingType, nil)
}

func (m *ModelMetadata) collectFields(t reflect.Type, index []int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fieldIndex := append(append([]int(nil), index...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if _, tagged := f.Tag.Lookup("bind"); !tagged {
				m.collectFields(f.Type, fieldIndex)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if _, dup := m.byName[f.Name]; dup {
			continue
		}

		prop := m.provider.newPropertyMetadata(m.ModelType, f, fieldIndex)
		m.properties = append(m.properties, prop)
		m.byName[f.Name] = prop
	}
}

func underlying(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// describeType fills the structural facts derived from the model type.
func (p *Provider) describeType(m *ModelMetadata, t reflect.Type) {
	m.ModelType = t
	m.UnderlyingType = underlying(t)
	m.ConvertEmptyStringToNull = true

	u := m.UnderlyingType
	m.IsSimpleType = p.isSimpleType(u)
	if !m.IsSimpleType {
		switch u.Kind() {
		case reflect.Slice, reflect.Array:
			m.IsCollectionType = true
		case reflect.Map:
			m.IsDictionaryType = true
		case reflect.Struct, reflect.Interface:
			m.IsComplexType = true
		}
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		m.IsReferenceOrNullableType = true
	}

	switch u.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		m.CanActivate = false
	default:
		m.CanActivate = true
	}

	if bt, ok := p.binderTypes[t]; ok {
		m.BinderType = bt
	} else if bt, ok := p.binderTypes[u]; ok {
		m.BinderType = bt
	}

	m.PropertyFilter = typePropertyFilter(u)
}

func (p *Provider) isSimpleType(t reflect.Type) bool {
	if _, ok := p.simpleTypes[t]; ok {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	if t == timeType {
		return true
	}
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// typePropertyFilter builds the property filter declared by the type itself.
func typePropertyFilter(t reflect.Type) func(*ModelMetadata) bool {
	if t.Kind() == reflect.Interface {
		return nil
	}
	pt := reflect.PointerTo(t)
	switch {
	case pt.Implements(propertyFiltererTyp):
		return reflect.New(t).Interface().(PropertyFilterer).BindPropertyFilter()
	case pt.Implements(bindIncluderType):
		return IncludeFilter(reflect.New(t).Interface().(BindIncluder).BindInclude()...)
	}
	return nil
}

// IncludeFilter returns a filter admitting only the named properties.
// Names are compared with the Go field name and the model name.
func IncludeFilter(names ...string) func(*ModelMetadata) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return func(m *ModelMetadata) bool {
		if _, ok := set[strings.ToLower(m.Name)]; ok {
			return true
		}
		if m.BinderModelName != "" {
			_, ok := set[strings.ToLower(m.BinderModelName)]
			return ok
		}
		return false
	}
}
