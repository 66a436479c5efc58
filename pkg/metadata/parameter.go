package metadata

import (
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
)

// Parameter describes a handler argument to bind.
type Parameter struct {
	Name        string
	Type        reflect.Type
	BindingInfo *BindingInfo
}

// ParameterFor describes a parameter of type T.
func ParameterFor[T any](name string) Parameter {
	return Parameter{Name: name, Type: reflect.TypeFor[T]()}
}

// BindingInfo carries binding settings declared on a parameter.
type BindingInfo struct {
	BinderModelName string
	BindingSource   *bindingsource.Source
	BinderName      string
	BinderType      reflect.Type
	BindingBehavior BindingBehavior
	IsRequired      bool

	// Include restricts binding to the named properties.
	Include        []string
	PropertyFilter func(*ModelMetadata) bool
}

func (b *BindingInfo) apply(m *ModelMetadata) {
	if b.BinderModelName != "" {
		m.BinderModelName = b.BinderModelName
	}
	if b.BindingSource != nil {
		m.BindingSource = b.BindingSource
	}
	if b.BinderName != "" {
		m.BinderName = b.BinderName
	}
	if b.BinderType != nil {
		m.BinderType = b.BinderType
	}
	m.BindingBehavior = b.BindingBehavior
	m.IsRequired = b.IsRequired

	switch {
	case len(b.Include) > 0:
		m.PropertyFilter = IncludeFilter(b.Include...)
	case b.PropertyFilter != nil:
		m.PropertyFilter = b.PropertyFilter
	}
}
