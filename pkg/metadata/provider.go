package metadata

import (
	"fmt"
	"reflect"
	"sync"
)

// Provider creates and caches model metadata. A Provider is safe for
// concurrent use; cached entries are never evicted.
type Provider struct {
	mu     sync.RWMutex
	types  map[reflect.Type]*ModelMetadata
	params map[paramKey]*ModelMetadata

	messages    *Messages
	binderTypes map[reflect.Type]reflect.Type
	simpleTypes map[reflect.Type]struct{}
}

type paramKey struct {
	name string
	typ  reflect.Type
	info *BindingInfo
}

// Option configures a Provider.
type Option func(*Provider)

// WithMessages sets the messages used for binding errors.
func WithMessages(m *Messages) Option {
	return func(p *Provider) {
		if m != nil {
			p.messages = m
		}
	}
}

// WithBinderType overrides the binder for modelType. binderType must
// implement the binder interface; the binder factory reports an error when
// it does not.
func WithBinderType(modelType, binderType reflect.Type) Option {
	return func(p *Provider) {
		p.binderTypes[modelType] = binderType
	}
}

// WithSimpleType marks t as a simple type bound from a single string value.
// A converter for t must be registered with the binder.
func WithSimpleType(t reflect.Type) Option {
	return func(p *Provider) {
		p.simpleTypes[t] = struct{}{}
	}
}

// NewProvider creates a metadata provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		types:       make(map[reflect.Type]*ModelMetadata),
		params:      make(map[paramKey]*ModelMetadata),
		messages:    DefaultMessages(),
		binderTypes: make(map[reflect.Type]reflect.Type),
		simpleTypes: make(map[reflect.Type]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Messages returns the provider's binding messages.
func (p *Provider) Messages() *Messages {
	return p.messages
}

// ForType returns the metadata of t.
func (p *Provider) ForType(t reflect.Type) *ModelMetadata {
	p.mu.RLock()
	m, ok := p.types[t]
	p.mu.RUnlock()
	if ok {
		return m
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.types[t]; ok {
		return m
	}
	m = &ModelMetadata{provider: p, Kind: KindType}
	p.describeType(m, t)
	p.types[t] = m
	return m
}

// ForProperty returns the metadata of the field name declared by container.
// Asking for a field that does not exist is a configuration error.
func (p *Provider) ForProperty(container reflect.Type, name string) (*ModelMetadata, error) {
	cm := p.ForType(container)
	if cm.UnderlyingType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, container)
	}
	prop := cm.Property(name)
	if prop == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrPropertyNotFound, container, name)
	}
	return prop, nil
}

// ForParameter returns the metadata of a handler parameter. Binding info on
// the parameter takes precedence over facts declared by the type.
func (p *Provider) ForParameter(param Parameter) *ModelMetadata {
	key := paramKey{name: param.Name, typ: param.Type, info: param.BindingInfo}

	p.mu.RLock()
	m, ok := p.params[key]
	p.mu.RUnlock()
	if ok {
		return m
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.params[key]; ok {
		return m
	}
	m = &ModelMetadata{provider: p, Kind: KindParameter, Name: param.Name}
	p.describeType(m, param.Type)
	if info := param.BindingInfo; info != nil {
		info.apply(m)
	}
	p.params[key] = m
	return m
}

func (p *Provider) newPropertyMetadata(container reflect.Type, f reflect.StructField, index []int) *ModelMetadata {
	m := &ModelMetadata{
		provider:      p,
		Kind:          KindProperty,
		ContainerType: container,
		FieldIndex:    index,
		Name:          f.Name,
	}
	p.describeType(m, f.Type)

	tags := parseFieldTags(f.Tag)
	m.BinderModelName = tags.name
	m.BindingBehavior = tags.behavior
	m.ReadOnly = tags.readOnly
	m.BindingSource = tags.source
	m.BinderName = tags.binderName
	m.Rules = tags.rules
	m.IsRequired = tags.required
	m.DisplayName = tags.display
	m.DefaultValue = tags.defaultVal
	m.HasDefaultValue = tags.hasDefault
	if tags.keepEmpty {
		m.ConvertEmptyStringToNull = false
	}
	switch m.UnderlyingType.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		m.BindingBehavior = BindingNever
	}
	return m
}
