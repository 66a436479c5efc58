package binder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/modelbind/pkg/logger"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
)

// Provider returns a binder for the metadata in pc, or nil when it does not
// handle that kind of model.
type Provider interface {
	GetBinder(pc *ProviderContext) (Binder, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(pc *ProviderContext) (Binder, error)

func (f ProviderFunc) GetBinder(pc *ProviderContext) (Binder, error) {
	return f(pc)
}

// ProviderContext is handed to providers while a binder is being created.
type ProviderContext struct {
	Metadata         *metadata.ModelMetadata
	MetadataProvider *metadata.Provider
	Options          Options
	Converter        *Converter
	Logger           *slog.Logger

	factory *Factory
	call    *createCall
}

// CreateBinder returns the binder for a child model, such as a property or
// a collection element. Binders for recursive types resolve to a placeholder
// that forwards to the finished binder.
func (pc *ProviderContext) CreateBinder(meta *metadata.ModelMetadata) (Binder, error) {
	return pc.factory.create(pc.call, meta, meta)
}

// NamedBinder returns a binder registered with Factory.RegisterBinder.
func (pc *ProviderContext) NamedBinder(name string) (Binder, bool) {
	return pc.factory.named(name)
}

// FactoryContext selects the binder to create. A nil CacheToken disables
// caching of the top-level binder.
type FactoryContext struct {
	Metadata   *metadata.ModelMetadata
	CacheToken any
}

type cacheKey struct {
	meta  *metadata.ModelMetadata
	token any
}

// createCall tracks binders under construction in one CreateBinder call.
type createCall struct {
	inProgress map[cacheKey]*placeholder
}

// placeholder stands in for a binder whose construction is still running.
type placeholder struct {
	inner Binder
}

func (p *placeholder) Bind(ctx context.Context, bc *Context) (Result, error) {
	if p.inner == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoBinder, bc.ModelMetadata.ModelType)
	}
	return p.inner.Bind(ctx, bc)
}

// Factory creates binders from metadata by asking providers in order.
// Created binders are cached and safe for concurrent use.
type Factory struct {
	metadata  *metadata.Provider
	providers []Provider
	options   Options
	converter *Converter
	logger    *slog.Logger

	mu     sync.RWMutex
	cache  map[cacheKey]Binder
	byName map[string]Binder
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithProviders replaces the default provider list.
func WithProviders(providers ...Provider) FactoryOption {
	return func(f *Factory) {
		f.providers = providers
	}
}

// WithFactoryLogger sets the logger used while creating binders.
func WithFactoryLogger(l *slog.Logger) FactoryOption {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithConverter sets the converter used by simple-type binders.
func WithConverter(c *Converter) FactoryOption {
	return func(f *Factory) {
		if c != nil {
			f.converter = c
		}
	}
}

// WithFactoryOptions sets the binding limits seen by providers.
func WithFactoryOptions(opts Options) FactoryOption {
	return func(f *Factory) {
		f.options = opts.withDefaults()
	}
}

// WithNamedBinder registers b under name for the binder:"name" tag.
func WithNamedBinder(name string, b Binder) FactoryOption {
	return func(f *Factory) {
		f.byName[name] = b
	}
}

// NewFactory returns a factory using DefaultProviders unless overridden.
func NewFactory(mp *metadata.Provider, opts ...FactoryOption) *Factory {
	if mp == nil {
		mp = metadata.NewProvider()
	}
	f := &Factory{
		metadata:  mp,
		providers: DefaultProviders(),
		options:   DefaultOptions(),
		converter: defaultConverter,
		logger:    discardLogger,
		cache:     make(map[cacheKey]Binder),
		byName:    make(map[string]Binder),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// MetadataProvider returns the metadata provider the factory reads.
func (f *Factory) MetadataProvider() *metadata.Provider {
	return f.metadata
}

// RegisterBinder makes b available to properties tagged binder:"name".
func (f *Factory) RegisterBinder(name string, b Binder) {
	f.mu.Lock()
	f.byName[name] = b
	f.mu.Unlock()
}

func (f *Factory) named(name string) (Binder, bool) {
	f.mu.RLock()
	b, ok := f.byName[name]
	f.mu.RUnlock()
	return b, ok
}

// CreateBinder returns the binder for fc.Metadata.
func (f *Factory) CreateBinder(fc FactoryContext) (Binder, error) {
	if fc.Metadata == nil {
		return nil, ErrNilMetadata
	}
	call := &createCall{inProgress: make(map[cacheKey]*placeholder)}
	return f.create(call, fc.Metadata, fc.CacheToken)
}

func (f *Factory) create(call *createCall, meta *metadata.ModelMetadata, token any) (Binder, error) {
	if meta == nil {
		return nil, ErrNilMetadata
	}
	key := cacheKey{meta: meta, token: token}
	if token != nil {
		f.mu.RLock()
		b, ok := f.cache[key]
		f.mu.RUnlock()
		if ok {
			return b, nil
		}
	}
	if ph, ok := call.inProgress[key]; ok {
		return ph, nil
	}

	ph := &placeholder{}
	call.inProgress[key] = ph
	defer delete(call.inProgress, key)

	pc := &ProviderContext{
		Metadata:         meta,
		MetadataProvider: f.metadata,
		Options:          f.options,
		Converter:        f.converter,
		Logger:           f.logger,
		factory:          f,
		call:             call,
	}

	var result Binder
	for _, p := range f.providers {
		b, err := p.GetBinder(pc)
		if err != nil {
			return nil, err
		}
		if b != nil {
			result = b
			break
		}
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBinder, meta.ModelType)
	}
	ph.inner = result

	f.logger.Debug("binder created",
		logger.ModelType(meta.ModelType),
		logger.BinderKind(fmt.Sprintf("%T", result)),
	)

	if token != nil {
		f.mu.Lock()
		if existing, ok := f.cache[key]; ok {
			result = existing
		} else {
			f.cache[key] = result
		}
		f.mu.Unlock()
	}
	return result, nil
}
