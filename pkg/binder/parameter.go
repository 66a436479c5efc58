package binder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/logger"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/validation"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// ActionContext is the request state shared by every parameter of one
// handler invocation.
type ActionContext struct {
	Request    *http.Request
	ModelState *modelstate.Dictionary
	Files      valueprovider.FileSource
}

// ObjectValidator validates a bound model graph, including the rules
// declared on the top-level parameter.
type ObjectValidator interface {
	ValidateWithMetadata(ctx context.Context, ms *modelstate.Dictionary, vs *modelstate.ValidationStateDictionary, prefix string, model any, meta *metadata.ModelMetadata) error
}

// LegacyValidator validates a bound model as a whole. Rules declared on the
// top-level parameter are not seen.
type LegacyValidator interface {
	Validate(ctx context.Context, ms *modelstate.Dictionary, vs *modelstate.ValidationStateDictionary, prefix string, model any) error
}

// ParameterBinder binds handler parameters and validates the result.
type ParameterBinder struct {
	metadata  *metadata.Provider
	factory   *Factory
	validator ObjectValidator
	legacy    LegacyValidator
	options   Options
	logger    *slog.Logger
}

// NewParameterBinder returns a binder that validates through v. A nil v
// disables validation.
func NewParameterBinder(mp *metadata.Provider, f *Factory, v ObjectValidator, opts Options, l *slog.Logger) *ParameterBinder {
	if mp == nil {
		mp = metadata.NewProvider()
	}
	if f == nil {
		f = NewFactory(mp, WithFactoryOptions(opts))
	}
	if l == nil {
		l = discardLogger
	}
	return &ParameterBinder{
		metadata:  mp,
		factory:   f,
		validator: v,
		options:   opts.withDefaults(),
		logger:    l,
	}
}

// NewLegacyParameterBinder returns a binder that hands every bound model to
// v as a whole, without top-level enforcement.
func NewLegacyParameterBinder(mp *metadata.Provider, f *Factory, v LegacyValidator, opts Options, l *slog.Logger) *ParameterBinder {
	p := NewParameterBinder(mp, f, nil, opts, l)
	p.legacy = v
	return p
}

// MetadataProvider returns the metadata provider in use.
func (p *ParameterBinder) MetadataProvider() *metadata.Provider {
	return p.metadata
}

// Factory returns the binder factory in use.
func (p *ParameterBinder) Factory() *Factory {
	return p.factory
}

// Options returns the binding limits in use.
func (p *ParameterBinder) Options() Options {
	return p.options
}

// NewActionContext prepares the shared state for binding r.
func (p *ParameterBinder) NewActionContext(r *http.Request) *ActionContext {
	ac := &ActionContext{
		Request: r,
		ModelState: modelstate.New(
			modelstate.WithMaxAllowedErrors(p.options.MaxModelErrors),
			modelstate.WithMessages(p.metadata.Messages()),
		),
	}
	if r != nil {
		ac.Files = valueprovider.NewRequestFiles(r, p.options.MaxMemory)
	}
	return ac
}

// Bind binds param from vp.
func (p *ParameterBinder) Bind(ctx context.Context, ac *ActionContext, vp valueprovider.ValueProvider, param metadata.Parameter) (Result, error) {
	meta := p.metadata.ForParameter(param)
	b, err := p.factory.CreateBinder(FactoryContext{Metadata: meta, CacheToken: meta})
	if err != nil {
		return Result{}, err
	}
	return p.BindModel(ctx, ac, b, vp, param, meta, reflect.Value{})
}

// BindModel binds a parameter with an already created binder. A valid
// value is bound into rather than replaced where the binder supports it.
func (p *ParameterBinder) BindModel(ctx context.Context, ac *ActionContext, b Binder, vp valueprovider.ValueProvider, param metadata.Parameter, meta *metadata.ModelMetadata, value reflect.Value) (Result, error) {
	if vp == nil {
		vp = valueprovider.Empty{}
	}
	bc := p.newContext(ac, vp, meta, param.Name)
	bc.Model = value

	switch {
	case meta.BinderModelName != "":
		bc.ModelName = meta.BinderModelName
	case bc.ValueProvider.ContainsPrefix(param.Name):
		bc.ModelName = param.Name
	default:
		bc.ModelName = ""
	}

	result, err := b.Bind(ctx, bc)
	if err != nil {
		return Result{}, err
	}
	if result.IsNotAttempted() && (meta.IsCollectionType || meta.IsDictionaryType) {
		empty, err := emptyCollection(meta.ModelType)
		if err != nil {
			return Result{}, err
		}
		result = Success(empty)
	}

	p.logger.DebugContext(ctx, "parameter bound",
		logger.Field(param.Name),
		logger.ModelName(bc.ModelName),
		logger.ModelType(meta.ModelType),
		slog.String("result", result.String()),
	)

	switch {
	case meta.ModelType == contextType:
	case p.legacy != nil:
		if result.IsModelSet() {
			err = p.legacy.Validate(ctx, ac.ModelState, bc.ValidationState, bc.ModelName, result.Interface())
		}
	case p.validator == nil:
	case p.options.ValidateTopLevelNodes:
		err = p.enforceBindRequiredAndValidate(ctx, ac, bc, param, meta, result)
	case result.IsModelSet():
		err = p.validator.ValidateWithMetadata(ctx, ac.ModelState, bc.ValidationState, bc.ModelName,
			result.Interface(), p.metadata.ForType(meta.ModelType))
	}
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (p *ParameterBinder) enforceBindRequiredAndValidate(ctx context.Context, ac *ActionContext, bc *Context, param metadata.Parameter, meta *metadata.ModelMetadata, result Result) error {
	switch {
	case !result.IsModelSet() && meta.IsBindingRequired():
		ac.ModelState.AddModelError(param.Name, meta.Messages().MissingBindRequiredValue(param.Name))
		return nil
	case result.IsModelSet():
		return p.validator.ValidateWithMetadata(ctx, ac.ModelState, bc.ValidationState, bc.ModelName, result.Interface(), meta)
	case meta.IsRequired:
		// Binding fell back to the empty prefix and found nothing; report
		// the error under the parameter name instead of "".
		key := bc.ModelName
		if key == "" && (param.BindingInfo == nil || param.BindingInfo.BinderModelName == "") {
			key = param.Name
		}
		return p.validator.ValidateWithMetadata(ctx, ac.ModelState, bc.ValidationState, key, nil, meta)
	}
	return nil
}

// UpdateModel binds vp into the existing model, which must be a non-nil
// pointer, and validates it. It reports whether model state is valid.
func (p *ParameterBinder) UpdateModel(ctx context.Context, ac *ActionContext, vp valueprovider.ValueProvider, model any, prefix string) (bool, error) {
	rv := reflect.ValueOf(model)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false, fmt.Errorf("%w: got %T", ErrInvalidModel, model)
	}
	if vp == nil {
		vp = valueprovider.Empty{}
	}
	meta := p.metadata.ForType(rv.Type())
	b, err := p.factory.CreateBinder(FactoryContext{Metadata: meta, CacheToken: meta})
	if err != nil {
		return false, err
	}

	bc := p.newContext(ac, vp, meta, prefix)
	bc.ModelName = prefix
	bc.Model = rv

	result, err := b.Bind(ctx, bc)
	if err != nil {
		return false, err
	}
	if !result.IsModelSet() {
		return false, nil
	}
	if out := result.Model(); out.IsValid() && out.Type() == rv.Type() && !out.IsNil() && out.Pointer() != rv.Pointer() {
		rv.Elem().Set(out.Elem())
	}

	switch {
	case p.legacy != nil:
		err = p.legacy.Validate(ctx, ac.ModelState, bc.ValidationState, prefix, model)
	case p.validator != nil:
		err = p.validator.ValidateWithMetadata(ctx, ac.ModelState, bc.ValidationState, prefix, model, meta)
	}
	if err != nil {
		return false, err
	}
	return ac.ModelState.IsValid(), nil
}

func (p *ParameterBinder) newContext(ac *ActionContext, vp valueprovider.ValueProvider, meta *metadata.ModelMetadata, fieldName string) *Context {
	if ac.ModelState == nil {
		ac.ModelState = modelstate.New(
			modelstate.WithMaxAllowedErrors(p.options.MaxModelErrors),
			modelstate.WithMessages(p.metadata.Messages()),
		)
	}
	bc := TopLevelContext(meta, vp, "")
	bc.Request = ac.Request
	bc.Files = ac.Files
	bc.ModelState = ac.ModelState
	bc.Logger = p.logger
	bc.FieldName = fieldName
	bc.SetMaxDepth(p.options.MaxRecursionDepth)
	return bc
}

// Option configures New.
type Option func(*parameterConfig)

type parameterConfig struct {
	metadata     *metadata.Provider
	logger       *slog.Logger
	validator    ObjectValidator
	validatorSet bool
	legacy       LegacyValidator
	factory      []FactoryOption
}

// WithMetadataProvider sets the metadata provider.
func WithMetadataProvider(p *metadata.Provider) Option {
	return func(c *parameterConfig) {
		c.metadata = p
	}
}

// WithLogger sets the logger of the factory, the binder and the default
// validator.
func WithLogger(l *slog.Logger) Option {
	return func(c *parameterConfig) {
		c.logger = l
	}
}

// WithValidator replaces the default object validator. A nil v disables
// validation.
func WithValidator(v ObjectValidator) Option {
	return func(c *parameterConfig) {
		c.validator = v
		c.validatorSet = true
	}
}

// WithLegacyValidator validates through v without top-level enforcement.
func WithLegacyValidator(v LegacyValidator) Option {
	return func(c *parameterConfig) {
		c.legacy = v
	}
}

// WithFactoryOption passes options to the binder factory.
func WithFactoryOption(opts ...FactoryOption) Option {
	return func(c *parameterConfig) {
		c.factory = append(c.factory, opts...)
	}
}

// New wires a ParameterBinder with the default providers and the default
// object validator.
func New(opts Options, options ...Option) *ParameterBinder {
	c := &parameterConfig{}
	for _, opt := range options {
		opt(c)
	}
	if c.metadata == nil {
		c.metadata = metadata.NewProvider()
	}
	if c.logger == nil {
		c.logger = discardLogger
	}
	opts = opts.withDefaults()

	factoryOpts := append([]FactoryOption{WithFactoryOptions(opts), WithFactoryLogger(c.logger)}, c.factory...)
	f := NewFactory(c.metadata, factoryOpts...)

	if c.legacy != nil {
		return NewLegacyParameterBinder(c.metadata, f, c.legacy, opts, c.logger)
	}
	if !c.validatorSet {
		c.validator = validation.NewObjectValidator(
			validation.WithMetadataProvider(c.metadata),
			validation.WithLogger(c.logger),
		)
	}
	return NewParameterBinder(c.metadata, f, c.validator, opts, c.logger)
}
