package validation

import (
	"context"
	"io"
	"log/slog"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/validator"
)

// DefaultMaxValidationDepth caps how deep the visitor descends into a graph.
const DefaultMaxValidationDepth = 200

// Validatable is implemented by models that check themselves after their
// fields were validated. Returned validator.ValidationErrors are recorded
// relative to the model's key; any other error aborts validation.
type Validatable interface {
	Validate() error
}

// ObjectValidator validates bound model graphs into model state.
type ObjectValidator struct {
	registry *validator.Registry
	metadata *metadata.Provider
	maxDepth int
	logger   *slog.Logger
}

// Option configures an ObjectValidator.
type Option func(*ObjectValidator)

// WithRegistry sets the registry resolving validate tag rules.
func WithRegistry(r *validator.Registry) Option {
	return func(v *ObjectValidator) {
		if r != nil {
			v.registry = r
		}
	}
}

// WithMetadataProvider sets the provider used when no metadata is passed.
func WithMetadataProvider(p *metadata.Provider) Option {
	return func(v *ObjectValidator) {
		if p != nil {
			v.metadata = p
		}
	}
}

// WithMaxDepth sets the validation depth limit.
func WithMaxDepth(n int) Option {
	return func(v *ObjectValidator) {
		if n > 0 {
			v.maxDepth = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *ObjectValidator) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewObjectValidator creates a validator using the default rule registry.
func NewObjectValidator(opts ...Option) *ObjectValidator {
	v := &ObjectValidator{
		registry: validator.DefaultRegistry(),
		metadata: metadata.NewProvider(),
		maxDepth: DefaultMaxValidationDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate validates model using the metadata of its runtime type. A nil
// model is not validated.
func (v *ObjectValidator) Validate(ctx context.Context, ms *modelstate.Dictionary, vs *modelstate.ValidationStateDictionary, prefix string, model any) error {
	if model == nil {
		return nil
	}
	meta := v.metadata.ForType(reflect.TypeOf(model))
	return v.newVisitor(ctx, ms, vs).Validate(meta, prefix, reflect.ValueOf(model), false)
}

// ValidateWithMetadata validates model as described by meta. Rules on meta
// itself apply, so a required parameter is reported even when model is nil.
func (v *ObjectValidator) ValidateWithMetadata(ctx context.Context, ms *modelstate.Dictionary, vs *modelstate.ValidationStateDictionary, prefix string, model any, meta *metadata.ModelMetadata) error {
	if meta == nil {
		return v.Validate(ctx, ms, vs, prefix, model)
	}
	return v.newVisitor(ctx, ms, vs).Validate(meta, prefix, reflect.ValueOf(model), meta.IsRequired)
}

func (v *ObjectValidator) newVisitor(ctx context.Context, ms *modelstate.Dictionary, vs *modelstate.ValidationStateDictionary) *Visitor {
	if vs == nil {
		vs = modelstate.NewValidationStateDictionary()
	}
	return &Visitor{
		ctx:      ctx,
		ms:       ms,
		vs:       vs,
		registry: v.registry,
		maxDepth: v.maxDepth,
		logger:   v.logger,
		path:     make(map[visitKey]struct{}),
	}
}
