package binder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// DefaultMaxRecursionDepth bounds the number of nested scopes in one bind.
const DefaultMaxRecursionDepth = 32

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Context is the mutable state of one binding operation. Binders move
// through the model graph with EnterNestedScope and restore the previous
// state with Scope.Exit.
type Context struct {
	// Request scoped. Shared by every nested scope.
	Request               *http.Request
	Files                 valueprovider.FileSource
	ModelState            *modelstate.Dictionary
	ValidationState       *modelstate.ValidationStateDictionary
	OriginalValueProvider valueprovider.ValueProvider
	Logger                *slog.Logger

	// Scope state. Saved and restored by EnterNestedScope.
	ModelName        string
	FieldName        string
	ModelMetadata    *metadata.ModelMetadata
	Model            reflect.Value
	ValueProvider    valueprovider.ValueProvider
	BindingSource    *bindingsource.Source
	BinderModelName  string
	PropertyFilter   func(*metadata.ModelMetadata) bool
	IsTopLevelObject bool

	maxDepth int
	scopes   []frame
	visiting []visit
}

type frame struct {
	modelName        string
	fieldName        string
	meta             *metadata.ModelMetadata
	model            reflect.Value
	valueProvider    valueprovider.ValueProvider
	bindingSource    *bindingsource.Source
	binderModelName  string
	propertyFilter   func(*metadata.ModelMetadata) bool
	isTopLevelObject bool
}

type visit struct {
	typ reflect.Type
	ptr uintptr
}

// Scope restores the state captured by EnterNestedScope.
type Scope struct {
	bc     *Context
	depth  int
	exited bool
}

// TopLevelContext builds the context for binding a top-level model.
// The value provider is filtered by the metadata's binding source.
func TopLevelContext(meta *metadata.ModelMetadata, vp valueprovider.ValueProvider, modelName string) *Context {
	if vp == nil {
		vp = valueprovider.Empty{}
	}
	bc := &Context{
		ModelState:            modelstate.New(modelstate.WithMessages(meta.Messages())),
		ValidationState:       modelstate.NewValidationStateDictionary(),
		OriginalValueProvider: vp,
		Logger:                discardLogger,
		ModelName:             modelName,
		FieldName:             meta.Name,
		ModelMetadata:         meta,
		ValueProvider:         vp,
		BindingSource:         meta.BindingSource,
		BinderModelName:       meta.BinderModelName,
		PropertyFilter:        meta.PropertyFilter,
		IsTopLevelObject:      true,
		maxDepth:              DefaultMaxRecursionDepth,
	}
	if src := meta.BindingSource; src != nil && !src.Greedy {
		bc.ValueProvider = valueprovider.Filter(vp, src)
	}
	return bc
}

// SetMaxDepth changes the nesting limit. Values below one keep the default.
func (bc *Context) SetMaxDepth(n int) {
	if n > 0 {
		bc.maxDepth = n
	}
}

// Depth returns the number of scopes currently entered.
func (bc *Context) Depth() int {
	return len(bc.scopes)
}

// Messages returns the binding messages for the current model.
func (bc *Context) Messages() *metadata.Messages {
	if bc.ModelMetadata == nil {
		return metadata.DefaultMessages()
	}
	return bc.ModelMetadata.Messages()
}

func (bc *Context) logger() *slog.Logger {
	if bc.Logger == nil {
		return discardLogger
	}
	return bc.Logger
}

// EnterNestedScope switches the context to a child model. A non-greedy
// binding source on meta filters the original value provider; otherwise the
// current provider is kept. The caller must call Exit on the returned scope.
func (bc *Context) EnterNestedScope(meta *metadata.ModelMetadata, fieldName, modelName string, model reflect.Value) (*Scope, error) {
	if meta == nil {
		return nil, ErrNilMetadata
	}
	limit := bc.maxDepth
	if limit <= 0 {
		limit = DefaultMaxRecursionDepth
	}
	if len(bc.scopes) >= limit {
		return nil, fmt.Errorf("%w: %d at %q", ErrMaxDepthExceeded, limit, modelName)
	}

	bc.scopes = append(bc.scopes, frame{
		modelName:        bc.ModelName,
		fieldName:        bc.FieldName,
		meta:             bc.ModelMetadata,
		model:            bc.Model,
		valueProvider:    bc.ValueProvider,
		bindingSource:    bc.BindingSource,
		binderModelName:  bc.BinderModelName,
		propertyFilter:   bc.PropertyFilter,
		isTopLevelObject: bc.IsTopLevelObject,
	})

	bc.ModelName = modelName
	bc.FieldName = fieldName
	bc.ModelMetadata = meta
	bc.Model = model
	bc.BindingSource = meta.BindingSource
	bc.BinderModelName = meta.BinderModelName
	bc.PropertyFilter = meta.PropertyFilter
	bc.IsTopLevelObject = false
	if src := meta.BindingSource; src != nil && !src.Greedy {
		bc.ValueProvider = valueprovider.Filter(bc.OriginalValueProvider, src)
	}

	return &Scope{bc: bc, depth: len(bc.scopes)}, nil
}

// Exit restores the state saved when the scope was entered. Calling Exit
// twice is a no-op.
func (s *Scope) Exit() {
	if s == nil || s.exited {
		return
	}
	s.exited = true
	bc := s.bc
	if s.depth > len(bc.scopes) {
		return
	}
	// Scopes are strictly nested. Frames a child left open are dropped too.
	f := bc.scopes[s.depth-1]
	bc.scopes = bc.scopes[:s.depth-1]

	bc.ModelName = f.modelName
	bc.FieldName = f.fieldName
	bc.ModelMetadata = f.meta
	bc.Model = f.model
	bc.ValueProvider = f.valueProvider
	bc.BindingSource = f.bindingSource
	bc.BinderModelName = f.binderModelName
	bc.PropertyFilter = f.propertyFilter
	bc.IsTopLevelObject = f.isTopLevelObject
}

// Nested runs b inside a nested scope and always exits it.
func (bc *Context) Nested(ctx context.Context, meta *metadata.ModelMetadata, fieldName, modelName string, model reflect.Value, b Binder) (Result, error) {
	scope, err := bc.EnterNestedScope(meta, fieldName, modelName, model)
	if err != nil {
		return Result{}, err
	}
	defer scope.Exit()
	return b.Bind(ctx, bc)
}

// enterModel records model as being bound. It reports false when the same
// instance is already being bound further up the graph.
func (bc *Context) enterModel(model reflect.Value) bool {
	v, ok := visitOf(model)
	if !ok {
		bc.visiting = append(bc.visiting, visit{})
		return true
	}
	for _, seen := range bc.visiting {
		if seen == v {
			return false
		}
	}
	bc.visiting = append(bc.visiting, v)
	return true
}

func (bc *Context) exitModel() {
	if n := len(bc.visiting); n > 0 {
		bc.visiting = bc.visiting[:n-1]
	}
}

func visitOf(model reflect.Value) (visit, bool) {
	if !model.IsValid() {
		return visit{}, false
	}
	switch model.Kind() {
	case reflect.Pointer, reflect.Map:
		if model.IsNil() {
			return visit{}, false
		}
		return visit{typ: model.Type(), ptr: model.Pointer()}, true
	}
	return visit{}, false
}
