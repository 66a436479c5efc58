package handler

import (
	"net/http"
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/binder"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// HandlerFunc handles a request whose input was bound into R.
// Binding failures are in ctx.ModelState(); the handler decides what to do
// with an invalid model.
//
//	type CreateOrder struct {
//		Sku string `validate:"required"`
//		Qty int    `validate:"min=1"`
//	}
//
//	func createOrder(ctx handler.Context, req CreateOrder) handler.Response {
//		if !ctx.ModelState().IsValid() {
//			return handler.ValidationProblem(ctx.ModelState())
//		}
//		return handler.JSON(save(req), handler.WithJSONStatus(http.StatusCreated))
//	}
type HandlerFunc[C Context, R any] func(ctx C, req R) Response

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ErrorHandler handles errors from binding or rendering.
type ErrorHandler[C Context] func(ctx C, err error)

// Decorator wraps a HandlerFunc. The first decorator given to Wrap is the
// outermost.
type Decorator[C Context, R any] func(HandlerFunc[C, R]) HandlerFunc[C, R]

// WrapOption configures Wrap.
type WrapOption[C Context, R any] func(*wrapConfig[C, R])

type wrapConfig[C Context, R any] struct {
	binder         *binder.ParameterBinder
	param          metadata.Parameter
	errorHandler   ErrorHandler[C]
	contextFactory func(http.ResponseWriter, *http.Request) C
	decorators     []Decorator[C, R]
}

// WithParameterBinder sets the binder shared by handlers. Wrap builds a
// default one per handler when none is given.
func WithParameterBinder[C Context, R any](pb *binder.ParameterBinder) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if pb != nil {
			c.binder = pb
		}
	}
}

// WithParameterName names the request parameter. Values prefixed with the
// name bind to it; without any such value binding falls back to the empty
// prefix.
func WithParameterName[C Context, R any](name string) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.param.Name = name
	}
}

// WithBindingInfo sets the binding settings of the request parameter, such
// as a model name or a body source.
func WithBindingInfo[C Context, R any](info *metadata.BindingInfo) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.param.BindingInfo = info
	}
}

func WithErrorHandler[C Context, R any](h ErrorHandler[C]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithContextFactory sets how the handler context is built. The request it
// receives already carries the binding state.
func WithContextFactory[C Context, R any](f func(http.ResponseWriter, *http.Request) C) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if f != nil {
			c.contextFactory = f
		}
	}
}

func WithDecorators[C Context, R any](decorators ...Decorator[C, R]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.decorators = append(c.decorators, decorators...)
	}
}

// Wrap converts a typed HandlerFunc to http.HandlerFunc. Each request is
// bound into R from its form, route, query and JSON values.
//
//	pb := binder.New(opts, binder.WithLogger(log))
//	r.Post("/orders", handler.Wrap(createOrder,
//		handler.WithParameterBinder[handler.Context, CreateOrder](pb),
//		handler.WithErrorHandler[handler.Context, CreateOrder](handler.NewErrorHandler(log, handler.ErrorHandlerConfig{})),
//	))
func Wrap[C Context, R any](h HandlerFunc[C, R], opts ...WrapOption[C, R]) http.HandlerFunc {
	cfg := &wrapConfig[C, R]{
		param:        metadata.Parameter{Type: reflect.TypeFor[R]()},
		errorHandler: defaultErrorHandler[C],
		contextFactory: func(w http.ResponseWriter, r *http.Request) C {
			if c, ok := NewContext(w, r).(C); ok {
				return c
			}
			panic("cannot use default context factory with custom context type - provide WithContextFactory")
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.binder == nil {
		cfg.binder = binder.New(binder.DefaultOptions())
	}

	final := h
	for i := len(cfg.decorators) - 1; i >= 0; i-- {
		final = cfg.decorators[i](final)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ac := cfg.binder.NewActionContext(r)
		r = r.WithContext(WithActionContext(r.Context(), ac))
		ac.Request = r
		ac.Files = valueprovider.NewRequestFiles(r, cfg.binder.Options().MaxMemory)
		ctx := cfg.contextFactory(w, r)

		req, err := bindRequest[R](ctx, cfg.binder, ac, cfg.param)
		if err != nil {
			cfg.errorHandler(ctx, err)
			return
		}

		response := final(ctx, req)
		if response == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := response.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}

func bindRequest[R any](ctx Context, pb *binder.ParameterBinder, ac *binder.ActionContext, param metadata.Parameter) (R, error) {
	var req R

	vp, err := valueprovider.FromRequest(ac.Request, pb.Options().RequestOptions())
	if err != nil {
		return req, err
	}
	result, err := pb.Bind(ctx, ac, vp, param)
	if err != nil {
		return req, err
	}
	if v, ok := result.Interface().(R); ok {
		req = v
	}
	return req, nil
}

// RequireValidModel answers with invalid when model state has errors and
// calls the handler otherwise. A nil invalid responds with
// ValidationProblem.
func RequireValidModel[C Context, R any](invalid func(ctx C, req R) Response) Decorator[C, R] {
	return func(next HandlerFunc[C, R]) HandlerFunc[C, R] {
		return func(ctx C, req R) Response {
			if ms := ctx.ModelState(); ms != nil && !ms.IsValid() {
				if invalid != nil {
					return invalid(ctx, req)
				}
				return ValidationProblem(ms)
			}
			return next(ctx, req)
		}
	}
}
