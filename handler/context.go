package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/modelbind/pkg/binder"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/tempdata"
)

// Context wraps the request and response writer of one handler call and
// exposes the binding state.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// ModelState returns the binding and validation errors of the request.
	ModelState() *modelstate.Dictionary
	// TempData returns the temp data dictionary installed by
	// tempdata.Middleware, or nil.
	TempData() *tempdata.Dictionary
}

// NewContext creates a Context from the request and response writer.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return &httpContext{w: w, r: r}
}

type httpContext struct {
	w http.ResponseWriter
	r *http.Request
}

func (c *httpContext) Request() *http.Request {
	return c.r
}

func (c *httpContext) ResponseWriter() http.ResponseWriter {
	return c.w
}

func (c *httpContext) ModelState() *modelstate.Dictionary {
	if ac := ActionContextFrom(c.r.Context()); ac != nil {
		return ac.ModelState
	}
	return nil
}

func (c *httpContext) TempData() *tempdata.Dictionary {
	return tempdata.FromContext(c.r.Context())
}

func (c *httpContext) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

func (c *httpContext) Done() <-chan struct{} {
	return c.r.Context().Done()
}

func (c *httpContext) Err() error {
	return c.r.Context().Err()
}

func (c *httpContext) Value(key any) any {
	return c.r.Context().Value(key)
}

type actionContextKey struct{}

// WithActionContext returns a copy of ctx carrying the binding state of a
// request.
func WithActionContext(ctx context.Context, ac *binder.ActionContext) context.Context {
	return context.WithValue(ctx, actionContextKey{}, ac)
}

// ActionContextFrom returns the binding state stored by WithActionContext,
// or nil.
func ActionContextFrom(ctx context.Context) *binder.ActionContext {
	return ContextValue[*binder.ActionContext](ctx, actionContextKey{})
}

// ContextKey is a typed context key.
type ContextKey struct{ name string }

func (c *ContextKey) String() string {
	return c.name
}

// NewContextKey creates a context key. Declare keys as package variables.
func NewContextKey(name string) *ContextKey {
	return &ContextKey{name}
}

// ContextValue returns the value for key as T, or the zero value.
func ContextValue[T any](ctx context.Context, key any) T {
	val, _ := ctx.Value(key).(T)
	return val
}

// ContextValueOK is ContextValue that also reports whether a T was found.
func ContextValueOK[T any](ctx context.Context, key any) (T, bool) {
	val, ok := ctx.Value(key).(T)
	return val, ok
}
