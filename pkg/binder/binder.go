package binder

import "context"

// Binder binds the model described by bc. Per-field problems go to
// bc.ModelState; the returned error is reserved for configuration errors
// and request failures such as cancellation.
type Binder interface {
	Bind(ctx context.Context, bc *Context) (Result, error)
}

// BinderFunc adapts a function to the Binder interface.
type BinderFunc func(ctx context.Context, bc *Context) (Result, error)

func (f BinderFunc) Bind(ctx context.Context, bc *Context) (Result, error) {
	return f(ctx, bc)
}
