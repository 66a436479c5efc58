package render

import (
	"context"
	"errors"

	"github.com/a-h/templ"
)

// ErrNoComponent is returned by TemplView when it has nothing to render.
var ErrNoComponent = errors.New("render: templ view has no component")

// TemplView renders a templ component. The view context is available to the
// component through FromContext.
type TemplView struct {
	component templ.Component
	build     func(vc *ViewContext) templ.Component
}

// Templ renders c as is.
func Templ(c templ.Component) TemplView {
	return TemplView{component: c}
}

// TemplFor builds the component from the view context at render time,
// which lets it read the model and model state.
func TemplFor(build func(vc *ViewContext) templ.Component) TemplView {
	return TemplView{build: build}
}

func (v TemplView) Render(ctx context.Context, vc *ViewContext) error {
	c := v.component
	if v.build != nil {
		c = v.build(vc)
	}
	if c == nil {
		return ErrNoComponent
	}
	return c.Render(WithViewContext(ctx, vc), vc.Writer)
}
