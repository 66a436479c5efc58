package render

import (
	"context"
	"io"
	"net/http"

	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/tempdata"
)

// View renders a response body. Binding never looks inside a view.
type View interface {
	Render(ctx context.Context, vc *ViewContext) error
}

// ViewFunc adapts a function to View.
type ViewFunc func(ctx context.Context, vc *ViewContext) error

func (f ViewFunc) Render(ctx context.Context, vc *ViewContext) error {
	return f(ctx, vc)
}

// ViewData is the model and the loose values handed to a view.
type ViewData struct {
	Model        any
	ModelState   *modelstate.Dictionary
	TemplateInfo *TemplateInfo

	values map[string]any
}

// NewViewData returns view data for model. A nil ms is replaced with an
// empty dictionary.
func NewViewData(model any, ms *modelstate.Dictionary) *ViewData {
	if ms == nil {
		ms = modelstate.New()
	}
	return &ViewData{
		Model:        model,
		ModelState:   ms,
		TemplateInfo: NewTemplateInfo(""),
		values:       make(map[string]any),
	}
}

// Set stores a loose value.
func (d *ViewData) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	d.values[key] = value
}

// Get returns a loose value.
func (d *ViewData) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Nested returns view data for a child model. Model state and loose values
// are shared; template info is copied and its prefix extended by name.
func (d *ViewData) Nested(model any, name string) *ViewData {
	ti := d.TemplateInfo.Nested()
	ti.HTMLFieldPrefix = ti.FullHTMLFieldName(name)
	return &ViewData{
		Model:        model,
		ModelState:   d.ModelState,
		TemplateInfo: ti,
		values:       d.values,
	}
}

// ViewContext is everything a view may read while rendering.
type ViewContext struct {
	Writer   io.Writer
	Request  *http.Request
	ViewData *ViewData
	TempData *tempdata.Dictionary
}

// Errors returns the model state messages for a field of the current
// template, addressed relative to its prefix.
func (vc *ViewContext) Errors(name string) []string {
	if vc.ViewData == nil || vc.ViewData.ModelState == nil {
		return nil
	}
	key := vc.ViewData.TemplateInfo.FullHTMLFieldName(name)
	e, ok := vc.ViewData.ModelState.Entry(key)
	if !ok || len(e.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, me := range e.Errors {
		msgs = append(msgs, me.Message)
	}
	return msgs
}

// AttemptedValue returns the value posted for a field of the current
// template, for redisplaying a form that failed validation.
func (vc *ViewContext) AttemptedValue(name string) string {
	if vc.ViewData == nil || vc.ViewData.ModelState == nil {
		return ""
	}
	e, ok := vc.ViewData.ModelState.Entry(vc.ViewData.TemplateInfo.FullHTMLFieldName(name))
	if !ok {
		return ""
	}
	return e.AttemptedValue
}

type ctxKey struct{}

// WithViewContext returns a copy of ctx carrying vc.
func WithViewContext(ctx context.Context, vc *ViewContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, vc)
}

// FromContext returns the view context stored by WithViewContext, or nil.
func FromContext(ctx context.Context) *ViewContext {
	vc, _ := ctx.Value(ctxKey{}).(*ViewContext)
	return vc
}
