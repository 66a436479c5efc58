package handler

import (
	"bytes"
	"net/http"

	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/render"
	"github.com/dmitrymomot/modelbind/pkg/tempdata"
)

type viewResponse struct {
	view   render.View
	model  any
	status int
	prefix string
	data   map[string]any
}

// ViewOption configures a view response.
type ViewOption func(*viewResponse)

func WithViewStatus(status int) ViewOption {
	return func(v *viewResponse) {
		v.status = status
	}
}

// WithViewData adds a loose value to the view data.
func WithViewData(key string, value any) ViewOption {
	return func(v *viewResponse) {
		if v.data == nil {
			v.data = make(map[string]any)
		}
		v.data[key] = value
	}
}

// WithFieldPrefix sets the HTML field prefix of the top-level template,
// usually the parameter name the form binds back into.
func WithFieldPrefix(prefix string) ViewOption {
	return func(v *viewResponse) {
		v.prefix = prefix
	}
}

// View renders view with model. The view sees the model state and temp data
// of the request, so a form that failed validation can show its errors and
// the attempted values. Output is buffered; a failing view writes nothing.
//
//	if !ctx.ModelState().IsValid() {
//		return handler.View(orderForm, req, handler.WithViewStatus(http.StatusUnprocessableEntity))
//	}
func View(view render.View, model any, opts ...ViewOption) Response {
	v := &viewResponse{
		view:   view,
		model:  model,
		status: http.StatusOK,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *viewResponse) Render(w http.ResponseWriter, r *http.Request) error {
	var ms *modelstate.Dictionary
	if ac := ActionContextFrom(r.Context()); ac != nil {
		ms = ac.ModelState
	}

	vd := render.NewViewData(v.model, ms)
	vd.TemplateInfo.HTMLFieldPrefix = v.prefix
	for k, val := range v.data {
		vd.Set(k, val)
	}

	var buf bytes.Buffer
	vc := &render.ViewContext{
		Writer:   &buf,
		Request:  r,
		ViewData: vd,
		TempData: tempdata.FromContext(r.Context()),
	}
	if err := v.view.Render(r.Context(), vc); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(v.status)
	_, err := buf.WriteTo(w)
	return err
}

type redirectResponse struct {
	url    string
	status int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rr.url, rr.status)
	return nil
}

// Redirect answers with 303 See Other. Pair it with temp data to show a
// message on the next page.
func Redirect(url string) Response {
	return redirectResponse{url: url, status: http.StatusSeeOther}
}

// RedirectWithStatus redirects with a custom 3xx status.
func RedirectWithStatus(url string, status int) Response {
	return redirectResponse{url: url, status: status}
}
