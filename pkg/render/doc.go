// Package render is the view side of a request: a View interface, the data
// handed to it and the template bookkeeping nested views share.
//
// TemplateInfo carries the HTML field prefix of the current template, so a
// child form renders names like "Order.Lines[0].Sku" that bind back into
// the same graph, and the set of models already being rendered, so a
// self-referencing model stops instead of recursing forever.
//
// TemplView adapts github.com/a-h/templ components:
//
//	view := render.TemplFor(func(vc *render.ViewContext) templ.Component {
//		return pages.OrderForm(vc.ViewData.Model.(*Order))
//	})
package render
