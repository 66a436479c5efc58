// Package handler turns typed handler functions into http.HandlerFunc values
// that bind their input through the model binder.
//
// Wrap binds every request into the handler's request type R. Values come
// from the form, chi route parameters, the query string and a JSON body, in
// that order; struct tags on R choose other sources such as headers, files
// or the raw body. Conversion and validation failures do not stop the call:
// they are recorded in the request's model state, which the handler reads
// through Context.ModelState.
//
//	type EditOrder struct {
//		ID    int    `source:"path"`
//		Sku   string `validate:"required"`
//		Qty   int    `validate:"min=1"`
//		Trace string `header:"X-Trace-ID"`
//	}
//
//	func editOrder(ctx handler.Context, req EditOrder) handler.Response {
//		if !ctx.ModelState().IsValid() {
//			return handler.View(orderForm, req, handler.WithViewStatus(http.StatusUnprocessableEntity))
//		}
//		ctx.TempData().Set("status", "Order saved")
//		return handler.Redirect("/orders")
//	}
//
//	r.Post("/orders/{ID}", handler.Wrap(editOrder,
//		handler.WithParameterBinder[handler.Context, EditOrder](pb)))
//
// Configuration errors from binding, such as an unknown named binder or an
// unsupported body media type, go to the ErrorHandler instead. The default
// answers with plain text; NewErrorHandler logs and picks JSON or an error
// page view.
//
// # Responses
//
//	handler.JSON(data)                       // 200 with a data envelope
//	handler.JSONError(err)                   // error envelope, status from err
//	handler.ValidationProblem(ms)            // 422 with per-field messages
//	handler.View(view, model)                // render.View with model state
//	handler.Redirect("/next")                // 303 See Other
//	handler.Empty()                          // 204 No Content
//
// # Decorators
//
// RequireValidModel answers with a validation problem, or a custom
// response, before the handler runs when model state is invalid.
package handler
