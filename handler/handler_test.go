package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/handler"
	"github.com/dmitrymomot/modelbind/pkg/binder"
	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
	"github.com/dmitrymomot/modelbind/pkg/cookie"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/render"
	"github.com/dmitrymomot/modelbind/pkg/tempdata"
)

type createOrder struct {
	Sku string `validate:"required"`
	Qty int
}

type editOrder struct {
	ID  int    `source:"path"`
	Sku string `validate:"required"`
}

type payload struct {
	Name string `json:"name"`
}

func echo(ctx handler.Context, req createOrder) handler.Response {
	return handler.JSON(map[string]any{
		"sku":   req.Sku,
		"qty":   req.Qty,
		"valid": ctx.ModelState().IsValid(),
	})
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got handler.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	data, ok := got.Data.(map[string]any)
	require.True(t, ok, "data is %T", got.Data)
	return data
}

func TestWrap_BindsQuery(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(echo)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/orders?sku=A-1&qty=3", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"sku": "A-1", "qty": float64(3), "valid": true}, decodeData(t, w))
}

func TestWrap_InvalidInputReachesHandler(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(echo)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/orders?sku=A-1&qty=many", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, false, data["valid"])
	assert.Equal(t, float64(0), data["qty"])
}

func TestWrap_ParameterName(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())
	h := handler.Wrap(echo,
		handler.WithParameterBinder[handler.Context, createOrder](pb),
		handler.WithParameterName[handler.Context, createOrder]("order"),
	)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/?order.sku=B-2&sku=ignored", nil))
	assert.Equal(t, "B-2", decodeData(t, w)["sku"])
}

func TestRequireValidModel(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(echo,
		handler.WithDecorators(handler.RequireValidModel[handler.Context, createOrder](nil)),
	)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/orders?qty=many", nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var got handler.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Error)
	assert.Equal(t, "validation_error", got.Error.Code)
	assert.Equal(t, []string{"The value 'many' is not valid for Qty."}, got.Error.Details["Qty"])
	assert.Equal(t, []string{"field is required"}, got.Error.Details["Sku"])

	t.Run("custom response", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(echo,
			handler.WithDecorators(handler.RequireValidModel(func(ctx handler.Context, req createOrder) handler.Response {
				return handler.EmptyWithStatus(http.StatusBadRequest)
			})),
		)
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/orders?qty=many", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWrap_RouteAndForm(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Post("/orders/{ID}", handler.Wrap(func(ctx handler.Context, req editOrder) handler.Response {
		return handler.JSON(map[string]any{"id": req.ID, "sku": req.Sku})
	}))

	form := url.Values{"Sku": {"C-3"}, "ID": {"99"}}
	req := httptest.NewRequest(http.MethodPost, "/orders/7", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"id": float64(7), "sku": "C-3"}, decodeData(t, w))
}

func TestWrap_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported body media type", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(func(ctx handler.Context, req payload) handler.Response {
			return handler.JSON(req)
		}, handler.WithBindingInfo[handler.Context, payload](&metadata.BindingInfo{BindingSource: bindingsource.Body}))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=x"))
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		h(w, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("body", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(func(ctx handler.Context, req payload) handler.Response {
			return handler.JSON(req)
		}, handler.WithBindingInfo[handler.Context, payload](&metadata.BindingInfo{BindingSource: bindingsource.Body}))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"name": "Ada"}, decodeData(t, w))
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(func(ctx handler.Context, req createOrder) handler.Response { return nil })
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()

		var got error
		h := handler.Wrap(func(ctx handler.Context, req createOrder) handler.Response { return nil },
			handler.WithErrorHandler[handler.Context, createOrder](func(ctx handler.Context, err error) {
				got = err
				ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
			}),
		)
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.ErrorIs(t, got, handler.ErrNilResponse)
	})
}

var orderForm = render.ViewFunc(func(ctx context.Context, vc *render.ViewContext) error {
	ti := vc.ViewData.TemplateInfo
	_, err := fmt.Fprintf(vc.Writer, `<input name=%q value=%q>%s`,
		ti.FullHTMLFieldName("Qty"), vc.AttemptedValue("Qty"), strings.Join(vc.Errors("Qty"), ";"))
	return err
})

func TestView_RedisplaysInvalidForm(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(func(ctx handler.Context, req createOrder) handler.Response {
		if !ctx.ModelState().IsValid() {
			return handler.View(orderForm, req, handler.WithViewStatus(http.StatusUnprocessableEntity))
		}
		return handler.Redirect("/orders")
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/?sku=A&qty=lots", nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `<input name="Qty" value="lots">The value 'lots' is not valid for Qty.`, w.Body.String())

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/?sku=A&qty=2", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/orders", w.Header().Get("Location"))
}

func TestView_FailingViewWritesNothing(t *testing.T) {
	t.Parallel()

	failing := render.ViewFunc(func(ctx context.Context, vc *render.ViewContext) error {
		_, _ = vc.Writer.Write([]byte("partial"))
		return assert.AnError
	})

	w := httptest.NewRecorder()
	err := handler.View(failing, nil).Render(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, w.Body.String())
}

func TestWrap_TempData(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{strings.Repeat("k", 32)})
	require.NoError(t, err)
	p, err := tempdata.NewCookieProvider(m)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(tempdata.Middleware(p, nil))
	r.Post("/orders", handler.Wrap(func(ctx handler.Context, req createOrder) handler.Response {
		ctx.TempData().Set("status", "Created "+req.Sku)
		return handler.Redirect("/orders")
	}))
	r.Get("/orders", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		msg, _ := ctx.TempData().Get("status")
		return handler.JSON(msg)
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders?sku=Z-9", nil))
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got handler.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Created Z-9", got.Data)
}

func TestContextValue(t *testing.T) {
	t.Parallel()

	key := handler.NewContextKey("user")
	assert.Equal(t, "user", key.String())

	ctx := context.WithValue(context.Background(), key, 42)
	assert.Equal(t, 42, handler.ContextValue[int](ctx, key))
	assert.Empty(t, handler.ContextValue[string](ctx, key))

	_, ok := handler.ContextValueOK[string](ctx, key)
	assert.False(t, ok)

	assert.Nil(t, handler.ActionContextFrom(ctx))
	c := handler.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, c.ModelState())
	assert.Nil(t, c.TempData())
}
