package binder_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/binder"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// bindQuery binds a parameter of type T named name from query values.
func bindQuery[T any](t *testing.T, pb *binder.ParameterBinder, name string, values map[string][]string) (binder.Result, *binder.ActionContext) {
	t.Helper()
	return bindRequest[T](t, pb, nil, name, valueprovider.NewQuery(values))
}

func bindRequest[T any](t *testing.T, pb *binder.ParameterBinder, r *http.Request, name string, vp valueprovider.ValueProvider) (binder.Result, *binder.ActionContext) {
	t.Helper()
	ac := pb.NewActionContext(r)
	res, err := pb.Bind(context.Background(), ac, vp, metadata.ParameterFor[T](name))
	require.NoError(t, err)
	return res, ac
}

func errorsAt(ac *binder.ActionContext, key string) []string {
	return ac.ModelState.ValidationErrors().Get(key)
}
