package binder

import (
	"context"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// headerBinder binds a simple value or a collection of simple values from
// the request header named by the field name.
type headerBinder struct {
	inner Binder
}

func (b *headerBinder) Bind(ctx context.Context, bc *Context) (Result, error) {
	if bc.Request == nil {
		return NotAttempted(), nil
	}
	name := bc.FieldName
	if name == "" {
		name = bc.ModelName
	}
	values := bc.Request.Header.Values(name)

	if len(values) == 0 && !bc.IsTopLevelObject {
		return NotAttempted(), nil
	}

	posted := make(map[string][]string, 1)
	if len(values) > 0 {
		posted[bc.ModelName] = values
	}
	saved := bc.ValueProvider
	bc.ValueProvider = valueprovider.NewValues(bindingsource.Header, posted)
	defer func() { bc.ValueProvider = saved }()

	return b.inner.Bind(ctx, bc)
}
