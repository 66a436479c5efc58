package modelname_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/modelbind/pkg/modelname"
)

func TestProperty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, name, want string
	}{
		{"", "Name", "Name"},
		{"order", "", "order"},
		{"order", "Name", "order.Name"},
		{"order", "[0]", "order[0]"},
		{"order.lines[0]", "Sku", "order.lines[0].Sku"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, modelname.Property(tt.prefix, tt.name))
	}
}

func TestIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lines[3]", modelname.Index("lines", 3))
	assert.Equal(t, "[0]", modelname.Index("", 0))
	assert.Equal(t, "dict[key0]", modelname.Key("dict", "key0"))
}

func TestIsChild(t *testing.T) {
	t.Parallel()

	assert.True(t, modelname.IsChild("order", "order.Name"))
	assert.True(t, modelname.IsChild("order", "ORDER[0]"))
	assert.False(t, modelname.IsChild("order", "order"))
	assert.False(t, modelname.IsChild("order", "orders"))
	assert.True(t, modelname.IsChild("", "x"))
	assert.False(t, modelname.IsChild("", ""))
	assert.True(t, modelname.IsSelfOrChild("order", "Order"))
}
