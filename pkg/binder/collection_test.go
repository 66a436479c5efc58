package binder_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/binder"
)

type orderLine struct {
	Sku string `validate:"required"`
	Qty int
}

func TestCollection(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())

	tests := []struct {
		name   string
		values map[string][]string
		want   []int
	}{
		{
			name:   "zero based indices",
			values: map[string][]string{"p[0]": {"1"}, "p[1]": {"2"}},
			want:   []int{1, 2},
		},
		{
			name:   "gap stops enumeration",
			values: map[string][]string{"p[0]": {"1"}, "p[2]": {"3"}},
			want:   []int{1},
		},
		{
			name:   "explicit indices are deduplicated",
			values: map[string][]string{"p.index": {"a", "b", "a"}, "p[a]": {"1"}, "p[b]": {"2"}},
			want:   []int{1, 2},
		},
		{
			name:   "explicit index without value binds zero",
			values: map[string][]string{"p.index": {"a", "z"}, "p[a]": {"1"}},
			want:   []int{1, 0},
		},
		{
			name:   "repeated and comma separated values",
			values: map[string][]string{"p": {"1,2", "3"}},
			want:   []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, ac := bindQuery[[]int](t, pb, "p", tt.values)
			require.True(t, res.IsModelSet())
			assert.Equal(t, tt.want, res.Interface())
			assert.Equal(t, 0, ac.ModelState.ErrorCount())
		})
	}
}

func TestCollection_TopLevelEmpty(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())
	res, ac := bindQuery[[]int](t, pb, "parameter", nil)

	require.True(t, res.IsModelSet())
	got, ok := res.Interface().([]int)
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.True(t, ac.ModelState.IsValid())
}

func TestCollection_MaxSize(t *testing.T) {
	t.Parallel()

	opts := binder.DefaultOptions()
	opts.MaxCollectionSize = 2
	pb := binder.New(opts)

	res, _ := bindQuery[[]int](t, pb, "p", map[string][]string{"p": {"1", "2", "3"}})
	assert.Equal(t, []int{1, 2}, res.Interface())
}

func TestCollection_ComplexElements(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())

	t.Run("implicit indices", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[[]orderLine](t, pb, "lines", map[string][]string{
			"lines[0].Sku": {"A-1"},
			"lines[0].Qty": {"2"},
			"lines[1].Qty": {"5"},
		})
		require.True(t, res.IsModelSet())
		want := []orderLine{{Sku: "A-1", Qty: 2}, {Qty: 5}}
		if diff := cmp.Diff(want, res.Interface()); diff != "" {
			t.Errorf("bound lines mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, []string{"field is required"}, errorsAt(ac, "lines[1].Sku"))
	})

	t.Run("explicit indices keep posted keys", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[[]orderLine](t, pb, "lines", map[string][]string{
			"lines.index":    {"x", "y"},
			"lines[x].Sku":   {"A-1"},
			"lines[y].Qty":   {"1"},
			"lines[y].Extra": {"ignored"},
		})
		require.True(t, res.IsModelSet())
		assert.Len(t, res.Interface(), 2)
		assert.Equal(t, []string{"field is required"}, errorsAt(ac, "lines[y].Sku"))
		assert.Empty(t, errorsAt(ac, "lines[1].Sku"))
	})
}

func TestDictionary(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())

	tests := []struct {
		name   string
		values map[string][]string
	}{
		{
			name:   "short form",
			values: map[string][]string{"parameter[key0]": {"10"}},
		},
		{
			name:   "indexed pairs",
			values: map[string][]string{"parameter[0].Key": {"key0"}, "parameter[0].Value": {"10"}},
		},
		{
			name:   "explicit index pairs",
			values: map[string][]string{"parameter.index": {"low"}, "parameter[low].Key": {"key0"}, "parameter[low].Value": {"10"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, ac := bindQuery[map[string]int](t, pb, "parameter", tt.values)
			require.True(t, res.IsModelSet())
			assert.Equal(t, map[string]int{"key0": 10}, res.Interface())
			assert.Equal(t, 0, ac.ModelState.ErrorCount())
			assert.True(t, ac.ModelState.IsValid())
		})
	}
}

func TestDictionary_ShortFormKeyConversion(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())
	res, ac := bindQuery[map[int]string](t, pb, "ids", map[string][]string{
		"ids[1]":   {"one"},
		"ids[two]": {"2"},
	})

	require.True(t, res.IsModelSet())
	assert.Equal(t, map[int]string{1: "one"}, res.Interface())
	assert.Len(t, errorsAt(ac, "ids[two]"), 1)
}

func TestDictionary_TopLevelEmpty(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())
	res, _ := bindQuery[map[string]int](t, pb, "parameter", nil)

	require.True(t, res.IsModelSet())
	assert.Equal(t, map[string]int{}, res.Interface())
}

func TestKeyValuePair(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())

	t.Run("both sides", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[binder.KeyValuePair[int, string]](t, pb, "parameter", map[string][]string{
			"parameter.Key":   {"10"},
			"parameter.Value": {"ten"},
		})
		require.True(t, res.IsModelSet())
		assert.Equal(t, binder.KeyValuePair[int, string]{Key: 10, Value: "ten"}, res.Interface())
		assert.True(t, ac.ModelState.IsValid())
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[binder.KeyValuePair[int, string]](t, pb, "parameter", map[string][]string{
			"parameter.Value": {"ten"},
		})
		assert.True(t, res.IsFailed())
		assert.Equal(t, []string{"A value is required."}, errorsAt(ac, "parameter.Key"))
		assert.False(t, ac.ModelState.IsValid())
	})

	t.Run("nothing posted", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[binder.KeyValuePair[int, string]](t, pb, "parameter", nil)
		require.True(t, res.IsModelSet())
		assert.Equal(t, binder.KeyValuePair[int, string]{}, res.Interface())
		assert.Equal(t, 0, ac.ModelState.ErrorCount())
	})
}
