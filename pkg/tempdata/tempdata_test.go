package tempdata_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/tempdata"
)

type memProvider struct {
	mu      sync.Mutex
	values  map[string]any
	loadErr error
	saved   map[string]any
	saves   int
}

func (p *memProvider) LoadTempData(context.Context, *http.Request) (map[string]any, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out, nil
}

func (p *memProvider) SaveTempData(_ context.Context, _ http.ResponseWriter, _ *http.Request, values map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = values
	p.saves++
	return nil
}

func newDict(p tempdata.Provider) *tempdata.Dictionary {
	return tempdata.New(httptest.NewRequest(http.MethodGet, "/", nil), p)
}

func TestDictionary_GetMarksForRemoval(t *testing.T) {
	t.Parallel()

	p := &memProvider{values: map[string]any{"Status": "Saved", "count": 2}}
	d := newDict(p)

	v, ok := d.Get("status")
	require.True(t, ok)
	assert.Equal(t, "Saved", v)

	require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
	assert.Equal(t, map[string]any{"count": 2}, p.saved)
}

func TestDictionary_PeekDoesNotMark(t *testing.T) {
	t.Parallel()

	p := &memProvider{values: map[string]any{"status": "Saved"}}
	d := newDict(p)

	v, ok := d.Peek("STATUS")
	require.True(t, ok)
	assert.Equal(t, "Saved", v)
	assert.True(t, d.ContainsKey("Status"))

	require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
	assert.Equal(t, map[string]any{"status": "Saved"}, p.saved)
}

func TestDictionary_Keep(t *testing.T) {
	t.Parallel()

	t.Run("single key", func(t *testing.T) {
		t.Parallel()

		p := &memProvider{values: map[string]any{"a": 1, "b": 2}}
		d := newDict(p)
		d.Get("a")
		d.Get("b")
		d.Keep("A")

		require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
		assert.Equal(t, map[string]any{"a": 1}, p.saved)
	})

	t.Run("all keys", func(t *testing.T) {
		t.Parallel()

		p := &memProvider{values: map[string]any{"a": 1, "b": 2}}
		d := newDict(p)
		d.Get("a")
		d.Get("b")
		d.KeepAll()

		require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, p.saved)
	})
}

func TestDictionary_Set(t *testing.T) {
	t.Parallel()

	t.Run("unread value survives", func(t *testing.T) {
		t.Parallel()

		p := &memProvider{}
		d := newDict(p)
		d.Set("Status", "Created")

		require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
		assert.Equal(t, map[string]any{"Status": "Created"}, p.saved)
	})

	t.Run("read in same request is dropped", func(t *testing.T) {
		t.Parallel()

		p := &memProvider{}
		d := newDict(p)
		d.Set("status", "Created")
		d.Get("status")

		require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
		assert.Empty(t, p.saved)
	})

	t.Run("overwrite keeps original casing", func(t *testing.T) {
		t.Parallel()

		p := &memProvider{values: map[string]any{"Status": "old"}}
		d := newDict(p)
		d.Set("STATUS", "new")

		assert.Equal(t, []string{"Status"}, d.Keys())
		v, _ := d.Peek("status")
		assert.Equal(t, "new", v)
	})
}

func TestDictionary_DeleteAndClear(t *testing.T) {
	t.Parallel()

	p := &memProvider{values: map[string]any{"a": 1, "b": 2, "c": 3}}
	d := newDict(p)

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, []string{"a", "b", "c"}, d.Keys())

	assert.True(t, d.Delete("B"))
	assert.False(t, d.Delete("missing"))
	assert.Equal(t, 2, d.Len())

	d.Clear()
	assert.Zero(t, d.Len())

	require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
	assert.Empty(t, p.saved)
	assert.Equal(t, 1, p.saves)
}

func TestDictionary_Load(t *testing.T) {
	t.Parallel()

	t.Run("untouched dictionary is not saved", func(t *testing.T) {
		t.Parallel()

		p := &memProvider{values: map[string]any{"a": 1}}
		d := newDict(p)

		require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
		assert.Zero(t, p.saves)
	})

	t.Run("load error leaves dictionary empty", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		p := &memProvider{loadErr: boom}
		d := newDict(p)

		require.ErrorIs(t, d.Load(context.Background()), boom)
		assert.ErrorIs(t, d.Err(), boom)
		assert.Zero(t, d.Len())

		d.Set("a", 1)
		require.NoError(t, d.Save(context.Background(), httptest.NewRecorder()))
		assert.Equal(t, map[string]any{"a": 1}, p.saved)
	})

	t.Run("no provider", func(t *testing.T) {
		t.Parallel()

		d := newDict(nil)
		require.ErrorIs(t, d.Load(context.Background()), tempdata.ErrNotLoaded)
		require.ErrorIs(t, d.Save(context.Background(), httptest.NewRecorder()), tempdata.ErrNotLoaded)
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, tempdata.FromContext(context.Background()))

	d := newDict(&memProvider{})
	ctx := tempdata.WithDictionary(context.Background(), d)
	assert.Same(t, d, tempdata.FromContext(ctx))
}
