package tempdata_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/tempdata"
)

func TestBSONSerializer_RoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	at := time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)

	values := map[string]any{
		"message": "Saved",
		"ok":      true,
		"count":   42,
		"big":     int64(1) << 40,
		"ratio":   1.5,
		"at":      at,
		"id":      id,
		"tags":    []string{"a", "b"},
		"ids":     []int{3, 1, 2},
		"counts":  map[string]int{"x": 1, "y": 2},
		"nothing": nil,
	}

	var s tempdata.BSONSerializer
	data, err := s.Serialize(values)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := s.Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, "Saved", got["message"])
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, 42, got["count"])
	assert.Equal(t, int64(1)<<40, got["big"])
	assert.Equal(t, 1.5, got["ratio"])
	assert.Equal(t, id, got["id"])
	assert.Equal(t, []string{"a", "b"}, got["tags"])
	assert.Equal(t, []int{3, 1, 2}, got["ids"])
	assert.Equal(t, map[string]int{"x": 1, "y": 2}, got["counts"])

	gotAt, ok := got["at"].(time.Time)
	require.True(t, ok)
	assert.True(t, at.Equal(gotAt))
	assert.Equal(t, time.UTC, gotAt.Location())

	v, ok := got["nothing"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestBSONSerializer_Empty(t *testing.T) {
	t.Parallel()

	var s tempdata.BSONSerializer
	data, err := s.Serialize(nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	got, err := s.Deserialize(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBSONSerializer_Collections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{"empty slice", []string{}},
		{"nil slice", []int(nil)},
		{"empty map", map[string]int{}},
		{"mixed width int64", []int64{1, 1 << 40}},
		{"int32", []int32{7, -7}},
		{"int map", map[string]int64{"small": 2, "big": 1 << 40}},
		{"times", []time.Time{time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}},
		{"uuids", map[string]uuid.UUID{"id": uuid.New()}},
		{"loose slice", []any{"a", 1, nil, true}},
		{"loose map", map[string]any{"n": 1, "s": "x", "none": nil}},
		{"empty loose map", map[string]any{}},
	}

	var s tempdata.BSONSerializer
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := s.Serialize(map[string]any{"v": tt.value})
			require.NoError(t, err)

			got, err := s.Deserialize(data)
			require.NoError(t, err)

			want := tt.value
			if rv := reflect.ValueOf(want); rv.Kind() == reflect.Slice && rv.IsNil() {
				want = reflect.MakeSlice(rv.Type(), 0, 0).Interface()
			}
			assert.Equal(t, want, got["v"])

			// Decoded values must serialize again.
			_, err = s.Serialize(got)
			require.NoError(t, err)
		})
	}
}

func TestBSONSerializer_Unsupported(t *testing.T) {
	t.Parallel()

	type point struct{ X, Y int }

	tests := []struct {
		name  string
		value any
	}{
		{"struct", point{1, 2}},
		{"pointer", &point{}},
		{"bytes", []byte("raw")},
		{"int keys", map[int]string{1: "a"}},
		{"nested slice", [][]string{{"a"}}},
		{"float32", float32(1)},
		{"struct in loose slice", []any{"a", point{}}},
		{"slice in loose map", map[string]any{"tags": []string{"a"}}},
	}

	var s tempdata.BSONSerializer
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := s.Serialize(map[string]any{"v": tt.value})
			require.ErrorIs(t, err, tempdata.ErrUnsupportedType)
		})
	}
}

func TestBSONSerializer_Malformed(t *testing.T) {
	t.Parallel()

	var s tempdata.BSONSerializer
	_, err := s.Deserialize([]byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, tempdata.ErrDecode)
}

func TestCanSerialize(t *testing.T) {
	t.Parallel()

	assert.True(t, tempdata.CanSerialize(reflect.TypeFor[string]()))
	assert.True(t, tempdata.CanSerialize(reflect.TypeFor[[]uuid.UUID]()))
	assert.True(t, tempdata.CanSerialize(reflect.TypeFor[map[string]time.Time]()))
	assert.False(t, tempdata.CanSerialize(reflect.TypeFor[uint]()))
	assert.False(t, tempdata.CanSerialize(reflect.TypeFor[map[string][]string]()))
}
