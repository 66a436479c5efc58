package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeys(t *testing.T) {
	t.Parallel()

	out, err := run(t, "keys", "order.Customer=Ada&order.Lines[0].Sku=A-1&order.Lines[1].Sku=B-2&page=2", "--prefix", "order", "-o", "json")
	require.NoError(t, err)

	var rows []keyRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []keyRow{
		{Name: "Customer", Key: "order.Customer"},
		{Name: "Lines", Key: "order.Lines"},
	}, rows)

	t.Run("indexes", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, "keys", "?order.Lines[0].Sku=A-1&order.Lines[1].Sku=B-2", "-p", "order.Lines")
		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "order.Lines[0]")
		assert.Contains(t, out, "order.Lines[1]")
	})
}

func TestContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		want   string
	}{
		{"order", "true\n"},
		{"ORDER.lines", "true\n"},
		{"order.Lines[0]", "true\n"},
		{"ord", "false\n"},
		{"", "true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, "contains", "order.Lines[0].Sku=A-1", tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestBind(t *testing.T) {
	t.Parallel()

	t.Run("valid form", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, "bind",
			"order.Customer=Ada&order.Email=ada@example.com&order.Lines[0].Sku=A-1&order.Lines[0].Qty=2&order.Tags[color]=red",
			"-o", "json")
		require.NoError(t, err)

		var got struct {
			Result string         `json:"result"`
			Model  map[string]any `json:"model"`
			Valid  bool           `json:"valid"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "Success", got.Result)
		assert.True(t, got.Valid)

		want := map[string]any{
			"Customer": "Ada",
			"Email":    "ada@example.com",
			"Lines":    []any{map[string]any{"Sku": "A-1", "Qty": float64(2)}},
			"Tags":     map[string]any{"color": "red"},
		}
		if diff := cmp.Diff(want, got.Model); diff != "" {
			t.Errorf("model mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("conversion failure", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, "bind", "order.Customer=Ada&order.Email=ada@example.com&order.Lines[0].Sku=A-1&order.Lines[0].Qty=x")
		require.NoError(t, err)
		assert.Contains(t, out, "valid:  false")
		assert.Contains(t, out, "order.Lines[0].Qty")
		assert.Contains(t, out, "The value 'x' is not valid for Qty.")
	})

	t.Run("custom name as yaml", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, "bind", "o.Customer=Ada&o.Lines[0].Qty=x", "--name", "o", "-o", "yaml")
		require.NoError(t, err)

		var got bindReport
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.False(t, got.Valid)

		var qty *entryRow
		for i := range got.Entries {
			if got.Entries[i].Key == "o.Lines[0].Qty" {
				qty = &got.Entries[i]
			}
		}
		require.NotNil(t, qty)
		assert.Equal(t, "x", qty.Attempted)
		assert.Equal(t, "invalid", qty.State)
	})
}

func TestRootErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown output", []string{"contains", "a=1", "a", "-o", "xml"}},
		{"bad log level", []string{"contains", "a=1", "a", "--log-level", "loud"}},
		{"malformed query", []string{"keys", "a=%zz"}},
		{"missing args", []string{"contains", "a=1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t, tt.args...)
			require.Error(t, err)
		})
	}
}
