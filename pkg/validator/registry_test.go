package validator_test

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/validator"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	rules := validator.ParseTag("required, min=3,oneof=draft sent,,-")
	assert.Equal(t, []validator.TagRule{
		{Name: "required"},
		{Name: "min", Param: "3"},
		{Name: "oneof", Param: "draft sent"},
	}, rules)
	assert.Equal(t, "min=3", rules[1].String())
	assert.Empty(t, validator.ParseTag(""))
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()

	reg := validator.NewRegistry()
	empty := ""
	name := "bob"
	zero := 0

	tests := []struct {
		name    string
		value   any
		tag     string
		invalid bool
	}{
		{"required string", "x", "required", false},
		{"required empty string", "", "required", true},
		{"required nil pointer", (*string)(nil), "required", true},
		{"required pointer to empty string", &empty, "required", true},
		{"required pointer to zero int", &zero, "required", false},
		{"required zero int", 0, "required", true},
		{"required empty slice", []int{}, "required", true},
		{"min string length", "ab", "min=3", true},
		{"max int", 7, "max=5", true},
		{"min float ok", 2.5, "min=2", false},
		{"min items", []string{"a"}, "min=2", true},
		{"max items map", map[string]int{"a": 1}, "max=1", false},
		{"len string", "abcd", "len=4", false},
		{"len slice", []int{1, 2}, "len=3", true},
		{"oneof int", 2, "oneof=1 2 3", false},
		{"oneof string", "gold", "oneof=free pro", true},
		{"email", "user@example.com", "email", false},
		{"uuid string", "nope", "uuid", true},
		{"uuid value", uuid.New(), "uuid", false},
		{"regex", "abc", `regex=^[a-z]+$`, false},
		{"nil pointer skips non required rules", (*string)(nil), "min=3,email", false},
		{"pointer is dereferenced", &name, "min=4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := reg.Validate("field", reflect.ValueOf(tt.value), validator.ParseTag(tt.tag))
			if !tt.invalid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, validator.IsValidationError(err), "got %v", err)
			assert.True(t, validator.ExtractValidationErrors(err).Has("field"))
		})
	}
}

func TestRegistry_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	reg := validator.NewRegistry()

	t.Run("unknown rule", func(t *testing.T) {
		t.Parallel()
		err := reg.Validate("f", reflect.ValueOf("x"), validator.ParseTag("shiny"))
		assert.ErrorIs(t, err, validator.ErrUnknownRule)
		assert.False(t, validator.IsValidationError(err))
	})

	t.Run("bad parameter", func(t *testing.T) {
		t.Parallel()
		err := reg.Validate("f", reflect.ValueOf("x"), validator.ParseTag("min=abc"))
		assert.ErrorIs(t, err, validator.ErrInvalidRuleParam)
	})

	t.Run("unsupported kind", func(t *testing.T) {
		t.Parallel()
		err := reg.Validate("f", reflect.ValueOf(42), validator.ParseTag("email"))
		assert.ErrorIs(t, err, validator.ErrUnsupportedKind)
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	reg := validator.NewRegistry()
	reg.Register("even", func(field string, value reflect.Value, _ string) (validator.Rule, error) {
		n := value.Int()
		return validator.Rule{
			Check: func() bool { return n%2 == 0 },
			Error: validator.ValidationError{Field: field, Message: "must be even"},
		}, nil
	})

	assert.NoError(t, reg.Validate("n", reflect.ValueOf(4), validator.ParseTag("even")))
	err := reg.Validate("n", reflect.ValueOf(3), validator.ParseTag("even"))
	assert.Equal(t, []string{"must be even"}, validator.ExtractValidationErrors(err).Get("n"))

	_, ok := validator.DefaultRegistry().Lookup("even")
	assert.False(t, ok, "registering on one registry must not leak into the default one")
}
