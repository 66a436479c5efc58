package binder_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/binder"
	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

type contact struct {
	Name string
	Age  int
}

type numbers struct {
	Age   int
	Score *int
	Nick  *string
	Title string
}

type pageQuery struct {
	Page     int    `default:"1"`
	Size     int    `default:"20"`
	Internal string `bind:"-"`
	Sort     string
}

type signup struct {
	Email string `bind:"email,required"`
	Plan  string
}

type shipping struct {
	City string
	Zip  string
}

type checkout struct {
	Name string
	Ship *shipping
	Bill shipping
}

type treeNode struct {
	Name string
	Next *treeNode
}

type settings struct {
	Theme string
	Flags map[string]bool `bind:",readonly"`
}

type recordingValidator struct {
	prefixes []string
}

func (r *recordingValidator) Validate(_ context.Context, _ *modelstate.Dictionary, _ *modelstate.ValidationStateDictionary, prefix string, _ any) error {
	r.prefixes = append(r.prefixes, prefix)
	return nil
}

func TestParameterBinder_Prefix(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())

	t.Run("parameter name when present", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[contact](t, pb, "contact", map[string][]string{
			"contact.Name": {"Ann"},
			"contact.Age":  {"30"},
		})
		require.True(t, res.IsModelSet())
		assert.Equal(t, contact{Name: "Ann", Age: 30}, res.Interface())
		assert.True(t, ac.ModelState.IsValid())
	})

	t.Run("empty prefix fallback", func(t *testing.T) {
		t.Parallel()
		res, _ := bindQuery[contact](t, pb, "contact", map[string][]string{"Name": {"Ann"}})
		assert.Equal(t, contact{Name: "Ann"}, res.Interface())
	})

	t.Run("explicit model name", func(t *testing.T) {
		t.Parallel()
		ac := pb.NewActionContext(nil)
		vp := valueprovider.NewQuery(map[string][]string{"c.Name": {"Bo"}, "contact.Name": {"Ann"}})
		res, err := pb.Bind(context.Background(), ac, vp, metadata.Parameter{
			Name:        "contact",
			Type:        reflect.TypeFor[contact](),
			BindingInfo: &metadata.BindingInfo{BinderModelName: "c"},
		})
		require.NoError(t, err)
		assert.Equal(t, contact{Name: "Bo"}, res.Interface())
	})

	t.Run("prefix only counts in the binding source", func(t *testing.T) {
		t.Parallel()
		ac := pb.NewActionContext(nil)
		vp := valueprovider.NewComposite(
			valueprovider.NewForm(map[string][]string{"p.Name": {"from-form"}}),
			valueprovider.NewQuery(map[string][]string{"Name": {"from-query"}}),
		)
		res, err := pb.Bind(context.Background(), ac, vp, metadata.Parameter{
			Name:        "p",
			Type:        reflect.TypeFor[contact](),
			BindingInfo: &metadata.BindingInfo{BindingSource: bindingsource.Query},
		})
		require.NoError(t, err)
		require.True(t, res.IsModelSet())
		assert.Equal(t, contact{Name: "from-query"}, res.Interface())
	})
}

func TestParameterBinder_Conversion(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())

	t.Run("invalid number", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[numbers](t, pb, "n", map[string][]string{"Age": {"abc"}})
		require.True(t, res.IsModelSet())
		assert.Equal(t, []string{"The value 'abc' is not valid for Age."}, errorsAt(ac, "Age"))
		assert.False(t, ac.ModelState.IsValid())
	})

	t.Run("empty strings", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[numbers](t, pb, "n", map[string][]string{
			"Age":   {""},
			"Score": {""},
			"Nick":  {""},
			"Title": {""},
		})
		require.True(t, res.IsModelSet())
		got := res.Interface().(numbers)
		assert.Nil(t, got.Score)
		assert.Nil(t, got.Nick)
		assert.Equal(t, "", got.Title)
		assert.Equal(t, []string{"The value '' is invalid."}, errorsAt(ac, "Age"))
		assert.Empty(t, errorsAt(ac, "Score"))
	})

	t.Run("top level simple value", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[int](t, pb, "id", map[string][]string{"id": {"abc"}})
		assert.True(t, res.IsFailed())
		assert.Equal(t, []string{"The value 'abc' is not valid."}, errorsAt(ac, "id"))
	})
}

func TestParameterBinder_Properties(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())

	t.Run("defaults and bind never", func(t *testing.T) {
		t.Parallel()
		res, _ := bindQuery[pageQuery](t, pb, "q", map[string][]string{
			"Size":     {"50"},
			"Internal": {"x"},
		})
		assert.Equal(t, pageQuery{Page: 1, Size: 50}, res.Interface())
	})

	t.Run("bind required property", func(t *testing.T) {
		t.Parallel()
		res, ac := bindQuery[signup](t, pb, "s", map[string][]string{"Plan": {"pro"}})
		require.True(t, res.IsModelSet())
		assert.Equal(t, []string{"A value for the 'email' parameter or property was not provided."}, errorsAt(ac, "email"))
	})

	t.Run("nested structs without data", func(t *testing.T) {
		t.Parallel()
		res, _ := bindQuery[checkout](t, pb, "c", map[string][]string{"Name": {"A"}})
		assert.Equal(t, checkout{Name: "A"}, res.Interface())
	})

	t.Run("nested structs with data", func(t *testing.T) {
		t.Parallel()
		res, _ := bindQuery[checkout](t, pb, "c", map[string][]string{
			"Ship.City": {"Riga"},
			"Bill.Zip":  {"LV-1010"},
		})
		assert.Equal(t, checkout{Ship: &shipping{City: "Riga"}, Bill: shipping{Zip: "LV-1010"}}, res.Interface())
	})

	t.Run("recursive type", func(t *testing.T) {
		t.Parallel()
		res, _ := bindQuery[treeNode](t, pb, "n", map[string][]string{
			"Name":           {"a"},
			"Next.Name":      {"b"},
			"Next.Next.Name": {"c"},
		})
		got := res.Interface().(treeNode)
		require.NotNil(t, got.Next)
		require.NotNil(t, got.Next.Next)
		assert.Equal(t, "c", got.Next.Next.Name)
		assert.Nil(t, got.Next.Next.Next)
	})
}

func TestParameterBinder_TopLevelEnforcement(t *testing.T) {
	t.Parallel()

	required := metadata.Parameter{
		Name:        "id",
		Type:        reflect.TypeFor[int](),
		BindingInfo: &metadata.BindingInfo{BindingBehavior: metadata.BindingRequired},
	}

	t.Run("bind required parameter", func(t *testing.T) {
		t.Parallel()
		pb := binder.New(binder.DefaultOptions())
		ac := pb.NewActionContext(nil)
		res, err := pb.Bind(context.Background(), ac, valueprovider.Empty{}, required)
		require.NoError(t, err)
		assert.True(t, res.IsNotAttempted())
		assert.Equal(t, []string{"A value for the 'id' parameter or property was not provided."}, errorsAt(ac, "id"))
	})

	t.Run("required parameter", func(t *testing.T) {
		t.Parallel()
		pb := binder.New(binder.DefaultOptions())
		ac := pb.NewActionContext(nil)
		_, err := pb.Bind(context.Background(), ac, valueprovider.Empty{}, metadata.Parameter{
			Name:        "id",
			Type:        reflect.TypeFor[*int](),
			BindingInfo: &metadata.BindingInfo{IsRequired: true},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"field is required"}, errorsAt(ac, "id"))
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		opts := binder.DefaultOptions()
		opts.ValidateTopLevelNodes = false
		pb := binder.New(opts)
		ac := pb.NewActionContext(nil)
		_, err := pb.Bind(context.Background(), ac, valueprovider.Empty{}, required)
		require.NoError(t, err)
		assert.Equal(t, 0, ac.ModelState.ErrorCount())
	})

	t.Run("legacy validator", func(t *testing.T) {
		t.Parallel()
		rv := &recordingValidator{}
		pb := binder.New(binder.DefaultOptions(), binder.WithLegacyValidator(rv))

		ac := pb.NewActionContext(nil)
		_, err := pb.Bind(context.Background(), ac, valueprovider.Empty{}, required)
		require.NoError(t, err)
		assert.Equal(t, 0, ac.ModelState.ErrorCount())
		assert.Empty(t, rv.prefixes)

		_, err = pb.Bind(context.Background(), ac, valueprovider.NewQuery(map[string][]string{"id": {"5"}}), required)
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, rv.prefixes)
	})

	t.Run("validation disabled", func(t *testing.T) {
		t.Parallel()
		pb := binder.New(binder.DefaultOptions(), binder.WithValidator(nil))
		res, ac := bindQuery[orderLine](t, pb, "line", map[string][]string{"Qty": {"1"}})
		require.True(t, res.IsModelSet())
		assert.Equal(t, 0, ac.ModelState.ErrorCount())
	})
}

func TestParameterBinder_UpdateModel(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())

	t.Run("self reference is bound once", func(t *testing.T) {
		t.Parallel()
		n := &treeNode{Name: "root"}
		n.Next = n

		vp := valueprovider.NewForm(map[string][]string{"Name": {"x"}, "Next.Name": {"y"}})
		ok, err := pb.UpdateModel(context.Background(), pb.NewActionContext(nil), vp, n, "")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "x", n.Name)
		assert.Same(t, n, n.Next)
	})

	t.Run("read-only map is merged", func(t *testing.T) {
		t.Parallel()
		s := &settings{Flags: map[string]bool{"beta": true}}
		flags := s.Flags

		vp := valueprovider.NewForm(map[string][]string{"Theme": {"dark"}, "Flags[alpha]": {"on"}})
		ok, err := pb.UpdateModel(context.Background(), pb.NewActionContext(nil), vp, s, "")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "dark", s.Theme)
		assert.Equal(t, map[string]bool{"beta": true, "alpha": true}, s.Flags)
		assert.Equal(t, reflect.ValueOf(flags).Pointer(), reflect.ValueOf(s.Flags).Pointer())
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()
		c := &contact{Name: "Ann", Age: 30}
		vp := valueprovider.NewForm(map[string][]string{"person.Age": {"31"}})
		ok, err := pb.UpdateModel(context.Background(), pb.NewActionContext(nil), vp, c, "person")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, contact{Name: "Ann", Age: 31}, *c)
	})

	t.Run("invalid model", func(t *testing.T) {
		t.Parallel()
		var nilContact *contact
		for _, model := range []any{contact{}, nilContact, nil} {
			_, err := pb.UpdateModel(context.Background(), pb.NewActionContext(nil), valueprovider.Empty{}, model, "")
			require.ErrorIs(t, err, binder.ErrInvalidModel)
		}
	})
}

func TestParameterBinder_MaxRecursionDepth(t *testing.T) {
	t.Parallel()

	opts := binder.DefaultOptions()
	opts.MaxRecursionDepth = 3
	pb := binder.New(opts)

	ac := pb.NewActionContext(nil)
	vp := valueprovider.NewQuery(map[string][]string{"Next.Next.Next.Next.Name": {"z"}})
	_, err := pb.Bind(context.Background(), ac, vp, metadata.ParameterFor[treeNode]("n"))
	require.ErrorIs(t, err, binder.ErrMaxDepthExceeded)
}
