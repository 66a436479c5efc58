package binder_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/binder"
	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

type money struct {
	Cents int64
}

// moneyBinder reads "12.34" style amounts.
type moneyBinder struct{}

func (*moneyBinder) Bind(_ context.Context, bc *binder.Context) (binder.Result, error) {
	res := bc.ValueProvider.GetValue(bc.ModelName)
	if res.IsNone() {
		return binder.NotAttempted(), nil
	}
	whole, frac, _ := strings.Cut(res.First(), ".")
	v, err := binder.Convert(whole+frac, reflect.TypeFor[int64]())
	if err != nil {
		bc.ModelState.AddModelError(bc.ModelName, "bad amount")
		return binder.Failed(), nil
	}
	return binder.Success(reflect.ValueOf(money{Cents: v.Int()})), nil
}

type voucher struct {
	Code  string `binder:"upper"`
	Price money
}

type tagged struct {
	Code string `binder:"missing"`
}

var upperBinder = binder.BinderFunc(func(_ context.Context, bc *binder.Context) (binder.Result, error) {
	res := bc.ValueProvider.GetValue(bc.ModelName)
	if res.IsNone() {
		return binder.NotAttempted(), nil
	}
	return binder.Success(reflect.ValueOf(strings.ToUpper(res.First()))), nil
})

func TestFactory_Cache(t *testing.T) {
	t.Parallel()

	mp := metadata.NewProvider()
	f := binder.NewFactory(mp)
	meta := mp.ForType(reflect.TypeFor[checkout]())

	first, err := f.CreateBinder(binder.FactoryContext{Metadata: meta, CacheToken: meta})
	require.NoError(t, err)
	second, err := f.CreateBinder(binder.FactoryContext{Metadata: meta, CacheToken: meta})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestFactory_RecursiveType(t *testing.T) {
	t.Parallel()

	mp := metadata.NewProvider()
	f := binder.NewFactory(mp)

	b, err := f.CreateBinder(binder.FactoryContext{Metadata: mp.ForType(reflect.TypeFor[treeNode]())})
	require.NoError(t, err)
	require.NotNil(t, b)
}

func TestFactory_Errors(t *testing.T) {
	t.Parallel()

	t.Run("nil metadata", func(t *testing.T) {
		t.Parallel()
		_, err := binder.NewFactory(nil).CreateBinder(binder.FactoryContext{})
		require.ErrorIs(t, err, binder.ErrNilMetadata)
	})

	t.Run("binder type does not implement binder", func(t *testing.T) {
		t.Parallel()
		mp := metadata.NewProvider(metadata.WithBinderType(reflect.TypeFor[money](), reflect.TypeFor[string]()))
		_, err := binder.NewFactory(mp).CreateBinder(binder.FactoryContext{Metadata: mp.ForType(reflect.TypeFor[money]())})
		require.ErrorIs(t, err, binder.ErrInvalidBinderType)
	})

	t.Run("unknown named binder", func(t *testing.T) {
		t.Parallel()
		mp := metadata.NewProvider()
		_, err := binder.NewFactory(mp).CreateBinder(binder.FactoryContext{Metadata: mp.ForType(reflect.TypeFor[tagged]())})
		require.ErrorIs(t, err, binder.ErrUnknownBinder)
	})
}

func TestFactory_CustomBinders(t *testing.T) {
	t.Parallel()

	mp := metadata.NewProvider(metadata.WithBinderType(reflect.TypeFor[money](), reflect.TypeFor[moneyBinder]()))
	pb := binder.New(binder.DefaultOptions(),
		binder.WithMetadataProvider(mp),
		binder.WithFactoryOption(binder.WithNamedBinder("upper", upperBinder)),
	)

	res, ac := bindQuery[voucher](t, pb, "v", map[string][]string{
		"v.Code":  {"spring"},
		"v.Price": {"12.50"},
	})
	require.True(t, res.IsModelSet())
	assert.Equal(t, voucher{Code: "SPRING", Price: money{Cents: 1250}}, res.Interface())
	assert.Equal(t, 0, ac.ModelState.ErrorCount())

	_, ac = bindQuery[voucher](t, pb, "v", map[string][]string{"v.Price": {"x.y"}})
	assert.Equal(t, []string{"bad amount"}, errorsAt(ac, "v.Price"))
}

func TestFactory_RegisterBinder(t *testing.T) {
	t.Parallel()

	pb := binder.New(binder.DefaultOptions())
	pb.Factory().RegisterBinder("upper", upperBinder)

	ac := pb.NewActionContext(nil)
	vp := valueprovider.NewQuery(map[string][]string{"code": {"abc"}})
	res, err := pb.Bind(context.Background(), ac, vp, metadata.Parameter{
		Name:        "code",
		Type:        reflect.TypeFor[string](),
		BindingInfo: &metadata.BindingInfo{BinderName: "upper"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC", res.Interface())
}
