package tempdata

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Serializer converts temp data values to bytes and back.
type Serializer interface {
	Serialize(values map[string]any) ([]byte, error)
	Deserialize(data []byte) (map[string]any, error)
}

var (
	timeType = reflect.TypeFor[time.Time]()
	uuidType = reflect.TypeFor[uuid.UUID]()
)

// BSONSerializer stores temp data as one BSON document.
//
// Supported values are string, bool, int, int32, int64, float64, time.Time
// and uuid.UUID, slices of those and maps from string to those. []any and
// map[string]any are accepted when every element is nil or one of the simple
// types. Collections are stored as a {t, v} subdocument where t names the
// element type, so they decode to the exact slice or map type, empty ones
// included. Scalar integers come back as int when they fit in 32 bits and as
// int64 otherwise. Times are truncated to milliseconds and returned in UTC.
type BSONSerializer struct{}

// Serialize encodes values with keys in sorted order. Unsupported values
// fail with ErrUnsupportedType. Empty input encodes to nil.
func (BSONSerializer) Serialize(values map[string]any) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		v, err := encodeValue(values[k])
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrUnsupportedType, k, err)
		}
		doc = append(doc, bson.E{Key: k, Value: v})
	}
	return bson.Marshal(doc)
}

// Deserialize decodes a document written by Serialize.
func (BSONSerializer) Deserialize(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if len(data) == 0 {
		return values, nil
	}

	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	for _, e := range doc {
		v, err := decodeValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrDecode, e.Key, err)
		}
		values[e.Key] = v
	}
	return values, nil
}

// CanSerialize reports whether values of type t can be stored.
func CanSerialize(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice:
		return isSimple(t.Elem())
	case reflect.Map:
		return t.Key() == reflect.TypeFor[string]() && isSimple(t.Elem())
	}
	return isSimple(t)
}

func isSimple(t reflect.Type) bool {
	switch t {
	case timeType, uuidType:
		return true
	case reflect.TypeFor[string](), reflect.TypeFor[bool](),
		reflect.TypeFor[int](), reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[float64]():
		return true
	}
	return false
}

var (
	anyType  = reflect.TypeFor[any]()
	elemTags = map[string]reflect.Type{
		"string":  reflect.TypeFor[string](),
		"bool":    reflect.TypeFor[bool](),
		"int":     reflect.TypeFor[int](),
		"int32":   reflect.TypeFor[int32](),
		"int64":   reflect.TypeFor[int64](),
		"float64": reflect.TypeFor[float64](),
		"time":    timeType,
		"uuid":    uuidType,
		"any":     anyType,
	}
)

func elemTag(t reflect.Type) string {
	for tag, et := range elemTags {
		if et == t {
			return tag
		}
	}
	return ""
}

func encodeValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	t := rv.Type()
	if !CanSerialize(t) && !isLoose(t) {
		return nil, fmt.Errorf("%s", t)
	}

	switch t.Kind() {
	case reflect.Slice:
		arr := make(bson.A, rv.Len())
		for i := range rv.Len() {
			item, err := encodeElem(rv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("%s index %d: %w", t, i, err)
			}
			arr[i] = item
		}
		return bson.D{{Key: "t", Value: elemTag(t.Elem())}, {Key: "v", Value: arr}}, nil
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		doc := make(bson.D, 0, len(keys))
		for _, k := range keys {
			item, err := encodeElem(rv.MapIndex(reflect.ValueOf(k)))
			if err != nil {
				return nil, fmt.Errorf("%s key %q: %w", t, k, err)
			}
			doc = append(doc, bson.E{Key: k, Value: item})
		}
		return bson.D{{Key: "t", Value: elemTag(t.Elem())}, {Key: "v", Value: doc}}, nil
	}
	return encodeSimple(v), nil
}

// isLoose reports whether t is []any or map[string]any. Their elements are
// checked one by one.
func isLoose(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem() == anyType
	case reflect.Map:
		return t.Key() == reflect.TypeFor[string]() && t.Elem() == anyType
	}
	return false
}

func encodeElem(rv reflect.Value) (any, error) {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
		if !isSimple(rv.Type()) {
			return nil, fmt.Errorf("%s", rv.Type())
		}
	}
	return encodeSimple(rv.Interface()), nil
}

func encodeSimple(v any) any {
	switch x := v.(type) {
	case uuid.UUID:
		return bson.Binary{Subtype: bson.TypeBinaryUUID, Data: x[:]}
	case time.Time:
		return bson.NewDateTimeFromTime(x)
	}
	return v
}

func decodeValue(v any) (any, error) {
	doc, ok := v.(bson.D)
	if !ok {
		return decodeSimple(v)
	}

	var (
		tag     string
		payload any
	)
	for _, e := range doc {
		switch e.Key {
		case "t":
			tag, _ = e.Value.(string)
		case "v":
			payload = e.Value
		}
	}
	et, ok := elemTags[tag]
	if !ok {
		return nil, fmt.Errorf("collection element type %q", tag)
	}

	switch x := payload.(type) {
	case bson.A:
		out := reflect.MakeSlice(reflect.SliceOf(et), len(x), len(x))
		for i, item := range x {
			d, err := decodeElem(item, et)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out.Index(i).Set(d)
		}
		return out.Interface(), nil
	case bson.D:
		out := reflect.MakeMapWithSize(reflect.MapOf(reflect.TypeFor[string](), et), len(x))
		for _, e := range x {
			d, err := decodeElem(e.Value, et)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", e.Key, err)
			}
			out.SetMapIndex(reflect.ValueOf(e.Key), d)
		}
		return out.Interface(), nil
	}
	return nil, fmt.Errorf("collection payload %T", payload)
}

// decodeElem decodes one collection element into et. Integers take the
// declared width; elements of []any and map[string]any decode like scalars.
func decodeElem(v any, et reflect.Type) (reflect.Value, error) {
	d, err := decodeSimple(v)
	if err != nil {
		return reflect.Value{}, err
	}
	if et == anyType {
		if d == nil {
			return reflect.Zero(anyType), nil
		}
		return reflect.ValueOf(d), nil
	}
	if d == nil {
		return reflect.Value{}, fmt.Errorf("nil element for %s", et)
	}

	rv := reflect.ValueOf(d)
	switch {
	case rv.Type() == et:
		return rv, nil
	case isInt(rv.Kind()) && isInt(et.Kind()):
		return rv.Convert(et), nil
	}
	return reflect.Value{}, fmt.Errorf("%T for %s", d, et)
}

func isInt(k reflect.Kind) bool {
	return k == reflect.Int || k == reflect.Int32 || k == reflect.Int64
}

func decodeSimple(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, float64:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return int(x), nil
		}
		return x, nil
	case bson.DateTime:
		return x.Time().UTC(), nil
	case bson.Binary:
		if x.Subtype != bson.TypeBinaryUUID {
			return nil, fmt.Errorf("binary subtype %#x", x.Subtype)
		}
		id, err := uuid.FromBytes(x.Data)
		if err != nil {
			return nil, err
		}
		return id, nil
	}
	return nil, fmt.Errorf("unexpected %T", v)
}
