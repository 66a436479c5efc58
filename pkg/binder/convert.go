package binder

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/modelbind/pkg/modelstate"
)

var (
	durationType        = reflect.TypeFor[time.Duration]()
	timeType            = reflect.TypeFor[time.Time]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ConversionError reports a string that could not be converted to the model
// type. It matches modelstate.ErrFormat so model state records the
// "value is not valid" message for it.
type ConversionError struct {
	Value string
	Type  reflect.Type
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", e.Value, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() []error {
	return []error{modelstate.ErrFormat, e.Err}
}

// ConverterFunc converts a raw request value to a model value.
type ConverterFunc func(value string) (any, error)

// Converter turns request strings into typed values. Custom converters take
// precedence over the built-in ones.
type Converter struct {
	mu     sync.RWMutex
	custom map[reflect.Type]ConverterFunc
}

// NewConverter returns a converter with only the built-in conversions.
func NewConverter() *Converter {
	return &Converter{custom: make(map[reflect.Type]ConverterFunc)}
}

// Register installs fn as the converter for t.
func (c *Converter) Register(t reflect.Type, fn ConverterFunc) {
	c.mu.Lock()
	c.custom[t] = fn
	c.mu.Unlock()
}

// Has reports whether a custom converter is registered for t.
func (c *Converter) Has(t reflect.Type) bool {
	c.mu.RLock()
	_, ok := c.custom[t]
	c.mu.RUnlock()
	return ok
}

var defaultConverter = NewConverter()

// Convert converts value to t with the built-in conversions.
func Convert(value string, t reflect.Type) (reflect.Value, error) {
	return defaultConverter.Convert(value, t)
}

// Convert converts value to t. Pointer types are allocated.
func (c *Converter) Convert(value string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		if c.Has(t) {
			return c.convertCustom(value, t)
		}
		inner, err := c.Convert(value, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	if c.Has(t) {
		return c.convertCustom(value, t)
	}

	switch {
	case t == durationType:
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return reflect.Value{}, convErr(value, t, err)
		}
		return reflect.ValueOf(d), nil
	case t == timeType:
		return parseTime(value)
	case reflect.PointerTo(t).Implements(textUnmarshalerType):
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value)); err != nil {
			return reflect.Value{}, convErr(value, t, err)
		}
		return p.Elem(), nil
	}

	v := reflect.New(t).Elem()
	s := strings.TrimSpace(value)
	switch t.Kind() {
	case reflect.String:
		v.SetString(value)
	case reflect.Bool:
		b, err := parseBool(s)
		if err != nil {
			return reflect.Value{}, convErr(value, t, err)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, convErr(value, t, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, convErr(value, t, err)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, convErr(value, t, err)
		}
		v.SetFloat(f)
	case reflect.Complex64, reflect.Complex128:
		x, err := strconv.ParseComplex(s, t.Bits())
		if err != nil {
			return reflect.Value{}, convErr(value, t, err)
		}
		v.SetComplex(x)
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedConvert, t)
	}
	return v, nil
}

func (c *Converter) convertCustom(value string, t reflect.Type) (reflect.Value, error) {
	c.mu.RLock()
	fn := c.custom[t]
	c.mu.RUnlock()

	out, err := fn(value)
	if err != nil {
		return reflect.Value{}, convErr(value, t, err)
	}
	v, err := coerce(t, reflect.ValueOf(out))
	if err != nil {
		return reflect.Value{}, convErr(value, t, err)
	}
	return v, nil
}

// CanConvert reports whether strings convert to t.
func (c *Converter) CanConvert(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		if c.Has(t) {
			return true
		}
		t = t.Elem()
	}
	if c.Has(t) || t == durationType || t == timeType || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func convErr(value string, t reflect.Type, err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		err = ne.Err
	}
	return &ConversionError{Value: value, Type: t, Err: err}
}

// parseBool accepts the HTML checkbox spellings on top of strconv.ParseBool.
func parseBool(s string) (bool, error) {
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	switch strings.ToLower(s) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

func parseTime(value string) (reflect.Value, error) {
	s := strings.TrimSpace(value)
	var lastErr error
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return reflect.ValueOf(ts), nil
		}
		lastErr = err
	}
	return reflect.Value{}, convErr(value, timeType, lastErr)
}

// coerce adapts v to t, allocating or dereferencing pointers and converting
// between named and unnamed types of the same kind.
func coerce(t reflect.Type, v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}
	vt := v.Type()
	switch {
	case vt == t:
		return v, nil
	case vt.AssignableTo(t):
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil
	case t.Kind() == reflect.Pointer && vt.Kind() != reflect.Pointer:
		inner, err := coerce(t.Elem(), v)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	case vt.Kind() == reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(t), nil
		}
		return coerce(t, v.Elem())
	case vt.Kind() == t.Kind() && vt.ConvertibleTo(t):
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", vt, t)
}
