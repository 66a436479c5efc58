package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TagRule is one entry of a validate struct tag, e.g. "min=3".
type TagRule struct {
	Name  string
	Param string
}

func (r TagRule) String() string {
	if r.Param == "" {
		return r.Name
	}
	return r.Name + "=" + r.Param
}

// ParseTag splits a validate tag into rules.
//
//	`validate:"required,min=3,oneof=draft sent"`
func ParseTag(tag string) []TagRule {
	var rules []TagRule
	for part := range strings.SplitSeq(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "-" {
			continue
		}
		name, param, _ := strings.Cut(part, "=")
		rules = append(rules, TagRule{Name: strings.TrimSpace(name), Param: strings.TrimSpace(param)})
	}
	return rules
}

// RuleFunc builds the rule named by a tag for one value.
// value is never an invalid reflect.Value; pointers are dereferenced except
// for the required rule, which sees nil pointers.
type RuleFunc func(field string, value reflect.Value, param string) (Rule, error)

// Registry maps validate tag names to rule builders.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleFunc

	regexCache sync.Map
}

// NewRegistry creates a registry with the built-in rules:
// required, min, max, len, oneof, email, uuid and regex.
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[string]RuleFunc)}
	r.Register("required", requiredRule)
	r.Register("min", boundRule(true))
	r.Register("max", boundRule(false))
	r.Register("len", lenRule)
	r.Register("oneof", oneOfRule)
	r.Register("email", stringRule(ValidEmail))
	r.Register("uuid", uuidRule)
	r.Register("regex", r.regexRule)
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry with the built-in rules.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces the rule builder for name.
func (r *Registry) Register(name string, fn RuleFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[name] = fn
}

// Lookup returns the rule builder registered for name.
func (r *Registry) Lookup(name string) (RuleFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.rules[name]
	return fn, ok
}

// Validate applies tag rules to value. Failed checks are returned as
// ValidationErrors; unknown rules and bad parameters are returned as plain
// errors. Rules other than required are skipped for nil values.
func (r *Registry) Validate(field string, value reflect.Value, rules []TagRule) error {
	built := make([]Rule, 0, len(rules))
	deref, isNil := indirect(value)

	for _, tr := range rules {
		fn, ok := r.Lookup(tr.Name)
		if !ok {
			return fmt.Errorf("%w: %q on %s", ErrUnknownRule, tr.Name, field)
		}
		target := deref
		if tr.Name == "required" {
			target = value
		} else if isNil {
			continue
		}
		rule, err := fn(field, target, tr.Param)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		built = append(built, rule)
	}
	return Apply(built...)
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return v, true
		}
		v = v.Elem()
	}
	return v, !v.IsValid()
}

func requiredRule(field string, value reflect.Value, _ string) (Rule, error) {
	return Rule{
		Check: func() bool {
			v, isNil := indirect(value)
			if isNil {
				return false
			}
			switch v.Kind() {
			case reflect.String:
				return strings.TrimSpace(v.String()) != ""
			case reflect.Slice, reflect.Map, reflect.Array:
				return v.Len() > 0
			}
			// Non-nil pointers to zero scalars count as provided.
			if value.Kind() == reflect.Pointer {
				return true
			}
			return !v.IsZero()
		},
		Error: requiredError(field),
	}, nil
}

func boundRule(isMin bool) RuleFunc {
	return func(field string, value reflect.Value, param string) (Rule, error) {
		bound, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRuleParam, param)
		}
		switch value.Kind() {
		case reflect.String:
			if isMin {
				return MinLen(field, value.String(), int(bound)), nil
			}
			return MaxLen(field, value.String(), int(bound)), nil
		case reflect.Slice, reflect.Map, reflect.Array:
			n := float64(value.Len())
			if isMin {
				rule := MinNum(field, n, bound)
				rule.Error.Message = fmt.Sprintf("must contain at least %v items", bound)
				rule.Error.TranslationKey = "validation.min_items"
				return rule, nil
			}
			rule := MaxNum(field, n, bound)
			rule.Error.Message = fmt.Sprintf("must contain at most %v items", bound)
			rule.Error.TranslationKey = "validation.max_items"
			return rule, nil
		}
		n, ok := toFloat(value)
		if !ok {
			return Rule{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, value.Kind())
		}
		if isMin {
			return MinNum(field, n, bound), nil
		}
		return MaxNum(field, n, bound), nil
	}
}

func lenRule(field string, value reflect.Value, param string) (Rule, error) {
	exact, err := strconv.Atoi(param)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRuleParam, param)
	}
	switch value.Kind() {
	case reflect.String:
		return Len(field, value.String(), exact), nil
	case reflect.Slice, reflect.Map, reflect.Array:
		rule := Len(field, "", exact)
		n := value.Len()
		rule.Check = func() bool { return n == exact }
		rule.Error.Message = fmt.Sprintf("must contain exactly %d items", exact)
		return rule, nil
	}
	return Rule{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, value.Kind())
}

func oneOfRule(field string, value reflect.Value, param string) (Rule, error) {
	options := strings.Fields(param)
	if len(options) == 0 {
		return Rule{}, fmt.Errorf("%w: oneof needs at least one option", ErrInvalidRuleParam)
	}
	return OneOf(field, fmt.Sprint(value.Interface()), options), nil
}

func stringRule(fn func(field, value string) Rule) RuleFunc {
	return func(field string, value reflect.Value, _ string) (Rule, error) {
		if value.Kind() != reflect.String {
			return Rule{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, value.Kind())
		}
		return fn(field, value.String()), nil
	}
}

var uuidType = reflect.TypeFor[uuid.UUID]()

func uuidRule(field string, value reflect.Value, _ string) (Rule, error) {
	switch {
	case value.Type() == uuidType:
		return NonNilUUID(field, value.Interface().(uuid.UUID)), nil
	case value.Kind() == reflect.String:
		return ValidUUID(field, value.String()), nil
	}
	return Rule{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, value.Kind())
}

func (r *Registry) regexRule(field string, value reflect.Value, param string) (Rule, error) {
	if value.Kind() != reflect.String {
		return Rule{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, value.Kind())
	}
	re, err := r.compile(param)
	if err != nil {
		return Rule{}, errors.Join(ErrInvalidRuleParam, err)
	}
	return MatchesRegex(field, value.String(), re, ""), nil
}

func (r *Registry) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := r.regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	r.regexCache.Store(pattern, re)
	return re, nil
}

func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}
