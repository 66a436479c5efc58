package valueprovider

import (
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
)

// ValueProvider is a read-only view over string-keyed request values.
type ValueProvider interface {
	// ContainsPrefix reports whether any key equals prefix or continues it
	// with '.' or '['. The empty prefix matches any non-empty provider.
	ContainsPrefix(prefix string) bool

	// GetValue returns the values stored under key, or None.
	GetValue(key string) Result
}

// KeysProvider enumerates the next path segment below a prefix.
// The returned map is keyed by the segment and holds the full key for it.
type KeysProvider interface {
	GetKeysFromPrefix(prefix string) map[string]string
}

// SourceFilter is implemented by providers that can be restricted to a binding
// source. Filter returns nil when the provider cannot serve the source.
type SourceFilter interface {
	Filter(source *bindingsource.Source) ValueProvider
}

// Result holds the raw values found for a key.
type Result struct {
	Values []string
}

// None is the result for keys that are absent.
var None = Result{}

// NewResult wraps values into a Result.
func NewResult(values ...string) Result {
	return Result{Values: values}
}

func (r Result) IsNone() bool {
	return len(r.Values) == 0
}

func (r Result) Len() int {
	return len(r.Values)
}

// First returns the first value or the empty string.
func (r Result) First() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// String joins multiple values with commas, the way they are reported as
// attempted values in model state.
func (r Result) String() string {
	return strings.Join(r.Values, ",")
}

// Empty is a provider with no values.
type Empty struct{}

func (Empty) ContainsPrefix(string) bool                 { return false }
func (Empty) GetValue(string) Result                     { return None }
func (Empty) GetKeysFromPrefix(string) map[string]string { return map[string]string{} }
func (Empty) Filter(*bindingsource.Source) ValueProvider { return nil }

// Filter restricts vp to source. A nil or greedy source leaves vp unchanged;
// a provider that cannot serve the source yields Empty.
func Filter(vp ValueProvider, source *bindingsource.Source) ValueProvider {
	if vp == nil {
		return Empty{}
	}
	if source == nil || source.Greedy {
		return vp
	}
	f, ok := vp.(SourceFilter)
	if !ok {
		return vp
	}
	if filtered := f.Filter(source); filtered != nil {
		return filtered
	}
	return Empty{}
}

// KeysFromPrefix calls GetKeysFromPrefix when vp supports enumeration.
func KeysFromPrefix(vp ValueProvider, prefix string) map[string]string {
	if kp, ok := vp.(KeysProvider); ok {
		return kp.GetKeysFromPrefix(prefix)
	}
	return map[string]string{}
}
