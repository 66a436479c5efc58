package valueprovider

import (
	"sort"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
)

// Values serves a map of raw request values, such as url.Values.
// Keys are matched case-insensitively. Values of keys that differ only in case
// are merged in byte order of the original keys.
type Values struct {
	source   *bindingsource.Source
	values   map[string][]string
	prefixes *PrefixContainer
}

// NewValues creates a provider over values that declares source.
// A nil source makes the provider visible to every binding source.
func NewValues(source *bindingsource.Source, values map[string][]string) *Values {
	if source.IsComposite() {
		panic("valueprovider: a provider must declare a plain binding source")
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := make(map[string][]string, len(values))
	for _, k := range keys {
		lk := strings.ToLower(k)
		merged[lk] = append(merged[lk], values[k]...)
	}
	return &Values{
		source:   source,
		values:   merged,
		prefixes: NewPrefixContainer(keys),
	}
}

// NewQuery creates a provider for query string values.
func NewQuery(values map[string][]string) *Values {
	return NewValues(bindingsource.Query, values)
}

// NewForm creates a provider for form values.
func NewForm(values map[string][]string) *Values {
	return NewValues(bindingsource.Form, values)
}

// NewRoute creates a provider for route values.
func NewRoute(values map[string]string) *Values {
	m := make(map[string][]string, len(values))
	for k, v := range values {
		m[k] = []string{v}
	}
	return NewValues(bindingsource.Path, m)
}

// Source returns the declared binding source.
func (v *Values) Source() *bindingsource.Source {
	return v.source
}

func (v *Values) ContainsPrefix(prefix string) bool {
	return v.prefixes.ContainsPrefix(prefix)
}

func (v *Values) GetValue(key string) Result {
	vs, ok := v.values[strings.ToLower(key)]
	if !ok || len(vs) == 0 {
		return None
	}
	return Result{Values: vs}
}

func (v *Values) GetKeysFromPrefix(prefix string) map[string]string {
	return v.prefixes.GetKeysFromPrefix(prefix)
}

// Filter returns v when source accepts data from the declared source.
func (v *Values) Filter(source *bindingsource.Source) ValueProvider {
	if v.source == nil || source.CanAcceptDataFrom(v.source) {
		return v
	}
	return nil
}
