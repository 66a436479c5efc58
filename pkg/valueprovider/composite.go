package valueprovider

import "github.com/dmitrymomot/modelbind/pkg/bindingsource"

// Composite queries providers in order.
type Composite []ValueProvider

// NewComposite builds a composite, dropping nil providers.
func NewComposite(providers ...ValueProvider) Composite {
	c := make(Composite, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			c = append(c, p)
		}
	}
	return c
}

func (c Composite) ContainsPrefix(prefix string) bool {
	for _, p := range c {
		if p.ContainsPrefix(prefix) {
			return true
		}
	}
	return false
}

// GetValue returns the first non-empty result.
func (c Composite) GetValue(key string) Result {
	for _, p := range c {
		if r := p.GetValue(key); !r.IsNone() {
			return r
		}
	}
	return None
}

// GetKeysFromPrefix merges the keys of every enumerable provider.
// When two providers report the same segment the earlier provider wins.
func (c Composite) GetKeysFromPrefix(prefix string) map[string]string {
	result := make(map[string]string)
	for _, p := range c {
		kp, ok := p.(KeysProvider)
		if !ok {
			continue
		}
		for segment, full := range kp.GetKeysFromPrefix(prefix) {
			addKey(result, segment, full)
		}
	}
	return result
}

// Filter keeps providers that accept source. Providers that do not declare a
// source are kept as is. Returns nil when nothing is left.
func (c Composite) Filter(source *bindingsource.Source) ValueProvider {
	filtered := make(Composite, 0, len(c))
	for _, p := range c {
		f, ok := p.(SourceFilter)
		if !ok {
			filtered = append(filtered, p)
			continue
		}
		if r := f.Filter(source); r != nil {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
