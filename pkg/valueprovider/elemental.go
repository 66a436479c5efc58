package valueprovider

import "strings"

// Elemental serves exactly one key. The collection binder uses it to bind each
// value of a multi-valued entry through the element binder.
type Elemental struct {
	key   string
	value string
}

func NewElemental(key, value string) *Elemental {
	return &Elemental{key: key, value: value}
}

func (e *Elemental) ContainsPrefix(prefix string) bool {
	return NewPrefixContainer([]string{e.key}).ContainsPrefix(prefix)
}

func (e *Elemental) GetValue(key string) Result {
	if strings.EqualFold(key, e.key) {
		return NewResult(e.value)
	}
	return None
}
