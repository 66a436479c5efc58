// Package modelname composes and splits the dotted, bracketed paths that name
// a model inside a request, such as "order.lines[0].sku".
package modelname

import (
	"strconv"
	"strings"
)

// Property joins a prefix and a property name. Names starting with an indexer
// are appended without a dot.
func Property(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	case strings.HasPrefix(name, "["):
		return prefix + name
	}
	return prefix + "." + name
}

// Index appends an indexer for index to prefix.
func Index(prefix string, index int) string {
	return Key(prefix, strconv.Itoa(index))
}

// Key appends an indexer with a literal key, e.g. "dict[key0]".
func Key(prefix, key string) string {
	return prefix + "[" + key + "]"
}

// IsChild reports whether key lies strictly below prefix.
// The empty prefix contains every non-empty key.
func IsChild(prefix, key string) bool {
	if prefix == "" {
		return key != ""
	}
	if len(key) <= len(prefix) || !strings.EqualFold(key[:len(prefix)], prefix) {
		return false
	}
	c := key[len(prefix)]
	return c == '.' || c == '['
}

// IsSelfOrChild reports whether key equals prefix or lies below it.
func IsSelfOrChild(prefix, key string) bool {
	return strings.EqualFold(prefix, key) || IsChild(prefix, key)
}
