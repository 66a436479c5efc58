package binder

import "github.com/dmitrymomot/modelbind/pkg/modelname"

// CreatePropertyModelName returns "prefix.name", or name alone for an empty
// prefix.
func CreatePropertyModelName(prefix, name string) string {
	return modelname.Property(prefix, name)
}

// CreateIndexModelName returns "prefix[index]".
func CreateIndexModelName(prefix, index string) string {
	return modelname.Key(prefix, index)
}
