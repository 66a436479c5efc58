package render

import (
	"reflect"
	"strings"
)

type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

// TemplateInfo tracks the field prefix and the models already rendered in a
// chain of nested templates. A template that renders a model it is already
// inside of would recurse forever; Visited lets it stop.
type TemplateInfo struct {
	HTMLFieldPrefix     string
	FormattedModelValue any

	visited map[visitKey]struct{}
	depth   int
}

// NewTemplateInfo returns an empty TemplateInfo with the given prefix.
func NewTemplateInfo(prefix string) *TemplateInfo {
	return &TemplateInfo{
		HTMLFieldPrefix: prefix,
		visited:         make(map[visitKey]struct{}),
	}
}

// Nested returns a copy of t for a child template. The copy shares nothing
// with t, so models visited by the child are not seen by siblings.
func (t *TemplateInfo) Nested() *TemplateInfo {
	c := &TemplateInfo{
		HTMLFieldPrefix:     t.HTMLFieldPrefix,
		FormattedModelValue: t.FormattedModelValue,
		visited:             make(map[visitKey]struct{}, len(t.visited)),
		depth:               t.depth,
	}
	for k := range t.visited {
		c.visited[k] = struct{}{}
	}
	return c
}

// FullHTMLFieldName joins the prefix and name the way model names are built
// during binding: "prefix.name", or "prefix[0]" when name is an indexer.
func (t *TemplateInfo) FullHTMLFieldName(name string) string {
	switch {
	case t.HTMLFieldPrefix == "":
		return name
	case name == "":
		return t.HTMLFieldPrefix
	case strings.HasPrefix(name, "["):
		return t.HTMLFieldPrefix + name
	}
	return t.HTMLFieldPrefix + "." + name
}

// HTMLFieldID turns the full field name into a value usable as an element id.
func (t *TemplateInfo) HTMLFieldID(name string) string {
	return fieldIDReplacer.Replace(t.FullHTMLFieldName(name))
}

var fieldIDReplacer = strings.NewReplacer(".", "_", "[", "_", "]", "_")

// keyFor identifies model by reference, or by declaredType when model is
// nil. Values without reference identity have no key.
func keyFor(model any, declaredType reflect.Type) (visitKey, bool) {
	if model == nil {
		if declaredType == nil {
			return visitKey{}, false
		}
		return visitKey{typ: declaredType}, true
	}
	rv := reflect.ValueOf(model)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return visitKey{typ: rv.Type()}, true
		}
		return visitKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	}
	return visitKey{}, false
}

// Visited reports whether model, or declaredType for a nil model, was added
// earlier in the template chain.
func (t *TemplateInfo) Visited(model any, declaredType reflect.Type) bool {
	k, ok := keyFor(model, declaredType)
	if !ok {
		return false
	}
	_, seen := t.visited[k]
	return seen
}

// AddVisited records model as being rendered. Every call deepens the chain;
// it reports false when model was already recorded.
func (t *TemplateInfo) AddVisited(model any, declaredType reflect.Type) bool {
	if t.visited == nil {
		t.visited = make(map[visitKey]struct{})
	}
	t.depth++
	k, ok := keyFor(model, declaredType)
	if !ok {
		return true
	}
	if _, seen := t.visited[k]; seen {
		return false
	}
	t.visited[k] = struct{}{}
	return true
}

// VisitedCount is the depth of the template chain.
func (t *TemplateInfo) VisitedCount() int {
	return t.depth
}
