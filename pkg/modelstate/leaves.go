package modelstate

import (
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelname"
)

// Leaf is a reportable entry paired with the metadata that describes it.
// Metadata is nil for entries found by the secondary pass.
type Leaf struct {
	Key      string
	Metadata *metadata.ModelMetadata
	Entry    *Entry
}

// Leaves flattens the entries below prefix for display. Entries are ordered
// by walking meta: properties in declaration order, collection and dictionary
// children in the order they were recorded. Entries the walk did not reach
// follow in insertion order. Container entries, those with descendants, are
// left out.
func (d *Dictionary) Leaves(meta *metadata.ModelMetadata, prefix string) []Leaf {
	keys := d.FindKeysWithPrefix(prefix)
	if len(keys) == 0 {
		return nil
	}

	w := &leafWalker{
		d:       d,
		keys:    keys,
		emitted: make(map[string]bool, len(keys)),
	}
	if meta != nil {
		w.walk(meta, prefix)
	}
	for _, k := range keys {
		w.emit(k, nil)
	}
	return w.leaves
}

type leafWalker struct {
	d       *Dictionary
	keys    []string
	emitted map[string]bool
	leaves  []Leaf
}

func (w *leafWalker) walk(meta *metadata.ModelMetadata, key string) {
	if _, ok := w.d.lookup(key); ok {
		w.emit(key, meta)
	}

	switch {
	case meta.IsComplexType:
		for _, p := range meta.Properties() {
			child := modelname.Property(key, p.ModelName())
			if w.hasSelfOrChild(child) {
				w.walk(p, child)
			}
		}
	case meta.IsCollectionType, meta.IsDictionaryType:
		elem := meta.ElementMetadata()
		for _, child := range w.indexedChildren(key) {
			w.walk(elem, child)
		}
	}
}

func (w *leafWalker) emit(key string, meta *metadata.ModelMetadata) {
	lk := strings.ToLower(key)
	if w.emitted[lk] || w.isContainer(key) {
		return
	}
	e, ok := w.d.lookup(key)
	if !ok {
		return
	}
	w.emitted[lk] = true
	w.leaves = append(w.leaves, Leaf{Key: e.Key, Metadata: meta, Entry: e})
}

func (w *leafWalker) isContainer(key string) bool {
	for _, k := range w.keys {
		if modelname.IsChild(key, k) {
			return true
		}
	}
	return false
}

func (w *leafWalker) hasSelfOrChild(key string) bool {
	for _, k := range w.keys {
		if modelname.IsSelfOrChild(key, k) {
			return true
		}
	}
	return false
}

// indexedChildren returns the distinct "key[x]" paths below key in the order
// they were recorded.
func (w *leafWalker) indexedChildren(key string) []string {
	var children []string
	seen := make(map[string]bool)
	for _, k := range w.keys {
		if len(k) <= len(key) || !strings.EqualFold(k[:len(key)], key) || k[len(key)] != '[' {
			continue
		}
		end := strings.IndexByte(k[len(key):], ']')
		if end < 0 {
			continue
		}
		child := k[:len(key)+end+1]
		if lc := strings.ToLower(child); !seen[lc] {
			seen[lc] = true
			children = append(children, child)
		}
	}
	return children
}
