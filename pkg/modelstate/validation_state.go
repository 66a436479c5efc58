package modelstate

import (
	"reflect"

	"github.com/dmitrymomot/modelbind/pkg/metadata"
)

// ValidationState is the validation outcome of one entry.
type ValidationState int

const (
	Unvalidated ValidationState = iota
	Invalid
	Valid
	Skipped
)

func (s ValidationState) String() string {
	switch s {
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	case Skipped:
		return "skipped"
	}
	return "unvalidated"
}

// ValidationStateEntry tells the validator how to walk one bound instance.
type ValidationStateEntry struct {
	Key      string
	Metadata *metadata.ModelMetadata
	Strategy ValidationStrategy

	// SuppressValidation skips the instance and everything below it.
	SuppressValidation bool
}

// ValidationStateDictionary maps bound instances to validation entries by
// identity. Only reference values (non-nil pointers, maps and slices) have
// an identity; other values are ignored.
type ValidationStateDictionary struct {
	entries map[identity]*ValidationStateEntry
}

type identity struct {
	typ reflect.Type
	ptr uintptr
	len int
}

func NewValidationStateDictionary() *ValidationStateDictionary {
	return &ValidationStateDictionary{entries: make(map[identity]*ValidationStateEntry)}
}

// identityOf returns the identity key of model and whether it has one.
func identityOf(model reflect.Value) (identity, bool) {
	if !model.IsValid() {
		return identity{}, false
	}
	switch model.Kind() {
	case reflect.Pointer, reflect.Map:
		if model.IsNil() {
			return identity{}, false
		}
		return identity{typ: model.Type(), ptr: model.Pointer()}, true
	case reflect.Slice:
		if model.IsNil() {
			return identity{}, false
		}
		return identity{typ: model.Type(), ptr: model.Pointer(), len: model.Len()}, true
	case reflect.Interface:
		return identityOf(model.Elem())
	}
	return identity{}, false
}

// Add records entry for model, replacing an earlier entry for the same
// instance. It reports false when model has no identity.
func (v *ValidationStateDictionary) Add(model reflect.Value, entry *ValidationStateEntry) bool {
	id, ok := identityOf(model)
	if !ok {
		return false
	}
	v.entries[id] = entry
	return true
}

// Get returns the entry recorded for model.
func (v *ValidationStateDictionary) Get(model reflect.Value) (*ValidationStateEntry, bool) {
	id, ok := identityOf(model)
	if !ok {
		return nil, false
	}
	e, ok := v.entries[id]
	return e, ok
}

// Len returns the number of recorded instances.
func (v *ValidationStateDictionary) Len() int {
	return len(v.entries)
}
