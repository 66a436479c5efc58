// Package metadata describes Go types for model binding.
//
// A Provider derives immutable ModelMetadata for types, struct fields and
// handler parameters from reflection and struct tags, and caches it for the
// life of the process. Binders and validators read everything they need to
// know about a model from its metadata: whether it is a simple value, a
// collection, a dictionary or a complex object, which properties it exposes,
// where their values come from and whether they are required.
//
// # Struct Tags
//
//	type Order struct {
//	    ID       int               `path:"id"`
//	    Customer string            `bind:"customer,required" validate:"required,max=64"`
//	    Lines    []Line            `bind:"lines"`
//	    Notes    map[string]string `bind:",readonly"`
//	    Priority int               `default:"3" display:"Order priority"`
//	    Secret   string            `bind:"-"`
//	    Coupon   *string           `convert:"keepempty"`
//	    Auditor  Auditor           `binder:"auditor"`
//	}
//
// The bind tag sets the model name used in request keys and the binding
// behavior (required, never, readonly). The source tag, or one of the
// shorthand tags query, form, path, header and file, restricts the value
// providers a field reads from.
//
// # Messages
//
// Binding error messages come from an x/text catalog. NewMessages builds the
// English defaults and accepts per-language overrides, which can be loaded
// from YAML with LoadCatalogYAML.
package metadata
