package bindingsource

import "strings"

// Source describes where a value for a model or property is expected to come from.
// Value providers declare the source they serve; binders use it to filter which
// providers may supply a given model.
type Source struct {
	ID          string
	DisplayName string

	// Greedy sources bind the whole model themselves (request body, services)
	// and never participate in prefix lookups against value providers.
	Greedy bool

	// FromRequest is false for sources that do not read request data (services).
	FromRequest bool

	members []*Source
}

var (
	Body     = &Source{ID: "Body", DisplayName: "Body", Greedy: true, FromRequest: true}
	Custom   = &Source{ID: "Custom", DisplayName: "Custom", Greedy: true, FromRequest: true}
	Form     = &Source{ID: "Form", DisplayName: "Form", FromRequest: true}
	FormFile = &Source{ID: "FormFile", DisplayName: "FormFile", Greedy: true, FromRequest: true}
	Header   = &Source{ID: "Header", DisplayName: "Header", Greedy: true, FromRequest: true}
	Path     = &Source{ID: "Path", DisplayName: "Path", FromRequest: true}
	Query    = &Source{ID: "Query", DisplayName: "Query", FromRequest: true}
	Services = &Source{ID: "Services", DisplayName: "Services", Greedy: true}
	Special  = &Source{ID: "Special", DisplayName: "Special", Greedy: true}

	// JSON is a JSON request body projected into flat keys (a.b[0].c).
	// Unlike Body it takes part in prefix lookups.
	JSON = &Source{ID: "JSON", DisplayName: "JSON", FromRequest: true}

	// ModelBinding is the composite of every non-greedy request source.
	ModelBinding = NewComposite("ModelBinding", "ModelBinding", Form, Path, Query, JSON)
)

// NewComposite builds a source that accepts data from any of its members.
// Members must be non-greedy request sources.
func NewComposite(id, displayName string, members ...*Source) *Source {
	for _, m := range members {
		if m.Greedy || !m.FromRequest || m.IsComposite() {
			panic("bindingsource: composite members must be plain, non-greedy request sources")
		}
	}
	return &Source{
		ID:          id,
		DisplayName: displayName,
		FromRequest: true,
		members:     members,
	}
}

// IsComposite reports whether the source aggregates other sources.
func (s *Source) IsComposite() bool {
	return s != nil && len(s.members) > 0
}

// Members returns the sources aggregated by a composite source.
func (s *Source) Members() []*Source {
	if s == nil {
		return nil
	}
	return s.members
}

// CanAcceptDataFrom reports whether a model declaring s may read values
// produced by a provider that declares other.
func (s *Source) CanAcceptDataFrom(other *Source) bool {
	if s == nil || other == nil {
		return false
	}
	if other.IsComposite() {
		panic("bindingsource: value providers must declare a plain source")
	}
	if s == other {
		return true
	}
	for _, m := range s.members {
		if m == other {
			return true
		}
	}
	return false
}

func (s *Source) String() string {
	if s == nil {
		return "<none>"
	}
	return s.DisplayName
}

// Parse maps a struct tag value to a predefined source.
// Unknown names return nil.
func Parse(name string) *Source {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "body":
		return Body
	case "json":
		return JSON
	case "custom":
		return Custom
	case "form":
		return Form
	case "file", "formfile":
		return FormFile
	case "header":
		return Header
	case "path", "route":
		return Path
	case "query":
		return Query
	case "services":
		return Services
	case "special":
		return Special
	case "modelbinding":
		return ModelBinding
	}
	return nil
}
