package handler

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/modelstate"
)

// ValidationError maps a field path to its error messages.
type ValidationError url.Values

// FromModelState collects the errors of every entry in ms. Keys keep the
// full model path, so nested fields read "order.Lines[0].Qty".
func FromModelState(ms *modelstate.Dictionary) ValidationError {
	e := make(ValidationError)
	if ms == nil {
		return e
	}
	for _, key := range ms.Keys() {
		entry, ok := ms.Entry(key)
		if !ok {
			continue
		}
		for _, me := range entry.Errors {
			msg := me.Message
			if msg == "" && me.Err != nil {
				msg = me.Err.Error()
			}
			e.Add(entry.Key, msg)
		}
	}
	return e
}

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "Validation failed"
	}

	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if messages := e[field]; len(messages) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", field, messages[0]))
		}
	}
	return "validation error: " + strings.Join(parts, ", ")
}

func NewValidationError() ValidationError {
	return make(ValidationError)
}

func (e ValidationError) Add(field, message string) {
	url.Values(e).Add(field, message)
}

// Get returns the first message for field.
func (e ValidationError) Get(field string) string {
	return url.Values(e).Get(field)
}

func (e ValidationError) Has(field string) bool {
	return len(e[field]) > 0
}

func (e ValidationError) IsEmpty() bool {
	return len(e) == 0
}
