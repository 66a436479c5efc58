package modelstate

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/metadata"
	"github.com/dmitrymomot/modelbind/pkg/modelname"
	"github.com/dmitrymomot/modelbind/pkg/validator"
)

// DefaultMaxAllowedErrors caps the errors one dictionary accepts.
const DefaultMaxAllowedErrors = 200

// ModelError is one error recorded for a field.
type ModelError struct {
	Message        string
	Err            error
	TranslationKey string
}

// Entry is the state of one field.
type Entry struct {
	Key             string
	RawValue        []string
	AttemptedValue  string
	Errors          []ModelError
	ValidationState ValidationState
}

// Dictionary holds entries by full model path. Keys compare case-insensitively
// and keep insertion order. A Dictionary belongs to one request and is not
// safe for concurrent use.
type Dictionary struct {
	entries map[string]*Entry
	order   []string

	errorCount       int
	maxAllowedErrors int
	maxErrorRecorded bool
	messages         *metadata.Messages
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithMaxAllowedErrors sets the error cap. Values below one are ignored.
func WithMaxAllowedErrors(n int) Option {
	return func(d *Dictionary) {
		if n > 0 {
			d.maxAllowedErrors = n
		}
	}
}

// WithMessages sets the messages used for generated errors.
func WithMessages(m *metadata.Messages) Option {
	return func(d *Dictionary) {
		if m != nil {
			d.messages = m
		}
	}
}

// New creates an empty dictionary.
func New(opts ...Option) *Dictionary {
	d := &Dictionary{
		entries:          make(map[string]*Entry),
		maxAllowedErrors: DefaultMaxAllowedErrors,
		messages:         metadata.DefaultMessages(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dictionary) getOrAdd(key string) *Entry {
	lk := strings.ToLower(key)
	if e, ok := d.entries[lk]; ok {
		return e
	}
	e := &Entry{Key: key}
	d.entries[lk] = e
	d.order = append(d.order, lk)
	return e
}

func (d *Dictionary) lookup(key string) (*Entry, bool) {
	e, ok := d.entries[strings.ToLower(key)]
	return e, ok
}

// SetModelValue stores the raw values and the attempted value for key.
func (d *Dictionary) SetModelValue(key string, raw []string, attempted string) {
	e := d.getOrAdd(key)
	e.RawValue = raw
	e.AttemptedValue = attempted
}

// AddModelError records msg for key and marks the entry invalid. It returns
// false once the error cap is reached; the dictionary then carries a single
// too-many-errors entry at the empty key.
func (d *Dictionary) AddModelError(key, msg string) bool {
	return d.addError(key, ModelError{Message: msg})
}

// AddError records a validation error, keeping its translation key.
func (d *Dictionary) AddError(key string, verr validator.ValidationError) bool {
	return d.addError(key, ModelError{Message: verr.Message, TranslationKey: verr.TranslationKey})
}

// AddModelException records err for key. Conversion failures (ErrFormat) are
// reported with a message naming the attempted value; other errors keep their
// own text.
func (d *Dictionary) AddModelException(key string, err error, meta *metadata.ModelMetadata) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if errors.Is(err, ErrFormat) {
		msg = d.formatMessage(key, meta)
	}
	return d.addError(key, ModelError{Message: msg, Err: err})
}

func (d *Dictionary) formatMessage(key string, meta *metadata.ModelMetadata) string {
	messages := d.messages
	if meta != nil {
		messages = meta.Messages()
	}
	attempted := ""
	hasAttempted := false
	if e, ok := d.lookup(key); ok && e.RawValue != nil {
		attempted, hasAttempted = e.AttemptedValue, true
	}

	isProperty := meta != nil && meta.Kind == metadata.KindProperty
	switch {
	case hasAttempted && isProperty:
		return messages.AttemptedValueIsInvalid(attempted, meta.GetDisplayName())
	case hasAttempted:
		return messages.NonPropertyAttemptedValueIsInvalid(attempted)
	case isProperty:
		return messages.UnknownValueIsInvalid(meta.GetDisplayName())
	}
	return messages.NonPropertyUnknownValueIsInvalid()
}

func (d *Dictionary) addError(key string, me ModelError) bool {
	if d.errorCount >= d.maxAllowedErrors-1 {
		d.ensureMaxErrorsRecorded()
		return false
	}
	e := d.getOrAdd(key)
	e.Errors = append(e.Errors, me)
	e.ValidationState = Invalid
	d.errorCount++
	return true
}

func (d *Dictionary) ensureMaxErrorsRecorded() {
	if d.maxErrorRecorded {
		return
	}
	e := d.getOrAdd("")
	e.Errors = append(e.Errors, ModelError{
		Message:        d.messages.TooManyErrors(),
		TranslationKey: "validation.too_many_errors",
	})
	e.ValidationState = Invalid
	d.errorCount++
	d.maxErrorRecorded = true
}

// HasReachedMaxErrors reports whether the error cap is reached.
func (d *Dictionary) HasReachedMaxErrors() bool {
	return d.errorCount >= d.maxAllowedErrors
}

// MaxAllowedErrors returns the error cap.
func (d *Dictionary) MaxAllowedErrors() int {
	return d.maxAllowedErrors
}

// ErrorCount returns the number of recorded errors.
func (d *Dictionary) ErrorCount() int {
	return d.errorCount
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.order)
}

// Keys returns the entry keys in insertion order.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, len(d.order))
	for _, lk := range d.order {
		keys = append(keys, d.entries[lk].Key)
	}
	return keys
}

// Entry returns the entry stored under key.
func (d *Dictionary) Entry(key string) (*Entry, bool) {
	return d.lookup(key)
}

// FindKeysWithPrefix returns the keys equal to prefix or below it, in
// insertion order.
func (d *Dictionary) FindKeysWithPrefix(prefix string) []string {
	var keys []string
	for _, lk := range d.order {
		e := d.entries[lk]
		if prefix == "" || modelname.IsSelfOrChild(prefix, e.Key) {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// GetValidationState returns the state of the entry at key only.
func (d *Dictionary) GetValidationState(key string) ValidationState {
	if e, ok := d.lookup(key); ok {
		return e.ValidationState
	}
	return Unvalidated
}

// GetFieldValidationState combines the states of key and its descendants.
// Any unvalidated entry makes the field unvalidated, otherwise any invalid
// entry makes it invalid.
func (d *Dictionary) GetFieldValidationState(key string) ValidationState {
	keys := d.FindKeysWithPrefix(key)
	if len(keys) == 0 {
		return Unvalidated
	}
	return d.combine(keys)
}

func (d *Dictionary) combine(keys []string) ValidationState {
	state := Valid
	for _, k := range keys {
		e, _ := d.lookup(k)
		switch e.ValidationState {
		case Unvalidated:
			return Unvalidated
		case Invalid:
			state = Invalid
		}
	}
	return state
}

// ValidationState combines the states of every entry. An empty dictionary is valid.
func (d *Dictionary) ValidationState() ValidationState {
	if len(d.order) == 0 {
		return Valid
	}
	return d.combine(d.Keys())
}

// IsValid reports whether every entry was validated or skipped without errors.
func (d *Dictionary) IsValid() bool {
	s := d.ValidationState()
	return s == Valid || s == Skipped
}

// MarkFieldValid marks key as valid. Invalid entries stay invalid.
func (d *Dictionary) MarkFieldValid(key string) {
	d.mark(key, Valid)
}

// MarkFieldSkipped marks key as skipped. Invalid entries stay invalid.
func (d *Dictionary) MarkFieldSkipped(key string) {
	d.mark(key, Skipped)
}

func (d *Dictionary) mark(key string, state ValidationState) {
	e := d.getOrAdd(key)
	if e.ValidationState == Invalid {
		return
	}
	e.ValidationState = state
}

// Remove deletes the entry at key.
func (d *Dictionary) Remove(key string) bool {
	lk := strings.ToLower(key)
	e, ok := d.entries[lk]
	if !ok {
		return false
	}
	d.errorCount -= len(e.Errors)
	delete(d.entries, lk)
	for i, k := range d.order {
		if k == lk {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear resets key and its descendants to unvalidated and drops their errors.
// Values are kept so the fields can be validated again.
func (d *Dictionary) Clear(key string) {
	for _, k := range d.FindKeysWithPrefix(key) {
		e, _ := d.lookup(k)
		d.errorCount -= len(e.Errors)
		e.Errors = nil
		e.ValidationState = Unvalidated
	}
}

// Merge copies values and errors from other. Errors count against the cap.
func (d *Dictionary) Merge(other *Dictionary) {
	if other == nil {
		return
	}
	for _, lk := range other.order {
		src := other.entries[lk]
		dst := d.getOrAdd(src.Key)
		if src.RawValue != nil {
			dst.RawValue = src.RawValue
			dst.AttemptedValue = src.AttemptedValue
		}
		for _, me := range src.Errors {
			d.addError(src.Key, me)
		}
		if dst.ValidationState != Invalid {
			dst.ValidationState = src.ValidationState
		}
	}
}

// ValidationErrors converts the recorded errors to the validator's error
// shape, in insertion order.
func (d *Dictionary) ValidationErrors() validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, lk := range d.order {
		e := d.entries[lk]
		for _, me := range e.Errors {
			errs.Add(validator.ValidationError{
				Field:          e.Key,
				Message:        me.Message,
				TranslationKey: me.TranslationKey,
			})
		}
	}
	return errs
}
