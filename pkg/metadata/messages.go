package metadata

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Message keys used in the catalog and in YAML overrides.
const (
	KeyMissingBindRequiredValue           = "missing_bind_required_value"
	KeyMissingKeyOrValue                  = "missing_key_or_value"
	KeyMissingRequestBodyRequiredValue    = "missing_request_body_required_value"
	KeyValueMustNotBeNull                 = "value_must_not_be_null"
	KeyAttemptedValueIsInvalid            = "attempted_value_is_invalid"
	KeyNonPropertyAttemptedValueIsInvalid = "non_property_attempted_value_is_invalid"
	KeyUnknownValueIsInvalid              = "unknown_value_is_invalid"
	KeyNonPropertyUnknownValueIsInvalid   = "non_property_unknown_value_is_invalid"
	KeyValueIsInvalid                     = "value_is_invalid"
	KeyValueMustBeANumber                 = "value_must_be_a_number"
	KeyNonPropertyValueMustBeANumber      = "non_property_value_must_be_a_number"
	KeyTooManyErrors                      = "too_many_errors"
)

var defaultMessages = map[string]string{
	KeyMissingBindRequiredValue:           "A value for the '%s' parameter or property was not provided.",
	KeyMissingKeyOrValue:                  "A value is required.",
	KeyMissingRequestBodyRequiredValue:    "A non-empty request body is required.",
	KeyValueMustNotBeNull:                 "The value '%s' is invalid.",
	KeyAttemptedValueIsInvalid:            "The value '%s' is not valid for %s.",
	KeyNonPropertyAttemptedValueIsInvalid: "The value '%s' is not valid.",
	KeyUnknownValueIsInvalid:              "The supplied value is invalid for %s.",
	KeyNonPropertyUnknownValueIsInvalid:   "The supplied value is invalid.",
	KeyValueIsInvalid:                     "The value '%s' is invalid.",
	KeyValueMustBeANumber:                 "The field %s must be a number.",
	KeyNonPropertyValueMustBeANumber:      "The field must be a number.",
	KeyTooManyErrors:                      "The maximum number of allowed model errors has been reached.",
}

// Messages formats model binding error messages for one language.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// CatalogOption adds translations to the message catalog.
type CatalogOption func(translations) error

type translations map[language.Tag]map[string]string

// WithTranslations sets messages for tag. Keys are the Key* constants; values
// are fmt format strings taking the same arguments as the English default.
func WithTranslations(tag language.Tag, messages map[string]string) CatalogOption {
	return func(t translations) error {
		if t[tag] == nil {
			t[tag] = make(map[string]string, len(messages))
		}
		for key, msg := range messages {
			t[tag][key] = msg
		}
		return nil
	}
}

// LoadCatalogYAML reads translations keyed by language, then message key:
//
//	de:
//	  missing_key_or_value: "Ein Wert ist erforderlich."
func LoadCatalogYAML(r io.Reader) (CatalogOption, error) {
	var data map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return func(translations) error { return nil }, nil
		}
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	opts := make([]CatalogOption, 0, len(data))
	for lang, messages := range data {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("language %q: %w", lang, err))
		}
		opts = append(opts, WithTranslations(tag, messages))
	}

	return func(t translations) error {
		for _, opt := range opts {
			if err := opt(t); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// NewMessages builds messages for tag. English defaults are always present
// and fill keys a translation does not provide.
func NewMessages(tag language.Tag, opts ...CatalogOption) (*Messages, error) {
	t := translations{language.English: make(map[string]string, len(defaultMessages))}
	for key, msg := range defaultMessages {
		t[language.English][key] = msg
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for lang, messages := range t {
		for key, def := range defaultMessages {
			msg, ok := messages[key]
			if !ok {
				msg = def
			}
			if err := b.SetString(lang, key, msg); err != nil {
				return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidCatalog, lang, key, err)
			}
		}
	}

	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}, nil
}

var (
	defaultOnce sync.Once
	defaultMsgs *Messages
)

// DefaultMessages returns the English messages.
func DefaultMessages() *Messages {
	defaultOnce.Do(func() {
		m, err := NewMessages(language.English)
		if err != nil {
			panic(err)
		}
		defaultMsgs = m
	})
	return defaultMsgs
}

// Language returns the language the messages are formatted in.
func (m *Messages) Language() language.Tag {
	return m.tag
}

// Format formats the message stored under key.
func (m *Messages) Format(key string, args ...any) string {
	return m.printer.Sprintf(key, args...)
}

func (m *Messages) MissingBindRequiredValue(name string) string {
	return m.Format(KeyMissingBindRequiredValue, name)
}

func (m *Messages) MissingKeyOrValue() string {
	return m.Format(KeyMissingKeyOrValue)
}

func (m *Messages) MissingRequestBodyRequiredValue() string {
	return m.Format(KeyMissingRequestBodyRequiredValue)
}

func (m *Messages) ValueMustNotBeNull(value string) string {
	return m.Format(KeyValueMustNotBeNull, value)
}

func (m *Messages) AttemptedValueIsInvalid(value, name string) string {
	return m.Format(KeyAttemptedValueIsInvalid, value, name)
}

func (m *Messages) NonPropertyAttemptedValueIsInvalid(value string) string {
	return m.Format(KeyNonPropertyAttemptedValueIsInvalid, value)
}

func (m *Messages) UnknownValueIsInvalid(name string) string {
	return m.Format(KeyUnknownValueIsInvalid, name)
}

func (m *Messages) NonPropertyUnknownValueIsInvalid() string {
	return m.Format(KeyNonPropertyUnknownValueIsInvalid)
}

func (m *Messages) ValueIsInvalid(value string) string {
	return m.Format(KeyValueIsInvalid, value)
}

func (m *Messages) ValueMustBeANumber(name string) string {
	return m.Format(KeyValueMustBeANumber, name)
}

func (m *Messages) NonPropertyValueMustBeANumber() string {
	return m.Format(KeyNonPropertyValueMustBeANumber)
}

func (m *Messages) TooManyErrors() string {
	return m.Format(KeyTooManyErrors)
}
