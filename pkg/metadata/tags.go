package metadata

import (
	"reflect"
	"strings"

	"github.com/dmitrymomot/modelbind/pkg/bindingsource"
	"github.com/dmitrymomot/modelbind/pkg/validator"
)

// sourceTags are shorthand tags that both name a field and pin its source.
var sourceTags = []string{"path", "query", "form", "header", "file"}

type fieldTags struct {
	name       string
	behavior   BindingBehavior
	readOnly   bool
	source     *bindingsource.Source
	binderName string
	rules      []validator.TagRule
	required   bool
	display    string
	defaultVal string
	hasDefault bool
	keepEmpty  bool
}

func parseFieldTags(tag reflect.StructTag) fieldTags {
	var ft fieldTags

	if bind, ok := tag.Lookup("bind"); ok {
		if bind == "-" {
			ft.behavior = BindingNever
		} else {
			parts := strings.Split(bind, ",")
			ft.name = strings.TrimSpace(parts[0])
			for _, opt := range parts[1:] {
				switch strings.TrimSpace(opt) {
				case "required":
					ft.behavior = BindingRequired
				case "never":
					ft.behavior = BindingNever
				case "optional":
					ft.behavior = BindingOptional
				case "readonly":
					ft.readOnly = true
				}
			}
		}
	}

	for _, name := range sourceTags {
		v, ok := tag.Lookup(name)
		if !ok {
			continue
		}
		if v == "-" {
			ft.behavior = BindingNever
			break
		}
		ft.source = bindingsource.Parse(name)
		if n := strings.TrimSpace(strings.Split(v, ",")[0]); n != "" && ft.name == "" {
			ft.name = n
		}
		break
	}

	if src, ok := tag.Lookup("source"); ok {
		if s := bindingsource.Parse(src); s != nil {
			ft.source = s
		}
	}

	ft.binderName = strings.TrimSpace(tag.Get("binder"))

	if v, ok := tag.Lookup("validate"); ok {
		ft.rules = validator.ParseTag(v)
		for _, r := range ft.rules {
			if r.Name == "required" {
				ft.required = true
			}
		}
	}

	ft.display = tag.Get("display")
	ft.defaultVal, ft.hasDefault = tag.Lookup("default")

	for _, opt := range strings.Split(tag.Get("convert"), ",") {
		if strings.TrimSpace(opt) == "keepempty" {
			ft.keepEmpty = true
		}
	}

	return ft
}
