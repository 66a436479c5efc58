package binder

import (
	"github.com/dmitrymomot/modelbind/pkg/config"
	"github.com/dmitrymomot/modelbind/pkg/modelstate"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

// Options holds the binding limits. Fields load from the environment with
// LoadOptions.
type Options struct {
	MaxRecursionDepth     int   `env:"BIND_MAX_RECURSION_DEPTH" envDefault:"32"`
	MaxModelErrors        int   `env:"BIND_MAX_MODEL_ERRORS" envDefault:"200"`
	ValidateTopLevelNodes bool  `env:"BIND_VALIDATE_TOP_LEVEL_NODES" envDefault:"true"`
	MaxCollectionSize     int   `env:"BIND_MAX_COLLECTION_SIZE" envDefault:"1024"`
	MaxJSONSize           int64 `env:"BIND_MAX_JSON_SIZE" envDefault:"1048576"`
	MaxMemory             int64 `env:"BIND_MAX_MEMORY" envDefault:"10485760"`
	StrictJSON            bool  `env:"BIND_STRICT_JSON" envDefault:"true"`
	AllowEmptyBody        bool  `env:"BIND_ALLOW_EMPTY_BODY" envDefault:"false"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxRecursionDepth:     DefaultMaxRecursionDepth,
		MaxModelErrors:        modelstate.DefaultMaxAllowedErrors,
		ValidateTopLevelNodes: true,
		MaxCollectionSize:     1024,
		MaxJSONSize:           valueprovider.DefaultMaxJSONSize,
		MaxMemory:             valueprovider.DefaultMaxMemory,
		StrictJSON:            true,
	}
}

// LoadOptions reads Options from the environment and .env file.
func LoadOptions() (Options, error) {
	var opts Options
	if err := config.Load(&opts); err != nil {
		return Options{}, err
	}
	return opts.withDefaults(), nil
}

// RequestOptions returns the limits for reading request value providers.
func (o Options) RequestOptions() valueprovider.RequestOptions {
	return valueprovider.RequestOptions{
		MaxMemory:   o.MaxMemory,
		MaxJSONSize: o.MaxJSONSize,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxRecursionDepth <= 0 {
		o.MaxRecursionDepth = d.MaxRecursionDepth
	}
	if o.MaxModelErrors <= 0 {
		o.MaxModelErrors = d.MaxModelErrors
	}
	if o.MaxJSONSize <= 0 {
		o.MaxJSONSize = d.MaxJSONSize
	}
	if o.MaxMemory <= 0 {
		o.MaxMemory = d.MaxMemory
	}
	return o
}
