package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// configCache stores one parsed copy per configuration type.
type configCache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	cache = &configCache{values: make(map[reflect.Type]any)}

	envMu     sync.Mutex
	envLoaded bool
)

// LoadEnv loads the given .env files into the process environment.
// Variables already set are not overridden, and earlier files win over later
// ones. Without paths the default .env file is loaded if it exists.
func LoadEnv(paths ...string) error {
	envMu.Lock()
	defer envMu.Unlock()
	envLoaded = true

	if len(paths) == 0 {
		// The default file is optional.
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("failed to load env files: %v", err))
	}
}

func loadDefaultEnv() {
	envMu.Lock()
	defer envMu.Unlock()
	if !envLoaded {
		envLoaded = true
		_ = godotenv.Load()
	}
}

// Load parses environment variables into v. Each configuration type is
// parsed once; later calls are served from the cache.
//
//	var opts binder.Options
//	if err := config.Load(&opts); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDefaultEnv()

	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s", ErrInvalidConfigType, t)
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cached, ok := cache.values[t]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache.values[t] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ResetCache drops every cached configuration, so the next Load parses the
// environment again.
func ResetCache() {
	cache.mu.Lock()
	cache.values = make(map[reflect.Type]any)
	cache.mu.Unlock()
}
