// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for parsing tagged structs. Every configuration
// type is parsed once and cached for the life of the process.
//
//	type Options struct {
//	    MaxRecursionDepth int `env:"BIND_MAX_RECURSION_DEPTH" envDefault:"32"`
//	}
//
//	if err := config.LoadEnv("./config/.env"); err != nil {
//	    return err
//	}
//	var opts Options
//	if err := config.Load(&opts); err != nil {
//	    return err
//	}
//
// Load reads the default .env file on first use when LoadEnv was not called.
// ResetCache clears the cache, which tests use after changing the
// environment.
//
// Errors are sentinels for errors.Is: ErrParsingConfig, ErrInvalidConfigType,
// ErrNilPointer and ErrLoadingEnvFile.
package config
