package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/modelbind/pkg/config"
	"github.com/dmitrymomot/modelbind/pkg/logger"
	"github.com/dmitrymomot/modelbind/pkg/valueprovider"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type app struct {
	out    io.Writer
	log    *slog.Logger
	output string
	level  string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, log: logger.Discard()}

	cmd := &cobra.Command{
		Use:   "bindprobe",
		Short: "Inspect how query strings bind to models",
		Long: `bindprobe feeds a query string to the model binder and prints what it sees.

Logging is configured with LOG_LEVEL, LOG_FORMAT, APP_ENV and SERVICE_NAME,
binding limits with the BIND_* variables. A .env file in the working
directory is loaded when present. Logs go to stderr.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "output format (text, json, yaml)")
	cmd.PersistentFlags().StringVar(&a.level, "log-level", "", "log level (debug, info, warn, error), overrides LOG_LEVEL")

	cmd.AddCommand(newKeysCmd(a), newContainsCmd(a), newBindCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch a.output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("invalid output format %q: must be one of %s, %s, %s", a.output, outputText, outputJSON, outputYAML)
	}

	var cfg logger.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if a.level != "" {
		cfg.Level = a.level
	}
	opts, err := logger.FromConfig(cfg)
	if err != nil {
		return err
	}
	a.log = logger.New(append(opts, logger.WithOutput(cmd.ErrOrStderr()))...)
	return nil
}

// print writes v as JSON or YAML, or calls text for the text format.
func (a *app) print(v any, text func(io.Writer) error) error {
	switch a.output {
	case outputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		err := enc.Encode(v)
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return text(a.out)
}

// queryProvider parses a raw query string, with or without the leading "?".
func queryProvider(raw string) (*valueprovider.Values, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	return valueprovider.NewQuery(values), nil
}
