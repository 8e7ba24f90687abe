// Package config loads the campaigner runtime settings from the
// environment, after an optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"campaigner/internal/intervention"
	"campaigner/internal/schema"
)

// Config holds the process settings. Command-line flags override them.
type Config struct {
	LogLevel  string `env:"CAMPAIGNER_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"CAMPAIGNER_LOG_FORMAT" envDefault:"text"`
	// Seed fixes tether names; 0 draws a fresh seed per build.
	Seed uint64 `env:"CAMPAIGNER_SEED"`
	// Schema is an engine schema.json; empty uses the embedded classes.
	Schema  string `env:"CAMPAIGNER_SCHEMA"`
	Table   string `env:"CAMPAIGNER_TABLE"   envDefault:"ascii"`
	Workers int    `env:"CAMPAIGNER_WORKERS" envDefault:"4"`
}

// Load reads dotenv files (".env" when none is named; missing files are
// skipped) into the environment without overriding it, then parses Config.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("parse env: CAMPAIGNER_WORKERS %d must be at least 1", cfg.Workers)
	}
	return cfg, nil
}

// SchemaProvider returns the engine schema named by Schema, or the
// embedded class descriptions.
func (c Config) SchemaProvider() (schema.Provider, error) {
	if c.Schema == "" {
		return schema.Builtin()
	}
	return schema.LoadEMOD(c.Schema)
}

// Factory returns an intervention factory over SchemaProvider.
func (c Config) Factory() (*intervention.Factory, error) {
	p, err := c.SchemaProvider()
	if err != nil {
		return nil, err
	}
	return intervention.NewFactory(p), nil
}
