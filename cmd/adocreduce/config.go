package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/reduce"
)

const configFileName = "adocreduce.toml"

// projectConfig mirrors adocreduce.toml:
//
//	[attributes]
//	product = "Widget"
//
//	[reduce]
//	safe_mode = "safe"
//	preserve_conditionals = false
//	include_root = "shared"
//	placeholders = true
//	ignore_missing = false
type projectConfig struct {
	Attributes map[string]string `toml:"attributes"`
	Reduce     reduceConfig      `toml:"reduce"`
}

type reduceConfig struct {
	SafeMode             string `toml:"safe_mode"`
	PreserveConditionals bool   `toml:"preserve_conditionals"`
	IncludeRoot          string `toml:"include_root"`
	Placeholders         bool   `toml:"placeholders"`
	IgnoreMissing        bool   `toml:"ignore_missing"`
}

// apply folds the config into engine options. Relative include roots are
// resolved against the config file's directory by loadProjectConfig.
func (c projectConfig) apply(opts reduce.Options) reduce.Options {
	if len(c.Attributes) > 0 {
		if opts.Attributes == nil {
			opts.Attributes = make(map[string]string, len(c.Attributes))
		}
		for name, value := range c.Attributes {
			opts.Attributes[name] = value
		}
	}
	if c.Reduce.SafeMode != "" {
		if mode, err := reduce.ParseSafeMode(c.Reduce.SafeMode); err == nil {
			opts.SafeMode = mode
		}
	}
	opts.PreserveConditionals = c.Reduce.PreserveConditionals
	opts.IncludeRoot = c.Reduce.IncludeRoot
	opts.Placeholders = c.Reduce.Placeholders
	opts.RelaxResolution = c.Reduce.IgnoreMissing
	return opts
}

// configStartDir picks where the upward config search begins.
func configStartDir(input string) string {
	if input == "" || input == "-" {
		return "."
	}
	return filepath.Dir(input)
}

// findConfigFile walks up from startDir looking for adocreduce.toml.
func findConfigFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectConfig discovers and decodes the nearest adocreduce.toml.
func loadProjectConfig(startDir string) (projectConfig, bool, error) {
	path, ok, err := findConfigFile(startDir)
	if err != nil || !ok {
		return projectConfig{}, ok, err
	}
	var cfg projectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return projectConfig{}, true, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Reduce.IncludeRoot != "" && !filepath.IsAbs(cfg.Reduce.IncludeRoot) {
		cfg.Reduce.IncludeRoot = filepath.Join(filepath.Dir(path), cfg.Reduce.IncludeRoot)
	}
	return cfg, true, nil
}
