package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource("config.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("config.json")
	})
	return schema, schemaErr
}

// fileCfg mirrors the YAML keys. Pointers tell unset keys from zero values.
type fileCfg struct {
	KeepDirectives     []string `yaml:"keep_directives"`
	Exclude            []string `yaml:"exclude"`
	ExcludeRegex       []string `yaml:"exclude_regex"`
	CollapseBlankLines *int     `yaml:"collapse_blank_lines"`
	NoWhitespace       *bool    `yaml:"no_whitespace"`
	Python             *string  `yaml:"python"`
	PHP                *string  `yaml:"php"`
	DelegateTimeout    *string  `yaml:"delegate_timeout"`
	MatchTimeout       *string  `yaml:"match_timeout"`
	ChunkLines         *int     `yaml:"chunk_lines"`
	Workers            *int     `yaml:"workers"`
	LogLevel           *string  `yaml:"log_level"`
	LogFile            *string  `yaml:"log_file"`
}

// applyFile validates the YAML file at path against the embedded schema and
// overlays its keys onto cfg.
func applyFile(cfg *Cfg, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return apply(cfg, raw, path)
}

func apply(cfg *Cfg, raw []byte, name string) error {
	if err := validate(raw); err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}

	var fc fileCfg
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("config: decode %s: %w", name, err)
	}

	cfg.KeepDirectives = append(cfg.KeepDirectives, fc.KeepDirectives...)
	cfg.Exclude = append(cfg.Exclude, fc.Exclude...)
	cfg.ExcludeRegex = append(cfg.ExcludeRegex, fc.ExcludeRegex...)
	if fc.CollapseBlankLines != nil {
		cfg.CollapseBlankLines = *fc.CollapseBlankLines
	}
	if fc.NoWhitespace != nil {
		cfg.NoWhitespace = *fc.NoWhitespace
	}
	if fc.Python != nil {
		cfg.Python = *fc.Python
	}
	if fc.PHP != nil {
		cfg.PHP = *fc.PHP
	}
	if fc.DelegateTimeout != nil {
		d, err := time.ParseDuration(*fc.DelegateTimeout)
		if err != nil {
			return fmt.Errorf("config: %s: delegate_timeout: %w", name, err)
		}
		cfg.DelegateTimeout = d
	}
	if fc.MatchTimeout != nil {
		d, err := time.ParseDuration(*fc.MatchTimeout)
		if err != nil {
			return fmt.Errorf("config: %s: match_timeout: %w", name, err)
		}
		cfg.MatchTimeout = d
	}
	if fc.ChunkLines != nil {
		cfg.ChunkLines = *fc.ChunkLines
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	return nil
}

// validate converts the YAML document to its JSON form and checks it.
func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}

	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return s.Validate(v)
}
