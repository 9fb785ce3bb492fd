// Package config provides configuration loading for the corpus tool.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
	"github.com/FocuswithJustin/JuniperCorpus/core/unit"
	"github.com/FocuswithJustin/JuniperCorpus/internal/logging"
)

// ProjectConfigFile is looked up in the working directory when no path is given.
const ProjectConfigFile = "corpus.yaml"

// MaxJobs bounds batch parallelism.
const MaxJobs = 64

// Config is the complete corpus tool configuration.
type Config struct {
	Log LogConfig `yaml:"log"`

	// Dictionary is a pattern dictionary file replacing the embedded one.
	Dictionary string `yaml:"dictionary"`

	Extract unit.Options `yaml:"extract"`
	Batch   BatchConfig  `yaml:"batch"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// BatchConfig configures directory classification.
type BatchConfig struct {
	// Jobs is the number of files classified concurrently.
	Jobs int `yaml:"jobs"`
	// Extensions limits a directory walk to these file suffixes.
	Extensions []string `yaml:"extensions"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Extract: unit.DefaultOptions(),
		Batch: BatchConfig{
			Jobs:       4,
			Extensions: []string{".txt", ".xml", ".xz"},
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	if err := c.Extract.Validate(); err != nil {
		return errors.Wrap(err, "extract")
	}
	if c.Batch.Jobs < 1 || c.Batch.Jobs > MaxJobs {
		return errors.NewValidation("batch.jobs", fmt.Sprintf("must be between 1 and %d, got %d", MaxJobs, c.Batch.Jobs))
	}
	return nil
}

// LoadFromFile reads a YAML config over the defaults. Unknown keys are errors.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	config := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, &errors.ParseError{Format: "yaml", Path: path, Message: "invalid config file", Err: err}
	}

	return config, nil
}

// Load returns the defaults merged with the file at path, or with
// ProjectConfigFile in dir when path is empty and that file exists. The
// result is validated.
func Load(path, dir string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		candidate := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config.Merge(fileConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIO("mkdir", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	if other.Dictionary != "" {
		c.Dictionary = other.Dictionary
	}

	// Extract
	if other.Extract.MaxVerses != 0 {
		c.Extract.MaxVerses = other.Extract.MaxVerses
	}
	if other.Extract.MinVerses != 0 {
		c.Extract.MinVerses = other.Extract.MinVerses
	}
	if other.Extract.MaxAttempts != 0 {
		c.Extract.MaxAttempts = other.Extract.MaxAttempts
	}
	if other.Extract.AllowChapterCrossing {
		c.Extract.AllowChapterCrossing = true
	}
	if other.Extract.Seed != 0 {
		c.Extract.Seed = other.Extract.Seed
	}

	// Batch
	if other.Batch.Jobs != 0 {
		c.Batch.Jobs = other.Batch.Jobs
	}
	if len(other.Batch.Extensions) > 0 {
		c.Batch.Extensions = other.Batch.Extensions
	}
}

// LoadDictionary returns the configured pattern dictionary, or the embedded
// one when none is set.
func (c *Config) LoadDictionary() (*genre.Dictionary, error) {
	if c.Dictionary == "" {
		return genre.Default(), nil
	}
	return genre.LoadFile(c.Dictionary)
}

// Logging returns the parsed log level and format.
func (c *Config) Logging() (logging.Level, logging.Format) {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)
	return level, format
}
