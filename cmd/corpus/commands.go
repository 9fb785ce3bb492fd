package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/JuniperCorpus/core/classify"
	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
	"github.com/FocuswithJustin/JuniperCorpus/core/legacy"
	"github.com/FocuswithJustin/JuniperCorpus/internal/corpusio"
	"github.com/FocuswithJustin/JuniperCorpus/internal/logging"
)

// LegacyGroup contains legacy category conversions.
type LegacyGroup struct {
	To   LegacyToCmd   `cmd:"" help:"Map a text type to its legacy category"`
	From LegacyFromCmd `cmd:"" help:"Map a legacy category to its text type"`
}

// LegacyToCmd maps a text type to a legacy category.
type LegacyToCmd struct {
	Type     string `arg:"" help:"Text type: EPIC, HYMNAL, PHILOSOPHICAL, NARRATIVE, OTHER"`
	Filename string `help:"Filename hint used to recognize canonical works"`
}

func (c *LegacyToCmd) Run(e *env) error {
	t, err := genre.ParseTextType(c.Type)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, legacy.NewMapper(e.dict).ToLegacyWithContext(t, c.Filename))
	return nil
}

// LegacyFromCmd maps a legacy category to a text type.
type LegacyFromCmd struct {
	Type string `arg:"" help:"Legacy category: veda, upanishad, purana, epic, gita, other"`
}

func (c *LegacyFromCmd) Run(e *env) error {
	t, err := legacy.ParseType(c.Type)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, legacy.NewMapper(e.dict).FromLegacy(t))
	return nil
}

// DebugCmd prints the full scoring trace for one file.
type DebugCmd struct {
	Path string `arg:"" help:"Corpus file" type:"existingfile"`
}

func (c *DebugCmd) Run(e *env) error {
	t, err := corpusio.ReadFile(e.ctx, c.Path)
	if err != nil {
		return err
	}
	report := classify.New(e.dict, classify.WithLogger(e.logger)).AnalyzeForDebugging(t.Filename, t.Content)

	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// ConfigGroup contains configuration operations.
type ConfigGroup struct {
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration"`
	Init ConfigInitCmd `cmd:"" help:"Write the effective configuration to a file"`
}

// ConfigShowCmd prints the effective configuration as YAML.
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(e *env) error {
	data, err := yaml.Marshal(e.cfg)
	if err != nil {
		return err
	}
	_, err = e.out.Write(data)
	return err
}

// ConfigInitCmd writes the effective configuration.
type ConfigInitCmd struct {
	Path string `arg:"" help:"Destination file" type:"path" default:"corpus.yaml"`
}

func (c *ConfigInitCmd) Run(e *env) error {
	if err := e.cfg.SaveToFile(c.Path); err != nil {
		return err
	}
	logging.Info("wrote config", "path", c.Path)
	fmt.Fprintf(e.out, "wrote %s\n", c.Path)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintf(e.out, "corpus version %s (dictionary v%d)\n", version, e.dict.Version)
	return nil
}
