package main

import (
	"encoding/json"
	"fmt"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/core/unit"
	"github.com/FocuswithJustin/JuniperCorpus/core/verse"
	"github.com/FocuswithJustin/JuniperCorpus/internal/corpusio"
	"github.com/FocuswithJustin/JuniperCorpus/internal/logging"
)

// ExtractCmd extracts one logical unit from a corpus file.
type ExtractCmd struct {
	Path      string `arg:"" help:"Corpus file" type:"existingfile"`
	At        string `help:"Anchor verse marker, e.g. Ram_2,1.1 (default: seeded choice)"`
	Seed      uint64 `help:"Seed for anchor selection (0 keeps the configured seed)"`
	MaxVerses int    `name:"max-verses" help:"Largest unit"`
	MinVerses int    `name:"min-verses" help:"Smallest viable unit"`
	Attempts  int    `help:"Anchors tried before giving up"`
	Cross     bool   `help:"Allow units to cross into the adjacent chapter"`
	JSON      bool   `help:"Print the unit as JSON"`
}

// options layers the flags over the configured extraction options.
func (c *ExtractCmd) options(base unit.Options) unit.Options {
	if c.Seed != 0 {
		base.Seed = c.Seed
	}
	if c.MaxVerses != 0 {
		base.MaxVerses = c.MaxVerses
	}
	if c.MinVerses != 0 {
		base.MinVerses = c.MinVerses
	}
	if c.Attempts != 0 {
		base.MaxAttempts = c.Attempts
	}
	if c.Cross {
		base.AllowChapterCrossing = true
	}
	return base
}

func (c *ExtractCmd) Run(e *env) error {
	extractor, err := unit.New(c.options(e.cfg.Extract), unit.WithDictionary(e.dict), unit.WithLogger(e.logger))
	if err != nil {
		return err
	}

	t, err := corpusio.ReadFile(e.ctx, c.Path)
	if err != nil {
		return err
	}

	var u *unit.LogicalUnit
	if c.At != "" {
		if u, err = extractor.ExtractAt(t.Content, t.Filename, c.At); err != nil {
			return err
		}
	} else {
		u = extractor.Extract(t.Content, t.Filename, nil)
	}

	if u == nil {
		logging.Extraction(e.ctx, t.Filename, "", 0)
		return errors.NewNotFound("logical unit", c.Path)
	}
	logging.Extraction(e.ctx, t.Filename, u.Reference, u.VerseRange.Count, "narrative_type", u.NarrativeType)

	if c.JSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(u)
	}

	first := u.Verses[0].Ref
	heading := u.Reference
	if book := verse.BookName(first.Work, first.Book); book != "" {
		heading += " (" + book + ")"
	}
	fmt.Fprintf(e.out, "%s [%s, %d verses]\n\n%s\n", heading, u.NarrativeType, u.VerseRange.Count, u.Sanskrit)
	return nil
}
