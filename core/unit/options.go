package unit

import (
	"fmt"
	"log/slog"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
	"github.com/FocuswithJustin/JuniperCorpus/internal/logging"
)

// Extraction defaults.
const (
	DefaultMaxVerses   = 8
	DefaultMinVerses   = 2
	DefaultMaxAttempts = 5

	// VerseCeiling is the largest MaxVerses accepted.
	VerseCeiling = 10
)

// Options controls unit extraction.
type Options struct {
	// MaxVerses is the largest unit returned.
	MaxVerses int `yaml:"max_verses"`

	// MinVerses is the smallest viable unit; smaller windows retry the next anchor.
	MinVerses int `yaml:"min_verses"`

	// MaxAttempts bounds how many anchors are tried.
	MaxAttempts int `yaml:"max_attempts"`

	// AllowChapterCrossing lets a unit continue into the adjacent chapter of
	// the same book. Book boundaries are never crossed.
	AllowChapterCrossing bool `yaml:"allow_chapter_crossing"`

	// Seed selects the anchor when none is given. The same seed and text
	// always select the same anchor.
	Seed uint64 `yaml:"seed"`
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		MaxVerses:   DefaultMaxVerses,
		MinVerses:   DefaultMinVerses,
		MaxAttempts: DefaultMaxAttempts,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxVerses == 0 {
		o.MaxVerses = d.MaxVerses
	}
	if o.MinVerses == 0 {
		o.MinVerses = d.MinVerses
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	return o
}

// Validate checks that the options describe a satisfiable extraction.
func (o Options) Validate() error {
	if o.MinVerses < 1 {
		return errors.NewValidation("min_verses", fmt.Sprintf("must be positive, got %d", o.MinVerses))
	}
	if o.MaxVerses < o.MinVerses {
		return errors.NewValidation("max_verses", fmt.Sprintf("max_verses (%d) must not be below min_verses (%d)", o.MaxVerses, o.MinVerses))
	}
	if o.MaxVerses > VerseCeiling {
		return errors.NewValidation("max_verses", fmt.Sprintf("max_verses (%d) exceeds ceiling %d", o.MaxVerses, VerseCeiling))
	}
	if o.MaxAttempts < 1 {
		return errors.NewValidation("max_attempts", fmt.Sprintf("must be positive, got %d", o.MaxAttempts))
	}
	return nil
}

// Option configures an Extractor beyond its Options.
type Option func(*Extractor)

// WithLogger sets the logger that receives debug records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDictionary sets the dictionary whose narrative lexicons drive boundary
// detection.
func WithDictionary(d *genre.Dictionary) Option {
	return func(e *Extractor) {
		if d != nil {
			e.lex = d.Narrative
		}
	}
}

// Extractor extracts logical units. It holds only immutable configuration and
// is safe for concurrent use.
type Extractor struct {
	opts   Options
	lex    genre.Lexicons
	logger *slog.Logger
}

// New creates an extractor. Zero counts in opts take their defaults.
func New(opts Options, extra ...Option) (*Extractor, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	e := &Extractor{
		opts:   opts,
		logger: logging.Discard(),
	}
	for _, o := range extra {
		o(e)
	}
	if e.lex.SpeechVerbs.Len() == 0 {
		e.lex = genre.Default().Narrative
	}
	return e, nil
}

// MustNew creates an extractor, panicking on invalid options.
// Use for known-good configurations.
func MustNew(opts Options, extra ...Option) *Extractor {
	e, err := New(opts, extra...)
	if err != nil {
		panic(err)
	}
	return e
}

// Options returns the extractor's options.
func (e *Extractor) Options() Options { return e.opts }
