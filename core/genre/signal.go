package genre

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/core/lexicon"
	"github.com/FocuswithJustin/JuniperCorpus/core/verse"
)

// Kind identifies a signal variant.
type Kind string

// Signal kinds.
const (
	KindKeyword   Kind = "keyword"
	KindGrid      Kind = "grid"
	KindFilename  Kind = "filename"
	KindLineStats Kind = "line_stats"
)

// Shape is a predicate over the verse-grid statistics of a text.
type Shape string

// Grid shapes.
const (
	ShapeBookChapterVerse Shape = "book_chapter_verse" // most markers carry work and book (Ram_2,1.1)
	ShapeChapterVerse     Shape = "chapter_verse"      // most markers are chapter.verse without a book
	ShapeDanda            Shape = "danda"              // most markers are danda-wrapped
	ShapeMultiChapter     Shape = "multi_chapter"      // two or more chapters
	ShapeSingleChapter    Shape = "single_chapter"     // exactly one chapter
	ShapeShortChapters    Shape = "short_chapters"     // chapters average at most ShortChapterMaxVerses verses
)

// ShortChapterMaxVerses is the average chapter length at or below which
// chapters count as short (hymns, stanza groups).
const ShortChapterMaxVerses = 10

var knownShapes = map[Shape]bool{
	ShapeBookChapterVerse: true,
	ShapeChapterVerse:     true,
	ShapeDanda:            true,
	ShapeMultiChapter:     true,
	ShapeSingleChapter:    true,
	ShapeShortChapters:    true,
}

// Holds reports whether the shape describes the grid statistics.
func (s Shape) Holds(st verse.Stats) bool {
	if st.Markers == 0 {
		return false
	}
	half := st.Markers / 2
	switch s {
	case ShapeBookChapterVerse:
		return st.Forms[verse.FormQualified] > half
	case ShapeChapterVerse:
		return st.Forms[verse.FormQualified] <= half
	case ShapeDanda:
		return st.Forms[verse.FormDanda] > half
	case ShapeMultiChapter:
		return st.Chapters >= 2
	case ShapeSingleChapter:
		return st.Chapters == 1
	case ShapeShortChapters:
		return st.AvgVersesPerChapter <= ShortChapterMaxVerses
	}
	return false
}

// Pattern is the identity and weight shared by every signal.
type Pattern struct {
	ID          string  `json:"id"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Match is the outcome of evaluating one signal.
type Match struct {
	// Credit is the fraction of the signal's weight earned, in [0,1].
	Credit float64 `json:"credit"`

	// Evidence lists what was found (terms, shapes, filename tokens).
	Evidence []string `json:"evidence,omitempty"`

	// Detail is a short human-readable measurement.
	Detail string `json:"detail,omitempty"`
}

// Fired reports whether the signal earned any credit.
func (m Match) Fired() bool { return m.Credit > 0 }

// Signal is one weighted genre signature. The set of variants is closed:
// KeywordSignal, GridSignal, FilenameSignal and LineStatsSignal.
type Signal interface {
	Info() Pattern
	Kind() Kind
	Evaluate(f *Features) Match
	sealed()
}

// KeywordSignal earns credit for distinct dictionary terms present in the text.
// Credit is zero below MinHits and grows linearly until Saturate terms.
type KeywordSignal struct {
	Pattern
	Terms    lexicon.Set
	MinHits  int
	Saturate int
}

func (s *KeywordSignal) Info() Pattern { return s.Pattern }
func (s *KeywordSignal) Kind() Kind    { return KindKeyword }
func (s *KeywordSignal) sealed()       {}

// Evaluate counts distinct terms of the signal present in f.
func (s *KeywordSignal) Evaluate(f *Features) Match {
	found := s.Terms.Matches(f.Bag)
	m := Match{Evidence: found, Detail: fmt.Sprintf("%d/%d terms", len(found), s.Terms.Len())}
	if len(found) < s.MinHits {
		return m
	}
	m.Credit = min(1, float64(len(found))/float64(s.Saturate))
	return m
}

// GridSignal earns full credit when every shape holds and, if Works is set,
// the dominant work abbreviation is one of Works.
type GridSignal struct {
	Pattern
	Shapes []Shape
	Works  []string
}

func (s *GridSignal) Info() Pattern { return s.Pattern }
func (s *GridSignal) Kind() Kind    { return KindGrid }
func (s *GridSignal) sealed()       {}

// Evaluate tests the grid statistics of f.
func (s *GridSignal) Evaluate(f *Features) Match {
	st := f.Stats
	m := Match{Detail: fmt.Sprintf("%d markers in %d chapters", st.Markers, st.Chapters)}
	if st.Markers == 0 {
		return m
	}
	for _, shape := range s.Shapes {
		if !shape.Holds(st) {
			return m
		}
		m.Evidence = append(m.Evidence, string(shape))
	}
	if len(s.Works) > 0 {
		matched := false
		for _, w := range s.Works {
			if strings.EqualFold(w, st.DominantWork) {
				matched = true
				break
			}
		}
		if !matched {
			m.Evidence = nil
			return m
		}
		m.Evidence = append(m.Evidence, st.DominantWork)
	}
	m.Credit = 1
	return m
}

// FilenameSignal earns full credit when a filename token names the genre.
type FilenameSignal struct {
	Pattern
	Tokens lexicon.Set
}

func (s *FilenameSignal) Info() Pattern { return s.Pattern }
func (s *FilenameSignal) Kind() Kind    { return KindFilename }
func (s *FilenameSignal) sealed()       {}

// Evaluate matches the filename tokens of f.
func (s *FilenameSignal) Evaluate(f *Features) Match {
	var m Match
	for _, tok := range f.Filename {
		if s.Tokens.Has(tok) {
			m.Evidence = append(m.Evidence, tok)
		}
	}
	if len(m.Evidence) > 0 {
		m.Credit = 1
	}
	return m
}

// LineStatsSignal earns full credit when the line statistics fall within its
// bounds. A zero bound is unset.
type LineStatsSignal struct {
	Pattern
	MinAvgLength  float64
	MaxAvgLength  float64
	MinRepetition float64
}

func (s *LineStatsSignal) Info() Pattern { return s.Pattern }
func (s *LineStatsSignal) Kind() Kind    { return KindLineStats }
func (s *LineStatsSignal) sealed()       {}

// Evaluate tests the line statistics of f.
func (s *LineStatsSignal) Evaluate(f *Features) Match {
	m := Match{Detail: fmt.Sprintf("avg line %.1f chars, repetition %.2f", f.AvgLineLength, f.Repetition)}
	switch {
	case f.Lines == 0:
	case s.MinAvgLength > 0 && f.AvgLineLength < s.MinAvgLength:
	case s.MaxAvgLength > 0 && f.AvgLineLength > s.MaxAvgLength:
	case s.MinRepetition > 0 && f.Repetition < s.MinRepetition:
	default:
		m.Credit = 1
	}
	return m
}

// signalDoc is the YAML form of a signal; kind selects the variant.
type signalDoc struct {
	ID          string  `yaml:"id"`
	Kind        Kind    `yaml:"kind"`
	Weight      float64 `yaml:"weight"`
	Description string  `yaml:"description"`

	Terms    []string `yaml:"terms,omitempty"`
	MinHits  int      `yaml:"min_hits,omitempty"`
	Saturate int      `yaml:"saturate,omitempty"`

	Shapes []Shape  `yaml:"shapes,omitempty"`
	Works  []string `yaml:"works,omitempty"`

	Tokens []string `yaml:"tokens,omitempty"`

	MinAvgLength  float64 `yaml:"min_avg_length,omitempty"`
	MaxAvgLength  float64 `yaml:"max_avg_length,omitempty"`
	MinRepetition float64 `yaml:"min_repetition,omitempty"`
}

// build converts the document into its signal variant, checking the fields
// each variant requires.
func (d signalDoc) build() (Signal, error) {
	p := Pattern{ID: d.ID, Weight: d.Weight, Description: d.Description}
	field := "signal " + d.ID

	switch d.Kind {
	case KindKeyword:
		if len(d.Terms) == 0 {
			return nil, errors.NewValidation(field, "keyword signal has no terms")
		}
		for _, term := range d.Terms {
			if toks := lexicon.Tokens(term); len(toks) != 1 || toks[0] != lexicon.Fold(term) {
				return nil, errors.NewValidation(field, fmt.Sprintf("term %q is not a single folded token", term))
			}
		}
		if d.MinHits < 1 || d.Saturate < d.MinHits {
			return nil, errors.NewValidation(field, "keyword signal needs 1 <= min_hits <= saturate")
		}
		return &KeywordSignal{Pattern: p, Terms: lexicon.NewSet(d.Terms...), MinHits: d.MinHits, Saturate: d.Saturate}, nil

	case KindGrid:
		if len(d.Shapes) == 0 && len(d.Works) == 0 {
			return nil, errors.NewValidation(field, "grid signal needs shapes or works")
		}
		for _, s := range d.Shapes {
			if !knownShapes[s] {
				return nil, errors.NewValidation(field, fmt.Sprintf("unknown shape %q", s))
			}
		}
		return &GridSignal{Pattern: p, Shapes: d.Shapes, Works: d.Works}, nil

	case KindFilename:
		if len(d.Tokens) == 0 {
			return nil, errors.NewValidation(field, "filename signal has no tokens")
		}
		if d.Weight > MaxFilenameWeight {
			return nil, errors.NewValidation(field, fmt.Sprintf("filename weight %.2f exceeds %.2f", d.Weight, MaxFilenameWeight))
		}
		return &FilenameSignal{Pattern: p, Tokens: lexicon.NewSet(d.Tokens...)}, nil

	case KindLineStats:
		if d.MinAvgLength == 0 && d.MaxAvgLength == 0 && d.MinRepetition == 0 {
			return nil, errors.NewValidation(field, "line_stats signal has no bounds")
		}
		if d.MaxAvgLength > 0 && d.MinAvgLength > d.MaxAvgLength {
			return nil, errors.NewValidation(field, "min_avg_length exceeds max_avg_length")
		}
		return &LineStatsSignal{Pattern: p, MinAvgLength: d.MinAvgLength, MaxAvgLength: d.MaxAvgLength, MinRepetition: d.MinRepetition}, nil
	}

	return nil, errors.NewValidation(field, fmt.Sprintf("unknown signal kind %q", d.Kind))
}
