// Package classify scores corpus texts against the pattern dictionary and
// reports their genre with a confidence and a reasoning trail.
package classify

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
	"github.com/FocuswithJustin/JuniperCorpus/internal/logging"
)

// Tunables for winner selection.
const (
	// MinGenreScore is the lowest normalized score that can name a genre.
	MinGenreScore = 0.2

	// TieThreshold is the score gap below which the top two genres are tied.
	TieThreshold = 0.05

	// AmbiguityPenalty scales confidence for an unresolved tie.
	AmbiguityPenalty = 0.75
)

// EvidenceFactor scales confidence by the number of patterns that fired for
// the winning genre, so a score built on a single signal is trusted less.
func EvidenceFactor(patterns int) float64 {
	switch {
	case patterns <= 0:
		return 0
	case patterns == 1:
		return 0.6
	case patterns == 2:
		return 0.8
	}
	return 1
}

// Classification is the result of classifying one text.
type Classification struct {
	TextType         genre.TextType `json:"text_type"`
	Confidence       float64        `json:"confidence"`
	DetectedPatterns []string       `json:"detected_patterns"`
	Reasoning        []string       `json:"reasoning"`
}

// PatternTrace records how one signal fared against a text.
type PatternTrace struct {
	ID          string     `json:"id"`
	Kind        genre.Kind `json:"kind"`
	Weight      float64    `json:"weight"`
	Credit      float64    `json:"credit"`
	Description string     `json:"description"`
	Evidence    []string   `json:"evidence,omitempty"`
	Detail      string     `json:"detail,omitempty"`
}

// GenreScore is the evaluation of one genre.
type GenreScore struct {
	Type       genre.TextType `json:"type"`
	Raw        float64        `json:"raw"`
	Normalized float64        `json:"normalized"`
	Matched    []PatternTrace `json:"matched"`
	Unmatched  []PatternTrace `json:"unmatched"`

	filenameHint bool
}

// Classifier classifies corpus texts. It holds only immutable configuration
// and is safe for concurrent use.
type Classifier struct {
	dict   *genre.Dictionary
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger that receives debug records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a classifier over dict. A nil dict selects genre.Default().
func New(dict *genre.Dictionary, opts ...Option) *Classifier {
	if dict == nil {
		dict = genre.Default()
	}
	c := &Classifier{
		dict:   dict,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the genre of the text. It never fails: a text without
// enough evidence is classified as OTHER with zero confidence.
func (c *Classifier) Classify(filename, content string) Classification {
	f := genre.Measure(filename, content)
	result := decide(c.score(f), f)
	c.logger.Debug("classified text",
		"filename", filename,
		"text_type", result.TextType,
		"confidence", result.Confidence,
		"patterns", len(result.DetectedPatterns))
	return result
}

// score evaluates every genre of the dictionary, in dictionary order.
func (c *Classifier) score(f *genre.Features) []GenreScore {
	scores := make([]GenreScore, 0, len(c.dict.Genres))
	for _, g := range c.dict.Genres {
		gs := GenreScore{Type: g.Type}
		total := 0.0
		for _, s := range g.Signals {
			info := s.Info()
			m := s.Evaluate(f)
			total += info.Weight
			tr := PatternTrace{
				ID:          info.ID,
				Kind:        s.Kind(),
				Weight:      info.Weight,
				Credit:      info.Weight * m.Credit,
				Description: info.Description,
				Evidence:    m.Evidence,
				Detail:      m.Detail,
			}
			if !m.Fired() {
				gs.Unmatched = append(gs.Unmatched, tr)
				continue
			}
			gs.Raw += tr.Credit
			gs.Matched = append(gs.Matched, tr)
			if s.Kind() == genre.KindFilename {
				gs.filenameHint = true
			}
		}
		if total > 0 {
			gs.Normalized = min(1, gs.Raw/total)
		}
		scores = append(scores, gs)
	}
	return scores
}

// rank returns the indexes of the best and second-best scores; ties keep
// dictionary order. second is -1 when there is only one genre.
func rank(scores []GenreScore) (best, second int) {
	best, second = -1, -1
	for i, s := range scores {
		switch {
		case best < 0 || s.Normalized > scores[best].Normalized:
			second, best = best, i
		case second < 0 || s.Normalized > scores[second].Normalized:
			second = i
		}
	}
	return best, second
}

func decide(scores []GenreScore, f *genre.Features) Classification {
	best, second := rank(scores)
	if best < 0 || scores[best].Normalized < MinGenreScore {
		return other(scores, best, f)
	}

	winner := scores[best]
	var notes []string
	penalize := false

	if second >= 0 && winner.Normalized-scores[second].Normalized < TieThreshold {
		runner := scores[second]
		switch {
		case winner.filenameHint && !runner.filenameHint:
			notes = append(notes, fmt.Sprintf("near tie with %s (%.2f) resolved by filename hint", runner.Type, runner.Normalized))
		case runner.filenameHint && !winner.filenameHint && runner.Normalized >= MinGenreScore:
			notes = append(notes, fmt.Sprintf("near tie with %s (%.2f) resolved by filename hint", winner.Type, winner.Normalized))
			winner = runner
		default:
			penalize = true
			notes = append(notes, fmt.Sprintf("ambiguous: %s scored %.2f and %s scored %.2f", winner.Type, winner.Normalized, runner.Type, runner.Normalized))
		}
	}

	result := Classification{
		TextType:         winner.Type,
		DetectedPatterns: make([]string, 0, len(winner.Matched)),
	}
	for _, tr := range winner.Matched {
		result.DetectedPatterns = append(result.DetectedPatterns, tr.ID)
		result.Reasoning = append(result.Reasoning, reason(tr))
	}
	sort.Strings(result.DetectedPatterns)

	factor := EvidenceFactor(len(winner.Matched))
	result.Confidence = winner.Normalized * factor
	result.Reasoning = append(result.Reasoning,
		fmt.Sprintf("%s scored %.2f from %d patterns (evidence factor %.1f)", winner.Type, winner.Normalized, len(winner.Matched), factor))
	if penalize {
		result.Confidence *= AmbiguityPenalty
	}
	result.Reasoning = append(result.Reasoning, notes...)
	result.Confidence = max(0, min(1, result.Confidence))
	return result
}

// other builds the OTHER classification with an explanation.
func other(scores []GenreScore, best int, f *genre.Features) Classification {
	result := Classification{TextType: genre.Other, DetectedPatterns: []string{}}
	if f.Stats.Markers == 0 {
		result.Reasoning = append(result.Reasoning, "no verse markers found")
	}
	if best >= 0 {
		result.Reasoning = append(result.Reasoning,
			fmt.Sprintf("best genre %s scored %.2f, below minimum %.2f", scores[best].Type, scores[best].Normalized, MinGenreScore))
	} else {
		result.Reasoning = append(result.Reasoning, "dictionary has no genres")
	}
	return result
}

func reason(tr PatternTrace) string {
	var sb strings.Builder
	sb.WriteString(tr.ID)
	sb.WriteString(": ")
	sb.WriteString(tr.Description)
	if len(tr.Evidence) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(tr.Evidence, ", "))
		sb.WriteString("]")
	}
	fmt.Fprintf(&sb, " +%.2f", tr.Credit)
	return sb.String()
}
