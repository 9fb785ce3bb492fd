package genre

import (
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/JuniperCorpus/core/lexicon"
	"github.com/FocuswithJustin/JuniperCorpus/core/verse"
)

// Features are the measurements signals are evaluated against. They are
// computed once per text.
type Features struct {
	Grid     verse.Grid  `json:"-"`
	Stats    verse.Stats `json:"grid"`
	Bag      lexicon.Bag `json:"-"`
	Tokens   int         `json:"tokens"`
	Filename []string    `json:"filename_tokens,omitempty"`

	// Lines is the number of verse text lines (body lines when no grid was found).
	Lines int `json:"lines"`

	// AvgLineLength is the mean line length in characters.
	AvgLineLength float64 `json:"avg_line_length"`

	// Repetition is the share of lines that repeat an earlier line.
	Repetition float64 `json:"repetition"`
}

// Measure computes the features of a corpus text. The header block is
// stripped first; verse text is measured when a grid exists, otherwise the
// whole body.
func Measure(filename, content string) *Features {
	body := verse.SplitHeader(content)
	grid := verse.ParseBody(body)

	var lines []string
	if grid.Len() > 0 {
		for _, v := range grid.Verses {
			for _, l := range strings.Split(v.Text, "\n") {
				if l != "" {
					lines = append(lines, l)
				}
			}
		}
	} else {
		for _, l := range body.Lines {
			lines = append(lines, l.Text)
		}
	}

	f := &Features{
		Grid:     grid,
		Stats:    grid.Stats(),
		Bag:      lexicon.Count(strings.Join(lines, "\n")),
		Filename: lexicon.FilenameTokens(filename),
		Lines:    len(lines),
	}
	f.Tokens = f.Bag.Total()

	if len(lines) == 0 {
		return f
	}

	chars, repeats := 0, 0
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		chars += utf8.RuneCountInString(l)
		key := strings.Join(lexicon.Tokens(l), " ")
		if key == "" {
			continue
		}
		if seen[key] {
			repeats++
		}
		seen[key] = true
	}
	f.AvgLineLength = float64(chars) / float64(len(lines))
	f.Repetition = float64(repeats) / float64(len(lines))
	return f
}
