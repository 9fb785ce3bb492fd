// Package unit extracts logical units: contiguous runs of verses that read as
// one coherent passage, such as a complete dialogue exchange.
package unit

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperCorpus/core/fingerprint"
	"github.com/FocuswithJustin/JuniperCorpus/core/verse"
)

// VerseRange gives the first and last verse numbers of a unit and its size.
type VerseRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Count int `json:"count"`
}

// LogicalUnit is an extracted passage. VerseRange.Count always equals
// len(Verses).
type LogicalUnit struct {
	Sanskrit      string        `json:"sanskrit"`
	Reference     string        `json:"reference"`
	NarrativeType NarrativeType `json:"narrative_type"`
	VerseRange    VerseRange    `json:"verse_range"`
	Verses        []verse.Verse `json:"verses"`
}

// Extract returns a logical unit from content, grown around anchor or around
// a seeded choice of verse when anchor is nil. It returns nil when the text
// has no verse grid, the anchor is not in it, or no attempted anchor yields a
// unit of at least MinVerses.
func (e *Extractor) Extract(content, filename string, anchor *verse.Reference) *LogicalUnit {
	grid := verse.ParseGrid(content)
	if grid.Len() == 0 {
		e.logger.Debug("no verse grid", "filename", filename)
		return nil
	}

	var start int
	if anchor != nil {
		start = grid.Find(*anchor)
		if start < 0 {
			e.logger.Debug("anchor not found", "filename", filename, "anchor", anchor.String())
			return nil
		}
	} else {
		start = e.chooseAnchor(grid, filename, content)
	}

	allCues := make([]cues, grid.Len())
	for i, v := range grid.Verses {
		allCues[i] = readCues(v.Text, e.lex)
	}

	attempts := min(e.opts.MaxAttempts, grid.Len())
	for k := 0; k < attempts; k++ {
		a := (start + k) % grid.Len()
		lo, hi := e.grow(grid, allCues, a)
		if hi-lo+1 < e.opts.MinVerses {
			continue
		}
		u := assemble(grid, allCues, lo, hi)
		e.logger.Debug("extracted unit",
			"filename", filename,
			"reference", u.Reference,
			"narrative_type", u.NarrativeType,
			"verses", u.VerseRange.Count,
			"attempt", k+1)
		return u
	}

	e.logger.Debug("no viable unit", "filename", filename, "attempts", attempts)
	return nil
}

// ExtractAt parses marker and extracts the unit anchored there.
func (e *Extractor) ExtractAt(content, filename, marker string) (*LogicalUnit, error) {
	ref, err := verse.ParseMarker(marker)
	if err != nil {
		return nil, err
	}
	return e.Extract(content, filename, &ref), nil
}

// chooseAnchor picks a verse with a generator seeded by Options.Seed and the
// text fingerprint, preferring verses that neither open nor close a chapter.
func (e *Extractor) chooseAnchor(grid verse.Grid, filename, content string) int {
	rng := rand.New(rand.NewPCG(e.opts.Seed, fingerprint.Seed(filename, content)))

	interior := grid.Interior()
	if len(interior) == 0 {
		return rng.IntN(grid.Len())
	}
	return interior[rng.IntN(len(interior))]
}

// joinable reports whether verse j may share a unit anchored at verse a.
func (e *Extractor) joinable(grid verse.Grid, a, j int) bool {
	if j < 0 || j >= grid.Len() {
		return false
	}
	ar, jr := grid.Verses[a].Ref, grid.Verses[j].Ref
	if !ar.SameBook(jr) {
		return false
	}
	if ar.Chapter == jr.Chapter {
		return true
	}
	if !e.opts.AllowChapterCrossing {
		return false
	}
	d := ar.Chapter - jr.Chapter
	return d == 1 || d == -1
}

// grow widens the window [lo, hi] around anchor a while the passage is
// incomplete and below MaxVerses. Backward steps follow dangling pronouns and
// earlier turns of an exchange; forward steps follow open speech and new
// speakers.
func (e *Extractor) grow(grid verse.Grid, c []cues, a int) (lo, hi int) {
	lo, hi = a, a
	for hi-lo+1 < e.opts.MaxVerses {
		back := e.joinable(grid, a, lo-1)
		fwd := e.joinable(grid, a, hi+1)
		size := hi - lo + 1

		switch {
		case c[lo].dangles && back:
			lo--
		case c[hi].open && fwd:
			hi++
		case back && (c[lo-1].open || c[lo].speaker != "" && c[lo-1].speaker != "" && c[lo-1].speaker != c[lo].speaker):
			// A reply pulls in the turn it answers.
			lo--
		case size < e.opts.MinVerses && fwd:
			hi++
		case size < e.opts.MinVerses && back:
			lo--
		case fwd && c[hi].speaker != "" && c[hi+1].speaker != "" && c[hi+1].speaker != c[hi].speaker:
			hi++
		default:
			return lo, hi
		}
	}
	return lo, hi
}

func assemble(grid verse.Grid, c []cues, lo, hi int) *LogicalUnit {
	verses := make([]verse.Verse, hi-lo+1)
	copy(verses, grid.Verses[lo:hi+1])

	texts := make([]string, len(verses))
	for i, v := range verses {
		texts[i] = v.Text
	}

	first, last := verses[0].Ref, verses[len(verses)-1].Ref
	return &LogicalUnit{
		Sanskrit:      strings.Join(texts, "\n"),
		Reference:     Span(first, last),
		NarrativeType: classifyNarrative(c[lo : hi+1]),
		VerseRange:    VerseRange{Start: first.Verse, End: last.Verse, Count: len(verses)},
		Verses:        verses,
	}
}

// Span formats the reference of a run of verses: "Ram 2.1.2–5" within a
// chapter, "Ram 2.1.9–2.2" across chapters, "bhg 1.1–3" without a book.
func Span(first, last verse.Reference) string {
	var sb strings.Builder
	if first.Work != "" {
		sb.WriteString(first.Work)
		sb.WriteByte(' ')
	}
	if first.Book > 0 {
		sb.WriteString(strconv.Itoa(first.Book))
		sb.WriteByte('.')
	}
	sb.WriteString(strconv.Itoa(first.Chapter))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(first.Verse))

	switch {
	case last.Chapter != first.Chapter:
		sb.WriteString("–")
		sb.WriteString(strconv.Itoa(last.Chapter))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(last.Verse))
	case last.Verse != first.Verse:
		sb.WriteString("–")
		sb.WriteString(strconv.Itoa(last.Verse))
	}
	return sb.String()
}
