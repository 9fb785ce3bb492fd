package verse

import (
	"regexp"
	"strconv"
	"strings"
)

// Style records whether markers open or close the verse text they label.
type Style string

// Marker styles.
const (
	StyleLeading  Style = "leading"  // "Ram_2,1.1 text..."
	StyleTrailing Style = "trailing" // "text... // Ram_2,1.1 //"
	StyleNone     Style = "none"     // no markers found
)

// Verse is one verse of the grid: its reference and text.
type Verse struct {
	Ref  Reference `json:"ref"`
	Text string    `json:"text"`
	Line int       `json:"line"`
}

// Grid is the ordered verse sequence of a corpus text.
type Grid struct {
	Verses []Verse `json:"verses"`
	Style  Style   `json:"style"`

	// Dropped counts markers discarded because they went backwards within a
	// chapter. Verse-only markers never drop; a restart opens a new chapter.
	Dropped int `json:"dropped,omitempty"`
}

const digits = `[0-9०-९]+`

var (
	qualifiedMarker = regexp.MustCompile(`[A-Za-z]+_` + digits + `[,.]` + digits + `\.` + digits + `[a-f]?`)
	spacedMarker    = regexp.MustCompile(`\b[A-Za-z]{2,8} ` + digits + `\.` + digits + `[a-f]?`)
	bareMarker      = regexp.MustCompile(`^` + digits + `\.` + digits + `[a-f]?`)
	dandaMarker     = regexp.MustCompile(`॥\s*(` + digits + `)(?:\.(` + digits + `))?\s*॥`)
)

// delimiters surround markers and verse halves in GRETIL and Devanagari texts.
const delimiters = " \t/|।॥"

type markerMatch struct {
	start, end int
	leading    bool
	trailing   bool
	ref        Reference
}

func (m markerMatch) position(line string) markerMatch {
	m.leading = strings.Trim(line[:m.start], delimiters) == ""
	m.trailing = strings.Trim(line[m.end:], delimiters) == ""
	return m
}

// followedByWord reports whether a letter or digit directly follows end.
func followedByWord(line string, end int) bool {
	if end >= len(line) {
		return false
	}
	c := line[end]
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// findMarker locates the verse marker of a line. Danda and qualified markers
// are accepted anywhere; spaced markers only at the start or end of the line,
// bare markers only at the start.
func findMarker(line string) (markerMatch, bool) {
	if loc := dandaMarker.FindStringSubmatchIndex(line); loc != nil {
		first, _ := strconv.Atoi(FoldDigits(line[loc[2]:loc[3]]))
		ref := Reference{Form: FormDanda, Raw: line[loc[0]:loc[1]], Verse: first}
		if loc[4] >= 0 {
			ref.Chapter = first
			ref.Verse, _ = strconv.Atoi(FoldDigits(line[loc[4]:loc[5]]))
		}
		if ref.Verse > 0 {
			return markerMatch{start: loc[0], end: loc[1], ref: ref}.position(line), true
		}
	}

	if locs := qualifiedMarker.FindAllStringIndex(line, -1); locs != nil {
		m := markerMatch{start: locs[len(locs)-1][0], end: locs[len(locs)-1][1]}.position(line)
		if first := (markerMatch{start: locs[0][0], end: locs[0][1]}).position(line); first.leading {
			m = first
		}
		if ref, err := ParseMarker(line[m.start:m.end]); err == nil && !followedByWord(line, m.end) {
			m.ref = ref
			return m, true
		}
	}

	for _, loc := range spacedMarker.FindAllStringIndex(line, -1) {
		m := markerMatch{start: loc[0], end: loc[1]}.position(line)
		if !m.leading && !m.trailing || followedByWord(line, m.end) {
			continue
		}
		if ref, err := ParseMarker(line[m.start:m.end]); err == nil {
			m.ref = ref
			return m, true
		}
	}

	trimmed := strings.TrimLeft(line, delimiters)
	if loc := bareMarker.FindStringIndex(trimmed); loc != nil && !followedByWord(trimmed, loc[1]) {
		offset := len(line) - len(trimmed)
		m := markerMatch{start: loc[0] + offset, end: loc[1] + offset}.position(line)
		if ref, err := ParseMarker(line[m.start:m.end]); err == nil {
			m.ref = ref
			return m, true
		}
	}

	return markerMatch{}, false
}

// isCommentary reports editorial lines that never belong to verse text.
func isCommentary(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		return true
	case strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")"):
		return true
	case strings.HasPrefix(lower, "comm:"), strings.HasPrefix(lower, "comm."), strings.HasPrefix(lower, "commentary:"):
		return true
	}
	return false
}

// cleanText removes the marker span and surrounding delimiters from a line.
func cleanText(line string, m markerMatch) string {
	text := line[:m.start] + " " + line[m.end:]
	return strings.Join(strings.Fields(strings.Trim(text, delimiters)), " ")
}

func chapterKey(r Reference) string {
	return strings.ToLower(r.Work) + "|" + strconv.Itoa(r.Book) + "|" + strconv.Itoa(r.Chapter)
}

// ParseGrid parses content into its verse grid. Header and commentary lines
// are discarded. A text without markers yields an empty grid.
func ParseGrid(content string) Grid {
	return ParseBody(SplitHeader(content))
}

// ParseBody builds the verse grid from an already split body.
func ParseBody(body Body) Grid {
	type entry struct {
		line  Line
		match *markerMatch
	}

	entries := make([]entry, 0, len(body.Lines))
	markers, leading, trailing := 0, 0, 0
	for _, l := range body.Lines {
		if isCommentary(l.Text) {
			continue
		}
		e := entry{line: l}
		if m, ok := findMarker(l.Text); ok {
			e.match = &m
			markers++
			switch {
			case m.leading:
				leading++
			case m.trailing:
				trailing++
			}
		}
		entries = append(entries, e)
	}

	grid := Grid{Style: StyleNone}
	if markers == 0 {
		return grid
	}
	grid.Style = StyleLeading
	if trailing > leading {
		grid.Style = StyleTrailing
	}

	lastVerse := make(map[string]int)
	var (
		pending  []string
		prev     Reference
		havePrev bool
		current  = -1 // index of the verse that owns continuation lines
	)

	for _, e := range entries {
		if e.match == nil {
			text := strings.Trim(e.line.Text, delimiters)
			if grid.Style == StyleLeading {
				if current >= 0 {
					grid.Verses[current].Text = joinText(grid.Verses[current].Text, text)
				}
			} else if text != "" {
				pending = append(pending, text)
			}
			continue
		}

		ref := e.match.ref
		inherited := false
		if ref.Chapter == 0 {
			ref.Chapter = 1
			if havePrev {
				ref.Work, ref.Book, ref.Chapter = prev.Work, prev.Book, prev.Chapter
				inherited = true
			}
		}
		// A verse-only marker that restarts its numbering opens the next chapter.
		if last, seen := lastVerse[chapterKey(ref)]; inherited && seen && ref.Verse <= last {
			ref.Chapter = prev.Chapter + 1
		}

		text := cleanText(e.line.Text, *e.match)
		if grid.Style == StyleTrailing {
			text = joinText(strings.Join(pending, "\n"), text)
			pending = pending[:0]
		}

		key := chapterKey(ref)
		last, seen := lastVerse[key]
		switch {
		case seen && ref.Verse < last:
			grid.Dropped++
			current = -1
			continue
		case seen && ref.Verse == last:
			n := len(grid.Verses) - 1
			if n >= 0 && chapterKey(grid.Verses[n].Ref) == key && grid.Verses[n].Ref.Verse == ref.Verse {
				grid.Verses[n].Text = joinText(grid.Verses[n].Text, text)
				grid.Verses[n].Ref.Half = ""
				current = n
			} else {
				grid.Dropped++
				current = -1
			}
			continue
		}

		lastVerse[key] = ref.Verse
		grid.Verses = append(grid.Verses, Verse{Ref: ref, Text: text, Line: e.line.Number})
		current = len(grid.Verses) - 1
		prev, havePrev = ref, true
	}

	return grid
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}

// Len returns the number of verses in the grid.
func (g Grid) Len() int { return len(g.Verses) }

// Find returns the index of the verse matching ref, or -1.
func (g Grid) Find(ref Reference) int {
	for i, v := range g.Verses {
		if v.Ref.Matches(ref) {
			return i
		}
	}
	return -1
}

// Interior returns, in order, the indexes of verses that neither open nor
// close their chapter.
func (g Grid) Interior() []int {
	var out []int
	for i := 1; i < len(g.Verses)-1; i++ {
		r := g.Verses[i].Ref
		if r.SameChapter(g.Verses[i-1].Ref) && r.SameChapter(g.Verses[i+1].Ref) {
			out = append(out, i)
		}
	}
	return out
}

// Stats summarizes the numbering shape of a grid.
type Stats struct {
	Markers             int          `json:"markers"`
	Forms               map[Form]int `json:"forms"`
	Books               int          `json:"books"`
	Chapters            int          `json:"chapters"`
	AvgVersesPerChapter float64      `json:"avg_verses_per_chapter"`
	DominantWork        string       `json:"dominant_work,omitempty"`
}

// Stats computes the grid's numbering statistics.
func (g Grid) Stats() Stats {
	s := Stats{Markers: len(g.Verses), Forms: make(map[Form]int)}
	if len(g.Verses) == 0 {
		return s
	}

	books := make(map[string]bool)
	chapters := make(map[string]bool)
	works := make(map[string]int)
	var order []string
	for _, v := range g.Verses {
		s.Forms[v.Ref.Form]++
		books[strings.ToLower(v.Ref.Work)+"|"+strconv.Itoa(v.Ref.Book)] = true
		chapters[chapterKey(v.Ref)] = true
		if v.Ref.Work != "" {
			if works[v.Ref.Work] == 0 {
				order = append(order, v.Ref.Work)
			}
			works[v.Ref.Work]++
		}
	}
	s.Books = len(books)
	s.Chapters = len(chapters)
	s.AvgVersesPerChapter = float64(len(g.Verses)) / float64(len(chapters))
	for _, w := range order {
		if works[w] > works[s.DominantWork] {
			s.DominantWork = w
		}
	}
	return s
}
