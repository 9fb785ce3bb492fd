// Package verse parses inline verse markers and builds the ordered verse grid
// of a raw corpus text.
//
// Supported marker forms:
//
//	Ram_2,1.1     work, book, chapter and verse (GRETIL style)
//	R_1,001.001a  zero-padded, with half-verse letter
//	BhP_1.2.3     work, book, chapter and verse with dots
//	bhg 1.1       work, chapter and verse
//	1.1           chapter and verse
//	॥ १.२ ॥       danda-wrapped chapter and verse, Devanagari or ASCII digits
//	॥ ३ ॥         danda-wrapped verse; chapter is inherited from the previous marker
package verse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
)

// Form identifies which marker shape a reference was written in.
type Form string

// Marker forms.
const (
	FormQualified Form = "qualified" // Ram_2,1.1
	FormSpaced    Form = "spaced"    // bhg 1.1
	FormBare      Form = "bare"      // 1.1
	FormDanda     Form = "danda"     // ॥ 1.1 ॥
)

// Reference is a parsed verse locator.
type Reference struct {
	// Work is the work abbreviation as written (e.g., "Ram", "RvKh", "bhg").
	Work string `json:"work,omitempty"`

	// Book is the book number (kanda, mandala); 0 when the marker has none.
	Book int `json:"book,omitempty"`

	// Chapter is the chapter number (sarga, adhyaya, hymn).
	Chapter int `json:"chapter"`

	// Verse is the verse number within the chapter.
	Verse int `json:"verse"`

	// Half is the half-verse letter (e.g., "a", "b").
	Half string `json:"half,omitempty"`

	// Form is the marker shape the reference was parsed from.
	Form Form `json:"form,omitempty"`

	// Raw is the marker exactly as it appeared in the text.
	Raw string `json:"raw"`
}

// markerGrammar is the participle grammar for verse markers.
// Examples: "Ram_2,1.1", "R_1,001.001a", "BhP_1.2.3", "bhg 1.1", "1.1"
//
// Numbers are captured as strings so zero-padded values stay decimal.
//
//nolint:govet // participle grammar tags are not standard struct tags
type markerGrammar struct {
	Work    *workPart `@@?`
	Chapter string    `@Int "."`
	Verse   string    `@Int`
	Half    *string   `@Half?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type workPart struct {
	Abbrev string  `@Ident`
	Book   *string `( "_" @Int ( "," | "." ) )?`
}

// markerLexer defines the lexer for verse markers.
// Half must precede Ident so a trailing "a" after digits is not read as a work name.
var markerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Half", Pattern: `[a-f]\b`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[_,.]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// markerParser is the participle parser for verse markers.
var markerParser = participle.MustBuild[markerGrammar](
	participle.Lexer(markerLexer),
	participle.Elide("Whitespace"),
)

// ParseMarker parses a single verse marker. Devanagari digits are accepted.
func ParseMarker(s string) (Reference, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Reference{}, errors.NewParse("verse marker", "", "empty marker")
	}

	parsed, err := markerParser.ParseString("", FoldDigits(raw))
	if err != nil {
		return Reference{}, &errors.ParseError{
			Format:  "verse marker",
			Message: fmt.Sprintf("invalid marker %q", raw),
			Err:     err,
		}
	}

	ref := Reference{Raw: raw, Form: FormBare}
	if ref.Chapter, err = strconv.Atoi(parsed.Chapter); err != nil {
		return Reference{}, errors.NewParse("verse marker", "", "chapter out of range")
	}
	if ref.Verse, err = strconv.Atoi(parsed.Verse); err != nil {
		return Reference{}, errors.NewParse("verse marker", "", "verse out of range")
	}
	if parsed.Half != nil {
		ref.Half = *parsed.Half
	}
	if parsed.Work != nil {
		ref.Work = parsed.Work.Abbrev
		ref.Form = FormSpaced
		if parsed.Work.Book != nil {
			if ref.Book, err = strconv.Atoi(*parsed.Work.Book); err != nil {
				return Reference{}, errors.NewParse("verse marker", "", "book out of range")
			}
			ref.Form = FormQualified
		}
	}
	if ref.Chapter == 0 || ref.Verse == 0 {
		return Reference{}, errors.NewParse("verse marker", "", fmt.Sprintf("zero chapter or verse in %q", raw))
	}

	return ref, nil
}

// FoldDigits replaces Devanagari digits with ASCII digits.
func FoldDigits(s string) string {
	if !strings.ContainsFunc(s, isDevanagariDigit) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isDevanagariDigit(r) {
			return '0' + (r - '०')
		}
		return r
	}, s)
}

func isDevanagariDigit(r rune) bool {
	return r >= '०' && r <= '९'
}

// String returns the canonical marker form of the reference.
func (r Reference) String() string {
	var sb strings.Builder
	switch {
	case r.Work != "" && r.Book > 0:
		sb.WriteString(r.Work)
		sb.WriteString("_")
		sb.WriteString(strconv.Itoa(r.Book))
		sb.WriteString(",")
	case r.Work != "":
		sb.WriteString(r.Work)
		sb.WriteString(" ")
	}
	sb.WriteString(strconv.Itoa(r.Chapter))
	sb.WriteString(".")
	sb.WriteString(strconv.Itoa(r.Verse))
	sb.WriteString(r.Half)
	return sb.String()
}

// SameBook reports whether both references belong to the same work and book.
func (r Reference) SameBook(other Reference) bool {
	return strings.EqualFold(r.Work, other.Work) && r.Book == other.Book
}

// SameChapter reports whether both references belong to the same chapter of
// the same book.
func (r Reference) SameChapter(other Reference) bool {
	return r.SameBook(other) && r.Chapter == other.Chapter
}

// Matches reports whether other names the same verse. Half-verse letters are
// ignored, and an empty work on other matches any work.
func (r Reference) Matches(other Reference) bool {
	if other.Work != "" && !strings.EqualFold(r.Work, other.Work) {
		return false
	}
	if other.Book != 0 && r.Book != other.Book {
		return false
	}
	return r.Chapter == other.Chapter && r.Verse == other.Verse
}

// ramayanaKandas names the seven books of the Valmiki Ramayana.
var ramayanaKandas = map[int]string{
	1: "Bala Kanda",
	2: "Ayodhya Kanda",
	3: "Aranya Kanda",
	4: "Kishkindha Kanda",
	5: "Sundara Kanda",
	6: "Yuddha Kanda",
	7: "Uttara Kanda",
}

// BookName returns a display name for a book of a known work, or "".
func BookName(work string, book int) string {
	switch strings.ToLower(work) {
	case "r", "ram", "rm":
		return ramayanaKandas[book]
	}
	return ""
}
