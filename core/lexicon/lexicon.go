// Package lexicon folds romanized corpus text into comparable tokens.
//
// IAST diacritics are removed (ā → a, ṛ → r, ś → s) so that dictionary terms
// written in plain ASCII match transliterated corpus text. Devanagari is left
// intact: its vowel signs are combining marks that carry meaning.
package lexicon

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latinMark reports whether r is a combining mark that can be dropped.
func latinMark(r rune) bool {
	return unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Devanagari, r)
}

// Fold lowercases s and strips Latin diacritics.
func Fold(s string) string {
	// transform.Chain keeps state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(latinMark)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

// Tokens returns the folded word tokens of s in order. Digits and punctuation
// separate tokens.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool { return !isTokenRune(r) })
}

// Bag counts token occurrences.
type Bag map[string]int

// Count builds a Bag from the tokens of s.
func Count(s string) Bag {
	bag := make(Bag)
	for _, tok := range Tokens(s) {
		bag[tok]++
	}
	return bag
}

// Total returns the number of tokens counted.
func (b Bag) Total() int {
	n := 0
	for _, c := range b {
		n += c
	}
	return n
}

// Set is an immutable set of folded terms.
type Set struct {
	terms map[string]struct{}
}

// NewSet folds each term and builds a Set.
func NewSet(terms ...string) Set {
	s := Set{terms: make(map[string]struct{}, len(terms))}
	for _, term := range terms {
		s.terms[Fold(strings.TrimSpace(term))] = struct{}{}
	}
	return s
}

// Len returns the number of terms.
func (s Set) Len() int { return len(s.terms) }

// Has reports whether the folded token is in the set.
func (s Set) Has(token string) bool {
	_, ok := s.terms[token]
	return ok
}

// Matches returns the distinct terms present in bag, sorted.
func (s Set) Matches(bag Bag) []string {
	var out []string
	for term := range s.terms {
		if bag[term] > 0 {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

// Occurrences counts every token of toks that is in the set.
func (s Set) Occurrences(toks []string) int {
	n := 0
	for _, tok := range toks {
		if s.Has(tok) {
			n++
		}
	}
	return n
}

// Terms returns the folded terms, sorted.
func (s Set) Terms() []string {
	out := make([]string, 0, len(s.terms))
	for term := range s.terms {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// FilenameTokens splits a corpus filename into folded tokens. The directory
// and extension are dropped and the concatenation of all tokens is appended,
// so "Bhagvad_Gita.txt" yields bhagvad, gita and bhagvadgita.
func FilenameTokens(filename string) []string {
	base := filepath.Base(filename)
	for ext := filepath.Ext(base); ext != "" && len(ext) <= 5; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	toks := strings.FieldsFunc(Fold(base), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(toks) == 0 {
		return nil
	}
	if len(toks) > 1 {
		toks = append(toks, strings.Join(toks, ""))
	}
	return toks
}
