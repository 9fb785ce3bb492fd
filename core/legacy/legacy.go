// Package legacy maps text types to and from the coarse category scheme used
// by older consumers.
package legacy

import (
	"strings"
	"sync"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
)

// Type is a legacy text category.
type Type string

// Legacy categories.
const (
	Veda      Type = "veda"
	Upanishad Type = "upanishad"
	Purana    Type = "purana"
	Epic      Type = "epic"
	Gita      Type = "gita"
	Other     Type = "other"
)

// Types returns the closed set of legacy categories.
func Types() []Type {
	return []Type{Veda, Upanishad, Purana, Epic, Gita, Other}
}

// fromLegacy is total over Types().
var fromLegacy = map[Type]genre.TextType{
	Veda:      genre.Hymnal,
	Upanishad: genre.Philosophical,
	Purana:    genre.Narrative,
	Epic:      genre.Epic,
	Gita:      genre.Philosophical,
	Other:     genre.Other,
}

// toLegacy holds the default coarsening for each text type.
var toLegacy = map[genre.TextType]Type{
	genre.Hymnal:        Veda,
	genre.Philosophical: Upanishad,
	genre.Narrative:     Purana,
	genre.Epic:          Epic,
	genre.Other:         Other,
}

// canonicalContext names a file that identifies each legacy category that
// needs one to survive a round trip.
var canonicalContext = map[Type]string{
	Gita: "Bhagavad_Gita.txt",
}

// ParseType parses a legacy category name case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fromLegacy[t]; !ok {
		return "", &errors.ValidationError{Field: "legacy type", Value: s, Message: "unknown legacy type " + s}
	}
	return t, nil
}

// Mapper converts between text types and legacy categories. The dictionary
// supplies the canonical-work filename tokens.
type Mapper struct {
	dict *genre.Dictionary
}

// NewMapper creates a mapper over dict. A nil dict selects genre.Default().
func NewMapper(dict *genre.Dictionary) *Mapper {
	if dict == nil {
		dict = genre.Default()
	}
	return &Mapper{dict: dict}
}

// FromLegacy returns the text type of a legacy category. Unknown categories
// map to OTHER.
func (m *Mapper) FromLegacy(t Type) genre.TextType {
	if tt, ok := fromLegacy[t]; ok {
		return tt
	}
	return genre.Other
}

// ToLegacy returns the default legacy category of a text type.
// PHILOSOPHICAL coarsens to upanishad.
func (m *Mapper) ToLegacy(t genre.TextType) Type {
	if lt, ok := toLegacy[t]; ok {
		return lt
	}
	return Other
}

// ToLegacyWithContext is ToLegacy, except that a PHILOSOPHICAL text whose
// filename names the Bhagavad Gita maps to gita.
func (m *Mapper) ToLegacyWithContext(t genre.TextType, filenameHint string) Type {
	if t == genre.Philosophical && filenameHint != "" {
		if work, ok := m.dict.CanonicalWork(filenameHint); ok && work == string(Gita) {
			return Gita
		}
	}
	return m.ToLegacy(t)
}

// CanonicalContext returns a filename hint under which t survives a round
// trip through FromLegacy and ToLegacyWithContext, or "" when none is needed.
func CanonicalContext(t Type) string {
	return canonicalContext[t]
}

var defaultMapper = sync.OnceValue(func() *Mapper { return NewMapper(nil) })

// FromLegacy maps a legacy category with the default dictionary.
func FromLegacy(t Type) genre.TextType { return defaultMapper().FromLegacy(t) }

// ToLegacy maps a text type with the default dictionary.
func ToLegacy(t genre.TextType) Type { return defaultMapper().ToLegacy(t) }

// ToLegacyWithContext maps a text type with the default dictionary.
func ToLegacyWithContext(t genre.TextType, filenameHint string) Type {
	return defaultMapper().ToLegacyWithContext(t, filenameHint)
}
