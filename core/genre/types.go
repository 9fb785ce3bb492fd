// Package genre holds the pattern dictionary: the per-genre structural and
// lexical signatures the classifier scores a corpus text against.
package genre

import (
	"strings"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
)

// TextType is the semantic genre of a corpus text.
type TextType string

// Text types.
const (
	Epic          TextType = "EPIC"
	Hymnal        TextType = "HYMNAL"
	Philosophical TextType = "PHILOSOPHICAL"
	Narrative     TextType = "NARRATIVE"

	// Other is reported when no genre has enough evidence.
	Other TextType = "OTHER"
)

// validTextTypes is the closed set of text types.
var validTextTypes = map[TextType]bool{
	Epic:          true,
	Hymnal:        true,
	Philosophical: true,
	Narrative:     true,
	Other:         true,
}

// IsValid returns true if t is one of the known text types.
func (t TextType) IsValid() bool {
	return validTextTypes[t]
}

// TextTypes returns every text type, OTHER last.
func TextTypes() []TextType {
	return []TextType{Epic, Hymnal, Philosophical, Narrative, Other}
}

// ParseTextType parses a text type name case-insensitively.
func ParseTextType(s string) (TextType, error) {
	t := TextType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", errors.NewValidation("text type", "unknown text type "+s)
	}
	return t, nil
}
