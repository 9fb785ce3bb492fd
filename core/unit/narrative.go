package unit

import (
	"strings"

	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
	"github.com/FocuswithJustin/JuniperCorpus/core/lexicon"
)

// NarrativeType is the dominant mode of a logical unit.
type NarrativeType string

// Narrative types.
const (
	Dialogue    NarrativeType = "dialogue"
	Description NarrativeType = "description"
	Action      NarrativeType = "action"
	Mixed       NarrativeType = "mixed"
)

// cues are the continuity signals read from one verse.
type cues struct {
	tokens  []string
	speaker string // name before a speech verb, "" when none or a pronoun
	speech  bool   // the verse reports or quotes speech
	open    bool   // speech continues into the next verse
	dangles bool   // the verse opens with a pronoun referring back
	desc    int
	action  int
}

func readCues(text string, lex genre.Lexicons) cues {
	c := cues{tokens: lexicon.Tokens(text)}

	for i, tok := range c.tokens {
		if !lex.SpeechVerbs.Has(tok) {
			continue
		}
		c.speech = true
		if i > 0 && c.speaker == "" && !lex.Pronouns.Has(c.tokens[i-1]) {
			c.speaker = c.tokens[i-1]
		}
	}

	trimmed := strings.TrimSpace(text)
	quotes := strings.Count(trimmed, `"`)
	if quotes > 0 || strings.ContainsAny(trimmed, "“”") {
		c.speech = true
	}
	c.open = strings.HasSuffix(trimmed, ":") ||
		quotes%2 == 1 ||
		strings.Count(trimmed, "“") > strings.Count(trimmed, "”") ||
		(len(c.tokens) > 0 && lex.SpeechVerbs.Has(c.tokens[len(c.tokens)-1]))

	if len(c.tokens) > 0 {
		c.dangles = lex.Pronouns.Has(c.tokens[0])
	}
	c.desc = lex.Descriptive.Occurrences(c.tokens)
	c.action = lex.Action.Occurrences(c.tokens)
	return c
}

// classifyNarrative votes over the verses of a unit. Dialogue needs at least
// one change of speaker and speech in most verses; description and action
// need a majority of verses leaning their way.
func classifyNarrative(verses []cues) NarrativeType {
	n := len(verses)
	if n == 0 {
		return Mixed
	}

	speech, desc, action, alternations := 0, 0, 0, 0
	last := ""
	for _, c := range verses {
		if c.speech {
			speech++
		}
		if c.speaker != "" {
			if last != "" && c.speaker != last {
				alternations++
			}
			last = c.speaker
		}
		switch {
		case c.desc > c.action:
			desc++
		case c.action > c.desc:
			action++
		}
	}

	switch {
	case alternations >= 1 && speech*2 > n:
		return Dialogue
	case desc*2 > n:
		return Description
	case action*2 > n:
		return Action
	}
	return Mixed
}
