package genre

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/core/lexicon"
)

// MaxFilenameWeight caps the weight of any filename signal. It must stay below
// the classifier's minimum genre score so a filename alone never selects a genre.
const MaxFilenameWeight = 0.15

// weightTolerance absorbs float rounding when checking weight sums.
const weightTolerance = 1e-6

//go:embed dictionary.yaml
var embeddedDictionary []byte

// Genre is the signature of one text type.
type Genre struct {
	Type    TextType
	Signals []Signal
}

// Filename returns the genre's filename signal, or nil.
func (g Genre) Filename() *FilenameSignal {
	for _, s := range g.Signals {
		if fs, ok := s.(*FilenameSignal); ok {
			return fs
		}
	}
	return nil
}

// Lexicons are the narrative vocabularies used by the unit extractor.
type Lexicons struct {
	SpeechVerbs lexicon.Set
	Pronouns    lexicon.Set
	Descriptive lexicon.Set
	Action      lexicon.Set
}

// Dictionary is the immutable pattern dictionary. It is safe for concurrent use.
type Dictionary struct {
	Version   int
	Genres    []Genre
	Narrative Lexicons

	canonical map[string]lexicon.Set
	order     []string
}

// Genre returns the signature for t.
func (d *Dictionary) Genre(t TextType) (Genre, bool) {
	for _, g := range d.Genres {
		if g.Type == t {
			return g, true
		}
	}
	return Genre{}, false
}

// CanonicalWork returns the name of the canonical work the filename refers to
// (for example "gita" for Bhagvad_Gita.txt).
func (d *Dictionary) CanonicalWork(filename string) (string, bool) {
	toks := lexicon.FilenameTokens(filename)
	for _, name := range d.order {
		set := d.canonical[name]
		for _, tok := range toks {
			if set.Has(tok) {
				return name, true
			}
		}
	}
	return "", false
}

// dictionaryDoc is the YAML layout of the dictionary.
type dictionaryDoc struct {
	Version int `yaml:"version"`
	Genres  []struct {
		Type    TextType    `yaml:"type"`
		Signals []signalDoc `yaml:"signals"`
	} `yaml:"genres"`
	Narrative struct {
		SpeechVerbs []string `yaml:"speech_verbs"`
		Pronouns    []string `yaml:"pronouns"`
		Descriptive []string `yaml:"descriptive"`
		Action      []string `yaml:"action"`
	} `yaml:"narrative"`
	CanonicalWorks yaml.Node `yaml:"canonical_works"`
}

// Load parses and validates a dictionary document.
func Load(r io.Reader) (*Dictionary, error) {
	var doc dictionaryDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, &errors.ParseError{Format: "pattern dictionary", Message: "invalid YAML", Err: err}
	}
	return doc.build()
}

// LoadFile parses and validates a dictionary file.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	d, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load dictionary %s", path)
	}
	return d, nil
}

var (
	defaultOnce sync.Once
	defaultDict *Dictionary
)

// Default returns the embedded dictionary. It panics if the embedded document
// is defective, which the package tests catch.
func Default() *Dictionary {
	defaultOnce.Do(func() {
		d, err := Load(bytes.NewReader(embeddedDictionary))
		if err != nil {
			panic(fmt.Sprintf("genre: embedded dictionary: %v", err))
		}
		defaultDict = d
	})
	return defaultDict
}

func (doc *dictionaryDoc) build() (*Dictionary, error) {
	if doc.Version != 1 {
		return nil, errors.NewUnsupported("dictionary version", fmt.Sprintf("version %d", doc.Version))
	}
	if len(doc.Genres) == 0 {
		return nil, errors.NewValidation("genres", "dictionary has no genres")
	}

	d := &Dictionary{Version: doc.Version}
	types := make(map[TextType]bool)
	ids := make(map[string]bool)
	owners := make(map[string]TextType) // keyword term -> genre it signals

	for _, gd := range doc.Genres {
		if !gd.Type.IsValid() || gd.Type == Other {
			return nil, errors.NewValidation("genre", fmt.Sprintf("invalid genre type %q", gd.Type))
		}
		if types[gd.Type] {
			return nil, errors.NewValidation("genre", fmt.Sprintf("duplicate genre %s", gd.Type))
		}
		types[gd.Type] = true

		g := Genre{Type: gd.Type}
		sum := 0.0
		for _, sd := range gd.Signals {
			if sd.ID == "" {
				return nil, errors.NewValidation("signal", fmt.Sprintf("%s signal without id", gd.Type))
			}
			if ids[sd.ID] {
				return nil, errors.NewValidation("signal "+sd.ID, "duplicate signal id")
			}
			ids[sd.ID] = true
			if sd.Weight <= 0 || sd.Weight > 1 {
				return nil, errors.NewValidation("signal "+sd.ID, fmt.Sprintf("weight %.2f outside (0,1]", sd.Weight))
			}
			s, err := sd.build()
			if err != nil {
				return nil, err
			}
			if ks, ok := s.(*KeywordSignal); ok {
				for _, term := range ks.Terms.Terms() {
					if owner, taken := owners[term]; taken && owner != gd.Type {
						return nil, errors.NewValidation("signal "+sd.ID, fmt.Sprintf("term %q already signals %s", term, owner))
					}
					owners[term] = gd.Type
				}
			}
			sum += sd.Weight
			g.Signals = append(g.Signals, s)
		}
		if math.Abs(sum-1) > weightTolerance {
			return nil, errors.NewValidation("genre "+string(gd.Type), fmt.Sprintf("signal weights sum to %.3f, want 1", sum))
		}
		d.Genres = append(d.Genres, g)
	}

	n := doc.Narrative
	for name, terms := range map[string][]string{
		"speech_verbs": n.SpeechVerbs,
		"pronouns":     n.Pronouns,
		"descriptive":  n.Descriptive,
		"action":       n.Action,
	} {
		if len(terms) == 0 {
			return nil, errors.NewValidation("narrative."+name, "empty lexicon")
		}
	}
	d.Narrative = Lexicons{
		SpeechVerbs: lexicon.NewSet(n.SpeechVerbs...),
		Pronouns:    lexicon.NewSet(n.Pronouns...),
		Descriptive: lexicon.NewSet(n.Descriptive...),
		Action:      lexicon.NewSet(n.Action...),
	}

	if err := d.buildCanonical(&doc.CanonicalWorks); err != nil {
		return nil, err
	}
	return d, nil
}

// buildCanonical reads the canonical_works mapping, keeping document order so
// lookups are deterministic.
func (d *Dictionary) buildCanonical(node *yaml.Node) error {
	d.canonical = make(map[string]lexicon.Set)
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.NewValidation("canonical_works", "must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var toks []string
		if err := node.Content[i+1].Decode(&toks); err != nil {
			return &errors.ParseError{Format: "pattern dictionary", Message: "canonical_works." + name, Err: err}
		}
		if len(toks) == 0 {
			return errors.NewValidation("canonical_works."+name, "no filename tokens")
		}
		d.canonical[name] = lexicon.NewSet(toks...)
		d.order = append(d.order, name)
	}
	return nil
}
