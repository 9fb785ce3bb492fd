package unit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/core/verse"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const epicText = `Valmiki Ramayana, Ayodhya Kanda
-----
Ram_2,1.1 In the city of Ayodhya king Dasaratha ruled with great glory
Ram_2,1.2 Rama the eldest son was loved by all the people of the realm
Ram_2,1.3 Kaikeyi the queen remembered the two boons granted long ago
Ram_2,1.4 Dasaratha said: "Ask what you wish and it shall be granted"
Ram_2,1.5 Kaikeyi replied: "Let Bharata be crowned and Rama go to the forest"
Ram_2,2.1 Hearing these words the king fell down in grief upon the floor
Ram_2,2.2 Rama said: "Father, I shall go to the forest as you command"
Ram_2,2.3 Sita replied: "Where you go, my lord, there I shall follow"
Ram_2,2.4 Lakshmana said: "I too shall go, brother, and guard you both"
Ram_2,2.5 Rama answered: "Come then, and we three shall dwell in the forest"
Ram_2,3.1 The three departed from the city at the break of dawn
Ram_2,3.2 The people followed weeping along the royal road
Ram_2,3.3 Sumantra said: "Where shall I drive the chariot, my prince"
Ram_2,3.4 Rama replied: "Drive us south toward the river Ganga"
Ram_2,3.5 They crossed the river and entered the great forest
`

const crossingText = `Ram_2,1.1 the prince stood at the gate of the city
Ram_2,1.2 then the charioteer spoke these words:
Ram_2,2.1 "the horses are ready, my lord, let us depart"
Ram_2,2.2 the prince mounted the chariot and they departed
`

func mustRef(t *testing.T, marker string) *verse.Reference {
	t.Helper()
	ref, err := verse.ParseMarker(marker)
	if err != nil {
		t.Fatalf("ParseMarker(%q) error = %v", marker, err)
	}
	return &ref
}

func refs(u *LogicalUnit) []string {
	out := make([]string, len(u.Verses))
	for i, v := range u.Verses {
		out[i] = v.Ref.String()
	}
	return out
}

func checkShape(t *testing.T, u *LogicalUnit, opts Options) {
	t.Helper()
	if u.VerseRange.Count != len(u.Verses) {
		t.Errorf("VerseRange.Count = %d, len(Verses) = %d", u.VerseRange.Count, len(u.Verses))
	}
	if u.VerseRange.Count < opts.MinVerses || u.VerseRange.Count > opts.MaxVerses {
		t.Errorf("VerseRange.Count = %d, want within [%d, %d]", u.VerseRange.Count, opts.MinVerses, opts.MaxVerses)
	}
	if lines := strings.Count(u.Sanskrit, "\n") + 1; lines != len(u.Verses) {
		t.Errorf("Sanskrit has %d lines, want %d", lines, len(u.Verses))
	}
	for _, v := range u.Verses[1:] {
		if !v.Ref.SameBook(u.Verses[0].Ref) {
			t.Errorf("verse %s crosses the book of %s", v.Ref, u.Verses[0].Ref)
		}
	}
}

func TestExtractDialogue(t *testing.T) {
	e := MustNew(DefaultOptions())
	u := e.Extract(epicText, "Valmiki_Ramayana.txt", mustRef(t, "Ram_2,2.3"))
	if u == nil {
		t.Fatal("Extract() = nil, want unit")
	}
	checkShape(t, u, e.Options())

	if u.Reference != "Ram 2.2.2–5" {
		t.Errorf("Reference = %q, want %q", u.Reference, "Ram 2.2.2–5")
	}
	if u.NarrativeType != Dialogue {
		t.Errorf("NarrativeType = %s, want dialogue", u.NarrativeType)
	}
	want := VerseRange{Start: 2, End: 5, Count: 4}
	if u.VerseRange != want {
		t.Errorf("VerseRange = %+v, want %+v", u.VerseRange, want)
	}
	if !strings.HasPrefix(u.Sanskrit, "Rama said:") {
		t.Errorf("Sanskrit = %q, want to start with the opening turn", u.Sanskrit)
	}
}

func TestExtractReplyIncludesEarlierTurn(t *testing.T) {
	tests := []struct {
		anchor string
		want   string
	}{
		{"Ram_2,3.4", "Ram 2.3.3–5"},
		{"Ram_2,2.5", "Ram 2.2.2–5"},
		{"Ram_2,2.4", "Ram 2.2.2–5"},
	}

	e := MustNew(DefaultOptions())
	for _, tt := range tests {
		u := e.Extract(epicText, "Ram.txt", mustRef(t, tt.anchor))
		if u == nil {
			t.Fatalf("Extract(%s) = nil, want unit", tt.anchor)
		}
		if u.Reference != tt.want {
			t.Errorf("Extract(%s) Reference = %q, want %q", tt.anchor, u.Reference, tt.want)
		}
		if u.NarrativeType != Dialogue {
			t.Errorf("Extract(%s) NarrativeType = %s, want dialogue", tt.anchor, u.NarrativeType)
		}
	}
}

func TestExtractOpenSpeechPullsSpeakerBack(t *testing.T) {
	const content = `Ram_2,4.1 the sage rested beneath the tree
Ram_2,4.2 then the charioteer spoke these words:
Ram_2,4.3 "the horses are ready, my lord, let us depart"
Ram_2,4.4 the prince mounted the chariot and they departed
`
	u := MustNew(DefaultOptions()).Extract(content, "Ram.txt", mustRef(t, "Ram_2,4.3"))
	if u == nil {
		t.Fatal("Extract() = nil, want unit")
	}
	if diff := cmp.Diff([]string{"Ram_2,4.2", "Ram_2,4.3"}, refs(u)); diff != "" {
		t.Errorf("verses mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractDanglingPronounExtendsBackward(t *testing.T) {
	const content = `Ram_3,1.1 the sage lived in a hermitage by the river
Ram_3,1.2 he welcomed rama with fruits and water
Ram_3,1.3 the forest was bright with flowers
Ram_3,1.4 the birds sang in the trees
`
	u := MustNew(DefaultOptions()).Extract(content, "Ram.txt", mustRef(t, "Ram_3,1.2"))
	if u == nil {
		t.Fatal("Extract() = nil, want unit")
	}
	if u.Reference != "Ram 3.1.1–2" {
		t.Errorf("Reference = %q, want %q", u.Reference, "Ram 3.1.1–2")
	}
	if u.NarrativeType != Description {
		t.Errorf("NarrativeType = %s, want description", u.NarrativeType)
	}
}

func TestExtractChapterCrossing(t *testing.T) {
	tests := []struct {
		name  string
		cross bool
		want  []string
		ref   string
	}{
		{"within chapter", false, []string{"Ram_2,1.1", "Ram_2,1.2"}, "Ram 2.1.1–2"},
		{"into next chapter", true, []string{"Ram_2,1.2", "Ram_2,2.1"}, "Ram 2.1.2–2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.AllowChapterCrossing = tt.cross
			u := MustNew(opts).Extract(crossingText, "Ram.txt", mustRef(t, "Ram_2,1.2"))
			if u == nil {
				t.Fatal("Extract() = nil, want unit")
			}
			if diff := cmp.Diff(tt.want, refs(u)); diff != "" {
				t.Errorf("verses mismatch (-want +got):\n%s", diff)
			}
			if u.Reference != tt.ref {
				t.Errorf("Reference = %q, want %q", u.Reference, tt.ref)
			}
		})
	}
}

func TestExtractNeverCrossesBook(t *testing.T) {
	const content = `Ram_1,77.1 the king returned to the city
Ram_1,77.2 he rejoiced with his sons:
Ram_2,1.1 "now let rama be crowned"
Ram_2,1.2 the people cheered
`
	opts := DefaultOptions()
	opts.AllowChapterCrossing = true
	e := MustNew(opts)

	tests := []struct {
		anchor string
		want   []string
	}{
		{"Ram_1,77.2", []string{"Ram_1,77.1", "Ram_1,77.2"}},
		{"Ram_2,1.1", []string{"Ram_2,1.1", "Ram_2,1.2"}},
	}
	for _, tt := range tests {
		u := e.Extract(content, "Ram.txt", mustRef(t, tt.anchor))
		if u == nil {
			t.Fatalf("Extract(%s) = nil, want unit", tt.anchor)
		}
		if diff := cmp.Diff(tt.want, refs(u)); diff != "" {
			t.Errorf("Extract(%s) verses mismatch (-want +got):\n%s", tt.anchor, diff)
		}
	}
}

func TestExtractRetriesNextAnchor(t *testing.T) {
	const content = `Ram_2,1.1 a lone verse closes the first chapter
Ram_2,2.1 rama went to the river
Ram_2,2.2 sita followed him
Ram_2,2.3 they rested by the water
`
	u := MustNew(DefaultOptions()).Extract(content, "Ram.txt", mustRef(t, "Ram_2,1.1"))
	if u == nil {
		t.Fatal("Extract() = nil, want unit from the next anchor")
	}
	if u.Reference != "Ram 2.2.1–2" {
		t.Errorf("Reference = %q, want %q", u.Reference, "Ram 2.2.1–2")
	}

	opts := DefaultOptions()
	opts.MaxAttempts = 1
	if u := MustNew(opts).Extract(content, "Ram.txt", mustRef(t, "Ram_2,1.1")); u != nil {
		t.Errorf("Extract() with one attempt = %s, want nil", u.Reference)
	}
}

func TestExtractRespectsMaxVerses(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 12; i++ {
		speaker := "Rama"
		if i%2 == 0 {
			speaker = "Sita"
		}
		fmt.Fprintf(&sb, "Ram_2,5.%d %s said: \"the road is long\"\n", i, speaker)
	}
	content := sb.String()

	for n := DefaultMinVerses; n <= VerseCeiling; n++ {
		opts := DefaultOptions()
		opts.MaxVerses = n
		u := MustNew(opts).Extract(content, "Ram.txt", mustRef(t, "Ram_2,5.1"))
		if u == nil {
			t.Fatalf("MaxVerses %d: Extract() = nil", n)
		}
		if u.VerseRange.Count != n {
			t.Errorf("MaxVerses %d: Count = %d", n, u.VerseRange.Count)
		}
		if u.NarrativeType != Dialogue {
			t.Errorf("MaxVerses %d: NarrativeType = %s, want dialogue", n, u.NarrativeType)
		}
	}
}

func TestExtractNil(t *testing.T) {
	e := MustNew(DefaultOptions())
	tests := []struct {
		name    string
		content string
		anchor  *verse.Reference
	}{
		{"no markers", "the river flows\nthe birds sing\n", nil},
		{"empty", "", nil},
		{"single verse", "Ram_2,1.1 only one verse here\n", nil},
		{"anchor not present", epicText, mustRef(t, "Ram_2,9.9")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if u := e.Extract(tt.content, "x.txt", tt.anchor); u != nil {
				t.Errorf("Extract() = %s, want nil", u.Reference)
			}
		})
	}
}

func TestExtractSeededAnchor(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	a := MustNew(opts).Extract(epicText, "Valmiki_Ramayana.txt", nil)
	b := MustNew(opts).Extract(epicText, "Valmiki_Ramayana.txt", nil)
	if a == nil || b == nil {
		t.Fatal("Extract() = nil, want unit")
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different units (-first +second):\n%s", diff)
	}
	checkShape(t, a, opts)
	for _, v := range a.Verses[1:] {
		if !v.Ref.SameChapter(a.Verses[0].Ref) {
			t.Errorf("verse %s left chapter of %s", v.Ref, a.Verses[0].Ref)
		}
	}
}

func TestChooseAnchorSkipsChapterEdges(t *testing.T) {
	grid := verse.ParseGrid(epicText)
	for seed := uint64(1); seed <= 32; seed++ {
		opts := DefaultOptions()
		opts.Seed = seed
		i := MustNew(opts).chooseAnchor(grid, "Ram.txt", epicText)
		if v := grid.Verses[i].Ref.Verse; v == 1 || v == 5 {
			t.Errorf("seed %d: anchor %s is a chapter edge", seed, grid.Verses[i].Ref)
		}
	}
}

func TestExtractAt(t *testing.T) {
	e := MustNew(DefaultOptions())

	u, err := e.ExtractAt(epicText, "Ram.txt", "Ram_2,2.3")
	if err != nil {
		t.Fatalf("ExtractAt() error = %v", err)
	}
	if u == nil || u.Reference != "Ram 2.2.2–5" {
		t.Errorf("ExtractAt() = %+v, want Ram 2.2.2–5", u)
	}

	u, err = e.ExtractAt(epicText, "Ram.txt", "Ram_2,7.1")
	if err != nil || u != nil {
		t.Errorf("ExtractAt(absent) = (%v, %v), want (nil, nil)", u, err)
	}

	_, err = e.ExtractAt(epicText, "Ram.txt", "not a marker")
	var perr *errors.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("ExtractAt(bad) error = %v, want *errors.ParseError", err)
	}
}

func TestExtractLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := MustNew(DefaultOptions(), WithLogger(logger))

	e.Extract(epicText, "Ram.txt", mustRef(t, "Ram_2,2.3"))
	out := buf.String()
	for _, want := range []string{"extracted unit", "narrative_type=dialogue", "verses=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestExtractConcurrent(t *testing.T) {
	e := MustNew(DefaultOptions())
	want := e.Extract(epicText, "Ram.txt", nil)

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			got := e.Extract(epicText, "Ram.txt", nil)
			if diff := cmp.Diff(want, got); diff != "" {
				return fmt.Errorf("unit mismatch (-want +got):\n%s", diff)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Error(err)
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		first, last verse.Reference
		want        string
	}{
		{verse.Reference{Work: "Ram", Book: 2, Chapter: 1, Verse: 2}, verse.Reference{Work: "Ram", Book: 2, Chapter: 1, Verse: 5}, "Ram 2.1.2–5"},
		{verse.Reference{Work: "Ram", Book: 2, Chapter: 1, Verse: 9}, verse.Reference{Work: "Ram", Book: 2, Chapter: 2, Verse: 2}, "Ram 2.1.9–2.2"},
		{verse.Reference{Work: "bhg", Chapter: 1, Verse: 1}, verse.Reference{Work: "bhg", Chapter: 1, Verse: 3}, "bhg 1.1–3"},
		{verse.Reference{Work: "Ram", Book: 2, Chapter: 1, Verse: 2}, verse.Reference{Work: "Ram", Book: 2, Chapter: 1, Verse: 2}, "Ram 2.1.2"},
		{verse.Reference{Chapter: 4, Verse: 1}, verse.Reference{Chapter: 4, Verse: 2}, "4.1–2"},
	}
	for _, tt := range tests {
		if got := Span(tt.first, tt.last); got != tt.want {
			t.Errorf("Span(%v, %v) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}
