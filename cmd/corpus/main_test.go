package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
	"github.com/FocuswithJustin/JuniperCorpus/core/legacy"
	"github.com/FocuswithJustin/JuniperCorpus/core/unit"
	"github.com/FocuswithJustin/JuniperCorpus/internal/config"
)

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

const hymnalText = `RvKh_1,1.1 agni we praise, bright priest of the sacrifice
svaha to agni, svaha
RvKh_1,1.2 indra drinks the soma at the morning oblation
svaha to agni, svaha
RvKh_1,1.3 varuna and mitra guard the order of the hymn
svaha to agni, svaha
`

const gitaText = `bhg 1.1 dhrtarastra uvaca: in the field of dharma, at kuruksetra, what did my sons and the sons of pandu do, o sanjaya?
bhg 1.2 sanjaya uvaca: seeing the army of the pandavas arrayed, the prince approached his teacher and spoke these words
bhg 1.3 behold, o teacher, this mighty army arrayed by your wise disciple; thus begins the knowledge of the self
`

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func createCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	createTestFile(t, dir, "Valmiki_Ramayana.txt", epicText)
	createTestFile(t, dir, "RvKh.txt", hymnalText)
	createTestFile(t, dir, "Bhagvad_Gita.txt", gitaText)
	return dir
}

// execute runs the CLI and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if want := "corpus version " + version + " (dictionary v1)\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestLegacyCmds(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"to with gita hint", []string{"legacy", "to", "PHILOSOPHICAL", "--filename", "Bhagvad_Gita.txt"}, "gita"},
		{"to without hint", []string{"legacy", "to", "philosophical"}, "upanishad"},
		{"to epic", []string{"legacy", "to", "EPIC"}, "epic"},
		{"from veda", []string{"legacy", "from", "veda"}, "HYMNAL"},
		{"from gita", []string{"legacy", "from", "Gita"}, "PHILOSOPHICAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}

	if _, _, err := execute(t, "legacy", "to", "POEM"); err == nil {
		t.Error("legacy to POEM error = nil")
	}
	if _, _, err := execute(t, "legacy", "from", "tantra"); err == nil {
		t.Error("legacy from tantra error = nil")
	}
}

func TestClassifyCmdJSON(t *testing.T) {
	dir := createCorpus(t)

	out, _, err := execute(t, "classify", "--json", "--jobs", "2", dir)
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}

	var results []classifyResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	want := []struct {
		filename string
		textType genre.TextType
		legacy   legacy.Type
	}{
		{"Bhagvad_Gita.txt", genre.Philosophical, legacy.Gita},
		{"RvKh.txt", genre.Hymnal, legacy.Veda},
		{"Valmiki_Ramayana.txt", genre.Epic, legacy.Epic},
	}
	for i, w := range want {
		r := results[i]
		if r.Filename != w.filename {
			t.Errorf("results[%d].Filename = %q, want %q", i, r.Filename, w.filename)
			continue
		}
		if r.Result == nil || r.Result.TextType != w.textType {
			t.Errorf("%s: classification = %+v, want %s", w.filename, r.Result, w.textType)
			continue
		}
		if r.Legacy != w.legacy {
			t.Errorf("%s: Legacy = %s, want %s", w.filename, r.Legacy, w.legacy)
		}
	}
}

func TestClassifyCmdText(t *testing.T) {
	dir := createCorpus(t)
	path := filepath.Join(dir, "RvKh.txt")

	out, _, err := execute(t, "classify", "--reasoning", path)
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}
	if !strings.Contains(out, "HYMNAL") || !strings.Contains(out, "veda") {
		t.Errorf("output missing HYMNAL/veda:\n%s", out)
	}
	if !strings.Contains(out, "hymnal.refrain") {
		t.Errorf("output missing reasoning:\n%s", out)
	}
}

func TestClassifyCmdLogsBatch(t *testing.T) {
	dir := createCorpus(t)

	_, stderr, err := execute(t, "classify", "--log-format", "json", dir)
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}
	for _, want := range []string{`"msg":"batch started"`, `"msg":"batch finished"`, `"files":3`, `"run_id":`} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %s:\n%s", want, stderr)
		}
	}

	empty := t.TempDir()
	_, stderr, err = execute(t, "classify", empty)
	if err != nil {
		t.Fatalf("classify of empty dir error = %v", err)
	}
	if !strings.Contains(stderr, "no corpus files found") {
		t.Errorf("stderr missing empty-dir warning:\n%s", stderr)
	}
}

func TestClassifyCmdReportsBadFiles(t *testing.T) {
	dir := createCorpus(t)
	createTestFile(t, dir, "broken.txt", "\x00\x01\x02\x03")

	out, stderr, err := execute(t, "classify", dir)
	if err == nil || !strings.Contains(err.Error(), "1 of 4 files") {
		t.Errorf("classify error = %v, want 1 of 4 files", err)
	}
	if !strings.Contains(out, "broken.txt") || !strings.Contains(out, "ERROR") {
		t.Errorf("output missing failed file:\n%s", out)
	}
	if !strings.Contains(out, "EPIC") {
		t.Errorf("good files not classified:\n%s", out)
	}
	if !strings.Contains(stderr, "corpus_error") {
		t.Errorf("stderr missing corpus_error:\n%s", stderr)
	}
}

func TestClassifyCmdSkipsDuplicates(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "RvKh.txt", hymnalText)

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(hymnalText)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	createTestFile(t, dir, "RvKh.txt.xz", buf.String())

	out, _, err := execute(t, "classify", "--json", "--jobs", "1", dir)
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}
	var results []classifyResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Cached || !results[1].Cached {
		t.Errorf("Cached = [%v %v], want [false true]", results[0].Cached, results[1].Cached)
	}
	if results[1].Filename != "RvKh.txt" {
		t.Errorf("Filename = %q, want RvKh.txt", results[1].Filename)
	}
	if results[0].Result.TextType != results[1].Result.TextType {
		t.Errorf("TextType = %s and %s, want equal", results[0].Result.TextType, results[1].Result.TextType)
	}
}

func TestExtractCmd(t *testing.T) {
	dir := createCorpus(t)
	path := filepath.Join(dir, "Valmiki_Ramayana.txt")

	out, _, err := execute(t, "extract", "--at", "Ram_2,2.3", "--json", path)
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}
	var u unit.LogicalUnit
	if err := json.Unmarshal([]byte(out), &u); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if u.Reference != "Ram 2.2.2–5" || u.NarrativeType != unit.Dialogue {
		t.Errorf("unit = %s %s, want Ram 2.2.2–5 dialogue", u.Reference, u.NarrativeType)
	}

	out, _, err = execute(t, "extract", "--at", "Ram_2,2.3", path)
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}
	if !strings.HasPrefix(out, "Ram 2.2.2–5 (Ayodhya Kanda) [dialogue, 4 verses]") {
		t.Errorf("output = %q", out)
	}

	out, _, err = execute(t, "extract", "--seed", "9", "--max-verses", "3", "--json", path)
	if err != nil {
		t.Fatalf("seeded extract error = %v", err)
	}
	if err := json.Unmarshal([]byte(out), &u); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if u.VerseRange.Count < unit.DefaultMinVerses || u.VerseRange.Count > 3 {
		t.Errorf("Count = %d, want within [2, 3]", u.VerseRange.Count)
	}
}

func TestExtractCmdErrors(t *testing.T) {
	dir := t.TempDir()
	prose := createTestFile(t, dir, "prose.txt", "no verse markers here\njust prose\n")
	epic := createTestFile(t, dir, "Ram.txt", epicText)

	tests := []struct {
		name string
		args []string
	}{
		{"no unit", []string{"extract", prose}},
		{"bad marker", []string{"extract", "--at", "not a marker", epic}},
		{"absent anchor", []string{"extract", "--at", "Ram_2,9.9", epic}},
		{"invalid options", []string{"extract", "--max-verses", "11", epic}},
		{"missing file", []string{"extract", filepath.Join(dir, "absent.txt")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("error = nil")
			}
		})
	}
}

func TestDebugCmd(t *testing.T) {
	dir := createCorpus(t)

	out, _, err := execute(t, "debug", filepath.Join(dir, "RvKh.txt"))
	if err != nil {
		t.Fatalf("debug error = %v", err)
	}
	var report struct {
		ID             string `json:"id"`
		Fingerprint    string `json:"fingerprint"`
		Classification struct {
			TextType string `json:"text_type"`
		} `json:"classification"`
		Genres []struct {
			Type string `json:"type"`
		} `json:"genres"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if report.ID == "" || len(report.Fingerprint) != 64 {
		t.Errorf("report id/fingerprint = %q/%q", report.ID, report.Fingerprint)
	}
	if report.Classification.TextType != "HYMNAL" {
		t.Errorf("TextType = %s, want HYMNAL", report.Classification.TextType)
	}
	if len(report.Genres) != 4 {
		t.Errorf("len(Genres) = %d, want 4", len(report.Genres))
	}
}

func TestConfigCmds(t *testing.T) {
	dir := t.TempDir()
	cfgPath := createTestFile(t, dir, "corpus.yaml", "extract:\n  max_verses: 5\nbatch:\n  jobs: 3\n")

	out, stderr, err := execute(t, "--config", cfgPath, "--log-level", "debug", "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(stderr, "configuration loaded") {
		t.Errorf("stderr missing debug record:\n%s", stderr)
	}
	for _, want := range []string{"level: debug", "max_verses: 5", "jobs: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	dest := filepath.Join(dir, "out", "corpus.yaml")
	_, stderr, err = execute(t, "--config", cfgPath, "config", "init", dest)
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(stderr, "wrote config") {
		t.Errorf("stderr missing write record:\n%s", stderr)
	}
	written, err := config.LoadFromFile(dest)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if written.Extract.MaxVerses != 5 || written.Batch.Jobs != 3 {
		t.Errorf("written config = %+v", written)
	}
}

func TestGlobalFlagErrors(t *testing.T) {
	dir := t.TempDir()
	bad := createTestFile(t, dir, "bad.yaml", "batch:\n  jobs: 100\n")

	tests := []struct {
		name string
		args []string
	}{
		{"bad log level", []string{"--log-level", "loud", "version"}},
		{"invalid config", []string{"--config", bad, "version"}},
		{"missing dictionary", []string{"--dictionary", filepath.Join(dir, "none.yaml"), "version"}},
		{"unknown command", []string{"translate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("error = nil")
			}
		})
	}
}
