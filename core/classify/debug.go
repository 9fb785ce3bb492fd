package classify

import (
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperCorpus/core/fingerprint"
	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
)

// DebugReport traces a classification for tuning and tests.
type DebugReport struct {
	ID             string          `json:"id"`
	Filename       string          `json:"filename"`
	Fingerprint    string          `json:"fingerprint"`
	Features       *genre.Features `json:"features"`
	Genres         []GenreScore    `json:"genres"`
	Classification Classification  `json:"classification"`
	StartedAt      time.Time       `json:"started_at"`
	Duration       time.Duration   `json:"duration"`
}

// Genre returns the score entry for t.
func (r *DebugReport) Genre(t genre.TextType) (GenreScore, bool) {
	for _, g := range r.Genres {
		if g.Type == t {
			return g, true
		}
	}
	return GenreScore{}, false
}

// AnalyzeForDebugging classifies the text and reports every genre score with
// the patterns that matched and those that did not. The classification in
// the report is identical to what Classify returns.
func (c *Classifier) AnalyzeForDebugging(filename, content string) *DebugReport {
	start := time.Now()

	f := genre.Measure(filename, content)
	scores := c.score(f)
	report := &DebugReport{
		ID:             uuid.NewString(),
		Filename:       filename,
		Fingerprint:    fingerprint.Text(filename, content),
		Features:       f,
		Genres:         scores,
		Classification: decide(scores, f),
		StartedAt:      start,
	}
	report.Duration = time.Since(start)

	c.logger.Debug("analyzed text",
		"report", report.ID,
		"filename", filename,
		"text_type", report.Classification.TextType,
		"duration", report.Duration)
	return report
}
