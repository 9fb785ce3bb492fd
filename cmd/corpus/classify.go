package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/JuniperCorpus/core/classify"
	"github.com/FocuswithJustin/JuniperCorpus/core/fingerprint"
	"github.com/FocuswithJustin/JuniperCorpus/core/legacy"
	"github.com/FocuswithJustin/JuniperCorpus/internal/cache"
	"github.com/FocuswithJustin/JuniperCorpus/internal/corpusio"
	"github.com/FocuswithJustin/JuniperCorpus/internal/logging"
)

// ClassifyCmd classifies corpus files, fanning directories out over a bounded
// worker group.
type ClassifyCmd struct {
	Paths     []string `arg:"" help:"Corpus files or directories" type:"existingpath"`
	Jobs      int      `help:"Files classified concurrently (default from config)" short:"j"`
	JSON      bool     `help:"Print results as JSON"`
	Reasoning bool     `help:"Include the reasoning trail in text output" short:"r"`
}

// classifyResult is one line of batch output.
type classifyResult struct {
	Path       string                   `json:"path"`
	Filename   string                   `json:"filename"`
	Format     string                   `json:"format,omitempty"`
	Legacy     legacy.Type              `json:"legacy,omitempty"`
	Result     *classify.Classification `json:"classification,omitempty"`
	Cached     bool                     `json:"cached,omitempty"`
	Error      string                   `json:"error,omitempty"`
	DurationMS int64                    `json:"duration_ms"`
}

func (c *ClassifyCmd) Run(e *env) error {
	jobs := e.cfg.Batch.Jobs
	if c.Jobs > 0 {
		jobs = c.Jobs
	}

	var paths []string
	for _, p := range c.Paths {
		found, err := corpusio.Walk(e.ctx, p, e.cfg.Batch.Extensions)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			logging.Warn("no corpus files found", "path", p, "extensions", e.cfg.Batch.Extensions)
		}
		paths = append(paths, found...)
	}

	ctx := logging.WithRunID(e.ctx, uuid.NewString())
	classifier := classify.New(e.dict, classify.WithLogger(e.logger))
	mapper := legacy.NewMapper(e.dict)
	// Identical texts, such as Ram.txt next to Ram.txt.xz, are classified once.
	seen := cache.New[string, classify.Classification]()

	logging.InfoContext(ctx, "batch started", "files", len(paths), "jobs", jobs)

	results := make([]classifyResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			start := time.Now()
			r := classifyResult{Path: path}
			t, err := corpusio.ReadFile(gctx, path)
			if err != nil {
				// A bad file is reported, not fatal to the batch.
				logging.CorpusError(gctx, path, "read", err)
				r.Error = err.Error()
				results[i] = r
				return nil
			}

			got, hit := seen.Do(fingerprint.Text(t.Filename, t.Content), func() classify.Classification {
				return classifier.Classify(t.Filename, t.Content)
			})
			r.Cached = hit
			r.Filename = t.Filename
			r.Format = string(t.Format)
			r.Result = &got
			r.Legacy = mapper.ToLegacyWithContext(got.TextType, t.Filename)
			r.DurationMS = time.Since(start).Milliseconds()
			logging.Classification(gctx, t.Filename, string(got.TextType), got.Confidence, time.Since(start))
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.ErrorContext(ctx, "batch aborted", "error", err.Error())
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	logging.InfoContext(ctx, "batch finished",
		"files", len(results),
		"failed", failed,
		"duplicates", seen.Hits())

	if err := c.print(e, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(results))
	}
	return nil
}

func (c *ClassifyCmd) print(e *env, results []classifyResult) error {
	if c.JSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s\tERROR\t%s\n", r.Path, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", r.Path, r.Result.TextType, r.Result.Confidence, r.Legacy)
		if c.Reasoning {
			for _, line := range r.Result.Reasoning {
				fmt.Fprintf(w, "\t  %s\n", line)
			}
		}
	}
	return w.Flush()
}
