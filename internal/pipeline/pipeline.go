// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one search session end to end: query, parse, and
// for every result in page order a summary row followed by a download or
// a recorded link.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/grey-lit-search/internal/logging"
	"github.com/pdiddy/grey-lit-search/internal/query"
	"github.com/pdiddy/grey-lit-search/internal/retrieve"
	"github.com/pdiddy/grey-lit-search/internal/serp"
	"github.com/pdiddy/grey-lit-search/internal/session"
	"github.com/pdiddy/grey-lit-search/internal/summary"
	"github.com/pdiddy/grey-lit-search/pkg/types"
)

// Options carries the collaborators of a run. Zero values select the
// defaults: the goquery parser, clients built from the config, a discarding
// logger and the wall clock.
type Options struct {
	Parser serp.Parser
	Client *http.Client
	Log    logrus.FieldLogger
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Parser == nil {
		o.Parser = serp.HTMLParser{}
	}
	o.Log = logging.OrDiscard(o.Log)
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Report holds the outcome of a run.
type Report struct {
	Session session.Session
	Page    *query.Page
	session.Counts
}

// HasFailures reports whether any download ended in a marker file.
func (r Report) HasFailures() bool {
	return r.NotFound+r.TimedOut+r.Failed > 0
}

// Run executes the whole session. Per-result download failures are
// recorded on disk and never returned; only errors that stop results from
// being recorded at all (query fetch, summary or link writes) abort the
// run. The manifest is written in both cases.
func Run(ctx context.Context, s session.Session, searchURL string, cfg types.PipelineConfig, opts Options, w io.Writer) (Report, error) {
	opts = opts.withDefaults()
	report := Report{Session: s}

	if err := s.Ensure(); err != nil {
		return report, err
	}
	manifest := session.NewManifest(s, opts.Now())
	manifest.Requested = cfg.Query.Results

	err := run(ctx, s, searchURL, cfg, opts, w, &report)

	if report.Page != nil {
		manifest.QueryURL = report.Page.URL
		manifest.Engine = string(report.Page.Engine)
		manifest.Effective = report.Page.Results
	}
	manifest.Outcomes = report.Counts
	manifest.Finished = opts.Now().UTC()
	if err != nil {
		manifest.Error = err.Error()
	}
	if merr := s.WriteManifest(manifest); merr != nil {
		opts.Log.WithError(merr).Error("writing session manifest")
		if err == nil {
			err = merr
		}
	}
	return report, err
}

func run(ctx context.Context, s session.Session, searchURL string, cfg types.PipelineConfig, opts Options, w io.Writer, report *Report) error {
	page, err := query.NewRunner(cfg.Query, opts.Client, opts.Log).Run(ctx, s, searchURL, cfg.Query.Results)
	report.Page = page
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "query:   %s (%s, %d results requested)\n", page.URL, page.Engine, page.Results)

	results, err := opts.Parser.Parse(bytes.NewReader(page.Body), page.Engine)
	if err != nil {
		return err
	}

	log, err := summary.Open(s.BaseDir, cfg.Session.SummaryFormat)
	if err != nil {
		return err
	}
	disp := retrieve.New(s.BaseDir, cfg.Retrieval, opts.Client, opts.Log)

	counts, err := Process(ctx, disp, log, results, w)
	report.Counts = counts
	return err
}

// Process walks results in order. For each one it appends the summary row
// first, so the log reflects what was seen even when the retrieval that
// follows fails, then downloads or records the link. Cancelling ctx stops
// the walk with ctx's error; results not reached get no row and no artifact.
func Process(ctx context.Context, d *retrieve.Dispatcher, log *summary.Log, results iter.Seq[types.SearchResult], w io.Writer) (session.Counts, error) {
	var counts session.Counts
	index := 0
	for res := range results {
		if err := ctx.Err(); err != nil {
			return counts, fmt.Errorf("stopped before result %s: %w", session.FormatIndex(index), err)
		}
		if err := log.Append(index, res.Title, res.PrimaryLink); err != nil {
			return counts, err
		}

		var out retrieve.Outcome
		if res.DoDownload {
			out = d.Fetch(ctx, index, res.PrimaryLink)
			if out.Kind == retrieve.Canceled {
				return counts, fmt.Errorf("stopped during result %s: %w", session.FormatIndex(index), out.Err)
			}
		} else {
			var err error
			out, err = d.RecordLink(index, res.PrimaryLink)
			if err != nil {
				return counts, err
			}
		}

		tally(&counts, out.Kind)
		fmt.Fprintf(w, "%-8s %s %s\n", out.Kind.String()+":", session.FormatIndex(index), res.PrimaryLink)
		index++
	}

	fmt.Fprintf(w, "\nBatch summary: %d saved, %d linked, %d not found, %d timed out, %d failed (total: %d)\n",
		counts.Saved, counts.Linked, counts.NotFound, counts.TimedOut, counts.Failed, counts.Total())
	return counts, nil
}

func tally(c *session.Counts, k retrieve.Kind) {
	switch k {
	case retrieve.Saved:
		c.Saved++
	case retrieve.NotFound:
		c.NotFound++
	case retrieve.TimedOut:
		c.TimedOut++
	case retrieve.Failed:
		c.Failed++
	case retrieve.Linked:
		c.Linked++
	}
}
