package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grey-lit-search/internal/query"
	"github.com/pdiddy/grey-lit-search/internal/serp"
	"github.com/pdiddy/grey-lit-search/internal/session"
)

var queryCmd = &cobra.Command{
	Use:   "query [search-url]",
	Short: "Search and save the results page without downloading",
	Long: `Query issues the search and saves google-search-term.txt and
google-search-result.html into a new session directory, then lists the
parsed results. Nothing is downloaded, so a reviewer can check a search
before committing to a full run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	addQueryFlags(queryCmd)
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	base, err := searchURL(cmd, args)
	if err != nil {
		return err
	}

	cfg := pipelineConfig()
	s, err := newSession(cfg.Session)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	page, err := query.NewRunner(cfg.Query, nil, logger).Run(ctx, s, base, cfg.Query.Results)
	if err != nil {
		return err
	}

	results, err := serp.HTMLParser{}.Parse(bytes.NewReader(page.Body), page.Engine)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "session: %s\nquery:   %s\n\n", s.BaseDir, page.URL)
	n := 0
	for r := range results {
		kind := "link"
		if r.DoDownload {
			kind = "pdf"
		}
		fmt.Fprintf(w, "%s  %-4s  %s\n      %s\n", session.FormatIndex(n), kind, r.Title, r.PrimaryLink)
		n++
	}
	fmt.Fprintf(w, "\n%d results\n", n)
	return nil
}
