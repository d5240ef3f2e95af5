// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grey-lit-search/internal/pipeline"
	"github.com/pdiddy/grey-lit-search/internal/query"
	"github.com/pdiddy/grey-lit-search/internal/session"
	"github.com/pdiddy/grey-lit-search/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [search-url]",
	Short: "Search, then download or record every result",
	Long: `Run issues the search, saves the query and raw results page, and walks
the results in page order. Document links are downloaded into the result's
directory; other links are written to website_link.txt.

Pass either a full Google or Google Scholar search URL, or search terms with
--query (and --engine scholar for Google Scholar). The result count is
appended as &num=N and capped at 100.

Individual download failures never stop the run and do not change the exit
status; inspect the marker files in the session directory instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	addQueryFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addQueryFlags registers the flags that select what to search for.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "search terms, used when no search URL is given")
	cmd.Flags().String("engine", string(types.EngineGeneral), "engine for --query: google or scholar")
}

// searchURL resolves the base search URL from the positional argument or
// the --query and --engine flags.
func searchURL(cmd *cobra.Command, args []string) (string, error) {
	terms, _ := cmd.Flags().GetString("query")
	if len(args) > 0 {
		if strings.TrimSpace(terms) != "" {
			return "", fmt.Errorf("provide a search URL or --query, not both")
		}
		return args[0], nil
	}
	engine, _ := cmd.Flags().GetString("engine")
	return query.SearchURL(types.Engine(engine), terms)
}

// newSession resolves and creates the session directory for this run.
func newSession(cfg types.SessionConfig) (session.Session, error) {
	s, err := session.New(cfg.OutputDir, sessionID(cfg, time.Now()))
	if err != nil {
		return session.Session{}, err
	}
	return s, s.Ensure()
}

func runRun(cmd *cobra.Command, args []string) error {
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

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "session: %s\n", s.BaseDir)

	report, err := pipeline.Run(ctx, s, base, cfg, pipeline.Options{Log: logger}, w)
	if err != nil {
		return err
	}
	noteFailures(cmd.ErrOrStderr(), report)
	return nil
}

// noteFailures points the reviewer at the marker files when any download
// failed. The exit status stays zero either way.
func noteFailures(w io.Writer, report pipeline.Report) {
	if !report.HasFailures() {
		return
	}
	fmt.Fprintf(w, "%d downloads need manual retrieval; see the marker files under %s\n",
		report.NotFound+report.TimedOut+report.Failed, report.Session.BaseDir)
}
