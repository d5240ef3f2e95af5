package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grey-lit-search/internal/retrieve"
	"github.com/pdiddy/grey-lit-search/internal/session"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <link>",
	Short: "Download one link into a result directory of an existing session",
	Long: `Fetch makes a single download attempt for link into <session>/<index>/,
classifying failures exactly like run does. Use it to follow up on a marker
file once the remote site is reachable again. --session is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("index", 0, "result index whose directory receives the file")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if cfg.Session.SessionID == "" {
		return fmt.Errorf("--session is required for fetch")
	}
	index, _ := cmd.Flags().GetInt("index")
	if index < 0 {
		return fmt.Errorf("--index must not be negative")
	}

	s, err := session.New(cfg.Session.OutputDir, cfg.Session.SessionID)
	if err != nil {
		return err
	}
	if err := s.Ensure(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := retrieve.New(s.BaseDir, cfg.Retrieval, nil, logger).Fetch(ctx, index, args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", out.Kind, out.Path)
	return nil
}
