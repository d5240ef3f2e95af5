package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/grey-lit-search/internal/httputil"
	"github.com/pdiddy/grey-lit-search/internal/session"
	"github.com/pdiddy/grey-lit-search/pkg/types"
)

// envKeyReplacer maps flag-style keys to environment names, so "output-dir"
// is read from GREY_LIT_SEARCH_OUTPUT_DIR.
var envKeyReplacer = strings.NewReplacer("-", "_")

// pipelineConfig assembles stage settings from flags, environment and the
// config file, in viper's precedence order.
func pipelineConfig() types.PipelineConfig {
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = httputil.DefaultTimeout
	}
	ua := viper.GetString("user-agent")
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	hc := types.HTTPConfig{Timeout: timeout, UserAgent: ua}

	return types.PipelineConfig{
		Query: types.QueryConfig{
			HTTPConfig: hc,
			Results:    viper.GetInt("results"),
		},
		Retrieval: types.RetrievalConfig{
			HTTPConfig:   hc,
			MaxRedirects: viper.GetInt("max-redirects"),
		},
		Session: types.SessionConfig{
			OutputDir:     viper.GetString("output-dir"),
			SessionID:     viper.GetString("session"),
			SummaryFormat: types.SummaryFormat(viper.GetString("summary-format")),
		},
	}
}

// sessionID returns the configured session id, or one derived from now.
func sessionID(cfg types.SessionConfig, now time.Time) string {
	if cfg.SessionID != "" {
		return cfg.SessionID
	}
	return session.NewID(now)
}
