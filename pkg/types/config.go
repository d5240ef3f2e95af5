package types

import "time"

// DefaultUserAgent is sent with every outbound request. A desktop browser
// string keeps search engines and publisher sites from rejecting the
// requests outright.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/97.0.4692.99 Safari/537.36"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds every request, including the results page fetch.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SummaryFormat selects how rows of results_summary.csv are encoded.
type SummaryFormat string

const (
	// SummaryLegacy writes "NNN, title, link" with no escaping, matching
	// summary files produced by earlier versions of the tool.
	SummaryLegacy SummaryFormat = "legacy"
	// SummaryQuoted writes RFC 4180 rows so titles containing commas or
	// quotes round-trip through spreadsheet tools.
	SummaryQuoted SummaryFormat = "quoted"
)

// QueryConfig holds settings for the query stage.
type QueryConfig struct {
	HTTPConfig `yaml:",inline"`

	// Results is the number of hits requested from the search engine
	// (default and ceiling 100).
	Results int `json:"results" yaml:"results"`
}

// RetrievalConfig holds settings for the per-result download stage.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRedirects caps redirect chains on downloads (default 10).
	MaxRedirects int `json:"max_redirects" yaml:"max_redirects"`
}

// SessionConfig locates the output tree for one run.
type SessionConfig struct {
	// OutputDir is the parent directory for session directories ("." by default).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SessionID names the session directory. The CLI defaults it to the UTC
	// start time formatted as 20060102_150405.
	SessionID string `json:"session_id" yaml:"session_id"`

	// SummaryFormat selects the results_summary.csv row encoding.
	SummaryFormat SummaryFormat `json:"summary_format" yaml:"summary_format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Query     QueryConfig     `json:"query" yaml:"query"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Session   SessionConfig   `json:"session" yaml:"session"`
}
