// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query builds the search engine request, fetches the results page
// and keeps an exact copy of both for the audit trail.
package query

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/grey-lit-search/internal/httputil"
	"github.com/pdiddy/grey-lit-search/internal/logging"
	"github.com/pdiddy/grey-lit-search/internal/session"
	"github.com/pdiddy/grey-lit-search/pkg/types"
)

const (
	// MaxResults is the largest page size the search engines honour.
	MaxResults = 100

	// TermFile holds the exact query URL that was issued.
	TermFile = "google-search-term.txt"
	// PageFile holds the raw results page.
	PageFile = "google-search-result.html"

	googleSearchBase  = "https://www.google.com/search"
	scholarSearchBase = "https://scholar.google.com/scholar"
)

// ClampResults returns the result count to request. Counts above
// MaxResults are capped with a warning; counts below one select MaxResults.
func ClampResults(n int, log logrus.FieldLogger) int {
	switch {
	case n > MaxResults:
		logging.OrDiscard(log).WithFields(logrus.Fields{
			"requested": n,
			"max":       MaxResults,
		}).Warn("More than 100 search results not implemented, setting to 100")
		return MaxResults
	case n < 1:
		logging.OrDiscard(log).WithFields(logrus.Fields{
			"requested": n,
			"max":       MaxResults,
		}).Warn("Search result count must be positive, setting to 100")
		return MaxResults
	default:
		return n
	}
}

// BuildURL appends the result count parameter to base. base is kept
// verbatim, so the query string the user supplied is issued unchanged.
func BuildURL(base string, results int) string {
	sep := "&"
	switch {
	case !strings.Contains(base, "?"):
		sep = "?"
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		sep = ""
	}
	return base + sep + "num=" + strconv.Itoa(results)
}

// SearchURL returns the base query URL for free-text terms on engine.
func SearchURL(engine types.Engine, terms string) (string, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return "", fmt.Errorf("query is empty: provide search terms or a search URL")
	}
	base := googleSearchBase
	switch engine {
	case types.EngineScholar:
		base = scholarSearchBase
	case types.EngineGeneral, "":
	default:
		return "", fmt.Errorf("unknown search engine %q", engine)
	}
	return base + "?" + url.Values{"q": {terms}}.Encode(), nil
}

// Page is a fetched and persisted results page.
type Page struct {
	URL       string
	Engine    types.Engine
	Requested int
	Results   int
	Body      []byte
}

// Runner issues the search request for a session.
type Runner struct {
	client *http.Client
	ua     string
	log    logrus.FieldLogger
}

// NewRunner returns a Runner. When client is nil one is built from cfg so
// that the results page fetch is bounded by the same timeout as downloads.
func NewRunner(cfg types.QueryConfig, client *http.Client, log logrus.FieldLogger) *Runner {
	if client == nil {
		client = httputil.NewClient(cfg.Timeout, 0)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	return &Runner{client: client, ua: ua, log: logging.OrDiscard(log)}
}

// Run clamps results, fetches baseURL with the count appended and writes
// the query URL and raw page into the session directory. The page is kept
// whatever the status, since an error page (a 429 for instance) is what
// explains an empty session. A non-2xx status is then returned as a
// *httputil.StatusError along with the page. Write failures are returned;
// the session cannot be audited without them.
func (r *Runner) Run(ctx context.Context, s session.Session, baseURL string, results int) (*Page, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("search URL is empty")
	}
	effective := ClampResults(results, r.log)
	queryURL := BuildURL(baseURL, effective)
	r.log.WithField("url", queryURL).Info("fetching search results")

	resp, err := httputil.Do(ctx, r.client, queryURL, r.ua)
	if err != nil {
		return nil, fmt.Errorf("fetching search results: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search results: %w", err)
	}

	page := &Page{
		URL:       queryURL,
		Engine:    types.EngineForURL(queryURL),
		Requested: results,
		Results:   effective,
		Body:      body,
	}
	if err := Save(s, page); err != nil {
		return nil, err
	}
	if err := httputil.CheckStatus(resp, queryURL); err != nil {
		r.log.WithField("status", resp.StatusCode).Error("search engine refused the query")
		return page, fmt.Errorf("fetching search results: %w", err)
	}
	return page, nil
}

// Save writes the query URL and raw page into the session directory.
func Save(s session.Session, page *Page) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	if err := os.WriteFile(s.Path(TermFile), []byte(page.URL), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", TermFile, err)
	}
	if err := os.WriteFile(s.Path(PageFile), page.Body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", PageFile, err)
	}
	return nil
}
