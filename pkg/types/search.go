// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the grey-lit-search pipeline.
package types

import "strings"

// Engine identifies which search results page layout a query produces.
type Engine string

const (
	// EngineGeneral is the regular Google web search.
	EngineGeneral Engine = "google"
	// EngineScholar is Google Scholar.
	EngineScholar Engine = "scholar"
)

// EngineForURL picks the engine variant from the query URL. Any URL on a
// scholar.google host is treated as Scholar; everything else is general web.
func EngineForURL(rawURL string) Engine {
	if strings.Contains(rawURL, "scholar.google") {
		return EngineScholar
	}
	return EngineGeneral
}

// SearchResult is a single parsed search hit. Results are produced by the
// result iterator and consumed exactly once by the retrieval stage.
type SearchResult struct {
	// Title is the hit title as shown on the results page.
	Title string `json:"title" yaml:"title"`

	// PrimaryLink is the URL to download or record.
	PrimaryLink string `json:"primary_link" yaml:"primary_link"`

	// DoDownload reports whether PrimaryLink points at a document that
	// should be fetched (typically a PDF) rather than a web page.
	DoDownload bool `json:"do_download" yaml:"do_download"`
}
