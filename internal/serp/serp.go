// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package serp turns a raw search engine results page into result records.
// It understands the Google web and Google Scholar layouts.
package serp

import (
	"fmt"
	"io"
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/grey-lit-search/pkg/types"
)

// Parser produces the result records of a results page. The returned
// sequence is lazy and can be ranged over once; later ranges yield nothing.
type Parser interface {
	Parse(r io.Reader, engine types.Engine) (iter.Seq[types.SearchResult], error)
}

// HTMLParser is the goquery-backed Parser.
type HTMLParser struct{}

var _ Parser = HTMLParser{}

var (
	googleBase  = &url.URL{Scheme: "https", Host: "www.google.com"}
	scholarBase = &url.URL{Scheme: "https", Host: "scholar.google.com"}
)

// Parse reads the whole page and returns its results in page order.
func (HTMLParser) Parse(r io.Reader, engine types.Engine) (iter.Seq[types.SearchResult], error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	var (
		nodes   *goquery.Selection
		extract func(*goquery.Selection) (types.SearchResult, bool)
	)
	switch engine {
	case types.EngineScholar:
		nodes = doc.Find("div.gs_r")
		extract = scholarResult
	case types.EngineGeneral, "":
		nodes = searchScope(doc).Find("a:has(h3)")
		extract = googleResult
	default:
		return nil, fmt.Errorf("unknown search engine %q", engine)
	}

	consumed := false
	return func(yield func(types.SearchResult) bool) {
		if consumed {
			return
		}
		consumed = true
		for i := range nodes.Nodes {
			res, ok := extract(nodes.Eq(i))
			if !ok {
				continue
			}
			if !yield(res) {
				return
			}
		}
	}, nil
}

// searchScope narrows a Google page to its organic results container when
// one is present.
func searchScope(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"#rso", "#search", "#main"} {
		if s := doc.Find(sel); s.Length() > 0 {
			return s.First()
		}
	}
	return doc.Selection
}

func googleResult(a *goquery.Selection) (types.SearchResult, bool) {
	href, _ := a.Attr("href")
	link, ok := resolve(googleBase, unwrapGoogle(href))
	if !ok {
		return types.SearchResult{}, false
	}
	return types.SearchResult{
		Title:       cleanTitle(a.Find("h3").First().Text()),
		PrimaryLink: link,
		DoDownload:  isPDF(link),
	}, true
}

// scholarResult prefers the full-text side link, which Scholar only shows
// for documents it can serve directly.
func scholarResult(rec *goquery.Selection) (types.SearchResult, bool) {
	h3 := rec.Find("h3.gs_rt").First()
	title := cleanTitle(h3.Text())

	if href, ok := rec.Find("div.gs_or_ggsm a[href], div.gs_ggs a[href]").First().Attr("href"); ok {
		if link, ok := resolve(scholarBase, href); ok {
			return types.SearchResult{Title: title, PrimaryLink: link, DoDownload: true}, true
		}
	}
	if href, ok := h3.Find("a[href]").First().Attr("href"); ok {
		if link, ok := resolve(scholarBase, href); ok {
			return types.SearchResult{Title: title, PrimaryLink: link, DoDownload: false}, true
		}
	}
	return types.SearchResult{}, false
}

// unwrapGoogle strips the /url?q= redirect Google wraps around result links.
func unwrapGoogle(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := u.Query()
	for _, key := range []string{"q", "url"} {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return href
}

// resolve makes href absolute against base and keeps only http(s) links
// that leave the search engine itself.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u = base.ResolveReference(u)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == base.Host && (strings.HasPrefix(u.Path, "/search") || strings.HasPrefix(u.Path, "/scholar")) {
		return "", false
	}
	return u.String(), true
}

func isPDF(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// cleanTitle collapses whitespace and drops leading type tags such as
// "[PDF]" or "[HTML]".
func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			break
		}
		s = strings.TrimSpace(s[end+1:])
	}
	return s
}
