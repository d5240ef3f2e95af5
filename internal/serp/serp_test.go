// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package serp

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grey-lit-search/pkg/types"
)

const sampleGoogleHTML = `<html><body>
<div id="searchform"><a href="/search?q=next"><h3>Not a result</h3></a></div>
<div id="rso">
  <div class="g">
    <a href="https://www.gov.example/reports/housing-2021.pdf"><h3>Housing   Review
      2021</h3></a>
  </div>
  <div class="g">
    <a href="/url?q=https://charity.example/programme/overview&amp;sa=U&amp;ved=abc"><h3>Programme overview</h3></a>
  </div>
  <div class="g">
    <a href="https://www.google.com/search?q=related"><h3>Related searches</h3></a>
  </div>
  <div class="g">
    <a href="https://uni.example/files/Working-Paper.PDF?dl=1"><h3>[PDF] Working paper</h3></a>
  </div>
  <div class="g"><a href="javascript:void(0)"><h3>Script link</h3></a></div>
  <div class="g"><a href="https://no-title.example/">no heading</a></div>
</div>
</body></html>`

const sampleScholarHTML = `<html><body>
<div id="gs_res_ccl_mid">
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ggs gs_fl"><div class="gs_ggsd"><div class="gs_or_ggsm">
      <a href="https://repo.example/papers/trial.pdf"><span class="gs_ctg2">[PDF]</span> repo.example</a>
    </div></div></div>
    <div class="gs_ri">
      <h3 class="gs_rt"><span class="gs_ctc"><span class="gs_ct1">[PDF]</span><span class="gs_ct2">[PDF]</span></span>
        <a href="https://journal.example/article/123">A randomised trial</a></h3>
    </div>
  </div>
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ri">
      <h3 class="gs_rt"><a href="https://publisher.example/book/9">Grey literature handbook</a></h3>
    </div>
  </div>
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ri">
      <h3 class="gs_rt"><span class="gs_ctu"><span class="gs_ct1">[CITATION]</span></span> Uncited note</h3>
    </div>
  </div>
  <div class="gs_r gs_or gs_scl">
    <div class="gs_ri">
      <h3 class="gs_rt"><a href="/scholar?cluster=42">Cluster link</a></h3>
    </div>
  </div>
</div>
</body></html>`

func collect(t *testing.T, html string, engine types.Engine) []types.SearchResult {
	t.Helper()
	seq, err := HTMLParser{}.Parse(strings.NewReader(html), engine)
	require.NoError(t, err)
	return slices.Collect(seq)
}

func TestParse_Google(t *testing.T) {
	got := collect(t, sampleGoogleHTML, types.EngineGeneral)

	want := []types.SearchResult{
		{Title: "Housing Review 2021", PrimaryLink: "https://www.gov.example/reports/housing-2021.pdf", DoDownload: true},
		{Title: "Programme overview", PrimaryLink: "https://charity.example/programme/overview", DoDownload: false},
		{Title: "Working paper", PrimaryLink: "https://uni.example/files/Working-Paper.PDF?dl=1", DoDownload: true},
	}
	assert.Equal(t, want, got)
}

func TestParse_GoogleWithoutContainer(t *testing.T) {
	html := `<html><body><a href="https://a.example/x.pdf"><h3>Only</h3></a></body></html>`
	got := collect(t, html, "")
	require.Len(t, got, 1)
	assert.True(t, got[0].DoDownload)
}

func TestParse_Scholar(t *testing.T) {
	got := collect(t, sampleScholarHTML, types.EngineScholar)

	want := []types.SearchResult{
		{Title: "A randomised trial", PrimaryLink: "https://repo.example/papers/trial.pdf", DoDownload: true},
		{Title: "Grey literature handbook", PrimaryLink: "https://publisher.example/book/9", DoDownload: false},
	}
	assert.Equal(t, want, got)
}

func TestParse_EmptyPage(t *testing.T) {
	assert.Empty(t, collect(t, "<html></html>", types.EngineGeneral))
	assert.Empty(t, collect(t, "", types.EngineScholar))
}

func TestParse_UnknownEngine(t *testing.T) {
	_, err := HTMLParser{}.Parse(strings.NewReader(sampleGoogleHTML), "bing")
	assert.Error(t, err)
}

func TestParse_SequenceIsSingleUse(t *testing.T) {
	seq, err := HTMLParser{}.Parse(strings.NewReader(sampleGoogleHTML), types.EngineGeneral)
	require.NoError(t, err)

	assert.Len(t, slices.Collect(seq), 3)
	assert.Empty(t, slices.Collect(seq))
}

func TestParse_StopsEarly(t *testing.T) {
	seq, err := HTMLParser{}.Parse(strings.NewReader(sampleGoogleHTML), types.EngineGeneral)
	require.NoError(t, err)

	var titles []string
	for r := range seq {
		titles = append(titles, r.Title)
		break
	}
	assert.Equal(t, []string{"Housing Review 2021"}, titles)
}

func TestUnwrapGoogle(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/url?q=https://a.example/b&sa=U", "https://a.example/b"},
		{"/url?url=https://a.example/c&rct=j", "https://a.example/c"},
		{"/url?sa=U", "/url?sa=U"},
		{"https://a.example/d", "https://a.example/d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unwrapGoogle(tt.href), tt.href)
	}
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Title", cleanTitle("  [PDF][PDF]   Title "))
	assert.Equal(t, "A [bracket] inside", cleanTitle("A [bracket] inside"))
	assert.Equal(t, "[unterminated", cleanTitle("[unterminated"))
}
