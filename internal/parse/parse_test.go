package parse

import (
	"encoding/json"
	"strings"
	"testing"

	"ycscout/internal/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustParse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

const nextDataPage = `<html><head><title>Acme | Y Combinator</title></head><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"company":{
  "name":"Acme",
  "website":"https://acme.dev",
  "status":{"label":"Active"},
  "primaryPartner":{"name":"Jane Doe"},
  "founded":"2019",
  "teamSize":12,
  "batch":{"name":"W21"},
  "location":{"name":"San Francisco, CA"},
  "founders":[
    {"name":"Ada Lovelace","is_active":true,"linkedin_url":"https://linkedin.com/in/ada"},
    {"name":"Charles Babbage","is_active":false,"linkedin":"https://linkedin.com/in/babbage"},
    {"full_name":"Grace Hopper","social":{"linkedin":"https://linkedin.com/in/grace"}}
  ]
}}}}
</script>
</body></html>`

const fallbackPage = `<html><body>
<div><span>Status:</span><span>Acquired</span></div>
<div><span>Primary Partner:</span><span>John Smith</span></div>
<div><span>Founded:</span><span>2015</span></div>
<div><span>Team Size:</span><span>25</span></div>
<div><span>Batch:</span><span>S16</span></div>
<div><span>Location:</span><span>New York, NY</span></div>
<a href="https://www.ycombinator.com/companies/beta">YC page</a>
<a href="https://beta.example.com">Visit site</a>
<a href="https://www.linkedin.com/in/jane">LinkedIn</a>
<div><span>Jane Roe</span><span>Founder &amp; CEO</span></div>
</body></html>`

func TestPage_NextData(t *testing.T) {
	got := Page(nextDataPage, "https://www.ycombinator.com/companies/acme")

	want := types.CompanyRecord{
		YCLink:           "https://www.ycombinator.com/companies/acme",
		ActiveFounders:   "Ada Lovelace; Grace Hopper",
		FoundersLinkedIn: "https://linkedin.com/in/ada; https://linkedin.com/in/babbage; https://linkedin.com/in/grace",
		Status:           "Active",
		Website:          "https://acme.dev",
		PrimaryPartner:   "Jane Doe",
		FoundedYear:      2019,
		TeamSize:         12,
		Batch:            "W21",
		Location:         "San Francisco, CA",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_Fallback(t *testing.T) {
	got := Page(fallbackPage, "https://www.ycombinator.com/companies/beta")

	assert.Equal(t, "Acquired", got.Status)
	assert.Equal(t, "John Smith", got.PrimaryPartner)
	assert.Equal(t, 2015, got.FoundedYear)
	assert.Equal(t, 25, got.TeamSize)
	assert.Equal(t, "S16", got.Batch)
	assert.Equal(t, "New York, NY", got.Location)
	assert.Equal(t, "https://beta.example.com", got.Website, "YC-internal anchors are skipped")
	assert.Equal(t, "https://www.linkedin.com/in/jane", got.FoundersLinkedIn)
	assert.Equal(t, "Jane Roe", got.ActiveFounders)
}

func TestPage_StructuredBeatsFallback(t *testing.T) {
	page := `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"company":{"status":"Active","website":"https://www.ycombinator.com/companies/x"}}</script>
<div><span>Status:</span><span>Dead</span></div>
<a href="https://real.example.com">site</a>
</body></html>`

	got := Page(page, "u")

	assert.Equal(t, "Active", got.Status, "structured status wins over fallback")
	assert.Equal(t, "https://real.example.com", got.Website,
		"rejected YC-internal website falls through to the fallback anchor")
}

func TestPage_Garbage(t *testing.T) {
	t.Run("broken next data JSON degrades to fallback", func(t *testing.T) {
		page := `<html><body>
<script id="__NEXT_DATA__">{not json</script>
<div><span>Batch:</span><span>W20</span></div>
</body></html>`
		got := Page(page, "u")
		assert.Equal(t, "W20", got.Batch)
	})

	t.Run("empty page yields URL-only record", func(t *testing.T) {
		got := Page("", "https://www.ycombinator.com/companies/ghost")
		assert.True(t, got.Empty())
		assert.Equal(t, "https://www.ycombinator.com/companies/ghost", got.YCLink)
	})
}

func TestHasNextData(t *testing.T) {
	assert.True(t, HasNextData(nextDataPage))
	assert.False(t, HasNextData(fallbackPage))
	assert.False(t, HasNextData("<html><body><script id=\"__NEXT_DATA__\"></script></body></html>"))
}

func TestDeepFindFirst_Deterministic(t *testing.T) {
	// "url" occurs in two sibling objects; the winner must not depend
	// on map iteration order, which changes per decode.
	payload := `{"nav":{"url":"https://aaa.example.com"},"sidebar":{"url":"https://zzz.example.com"}}`

	var want any
	for i := 0; i < 100; i++ {
		var data any
		require.NoError(t, json.Unmarshal([]byte(payload), &data))
		got := deepFindFirst(data, "url")
		require.NotNil(t, got)
		if i == 0 {
			want = got
			continue
		}
		require.Equal(t, want, got, "decode %d resolved a different value", i)
	}
	assert.Equal(t, "https://aaa.example.com", want, "sorted-key order picks the lexicographically first path")
}

func TestFromNextData_MissingScript(t *testing.T) {
	doc := mustParse(t, "<html><body><p>nothing</p></body></html>")
	_, ok := FromNextData(doc)
	require.False(t, ok)
}
