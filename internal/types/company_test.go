package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLooseInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2019", 2019, true},
		{" 42 ", 42, true},
		{"Founded 2019", 2019, true},
		{"~25 people", 25, true},
		{"", 0, false},
		{"unknown", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseLooseInt(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestJoinDistinct(t *testing.T) {
	t.Run("dedupes preserving order", func(t *testing.T) {
		got := JoinDistinct([]string{"Ada", "Grace", "Ada", " Grace "})
		assert.Equal(t, "Ada; Grace", got)
	})

	t.Run("skips blanks", func(t *testing.T) {
		got := JoinDistinct([]string{"", "  ", "Solo"})
		assert.Equal(t, "Solo", got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", JoinDistinct(nil))
	})
}

func TestCompanyRecord_Merge(t *testing.T) {
	left := CompanyRecord{
		YCLink:  "https://www.ycombinator.com/companies/acme",
		Status:  "Active",
		Website: "https://acme.dev",
	}
	right := CompanyRecord{
		Status:      "Inactive", // must not override
		Location:    "San Francisco, CA",
		FoundedYear: 2021,
	}

	got := left.Merge(right)

	assert.Equal(t, "Active", got.Status)
	assert.Equal(t, "https://acme.dev", got.Website)
	assert.Equal(t, "San Francisco, CA", got.Location)
	assert.Equal(t, 2021, got.FoundedYear)
}

func TestCompanyRecord_Row(t *testing.T) {
	rec := CompanyRecord{
		YCLink:      "https://www.ycombinator.com/companies/acme",
		Batch:       "W21",
		FoundedYear: 2020,
	}

	row := rec.Row()
	require.Len(t, row, len(Columns))
	assert.Equal(t, rec.YCLink, row[0])
	assert.Equal(t, "2020", row[6])
	assert.Equal(t, "", row[7], "zero team size renders empty")
	assert.Equal(t, "W21", row[8])
}

func TestCompanyRecord_Empty(t *testing.T) {
	assert.True(t, CompanyRecord{YCLink: "x"}.Empty())
	assert.False(t, CompanyRecord{YCLink: "x", TeamSize: 3}.Empty())
}

func TestCompanyRecord_JSONKeys(t *testing.T) {
	rec := CompanyRecord{YCLink: "u", Status: "Active"}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"YC Link":"u","Status":"Active"}`, string(data))
}
