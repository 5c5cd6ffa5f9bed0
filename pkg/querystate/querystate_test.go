package querystate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
		want QueryConfig
	}{
		{
			name: "empty input gets defaults only",
			raw:  map[string]string{},
			want: QueryConfig{"page": "1", "limit": "20"},
		},
		{
			name: "nil input",
			raw:  nil,
			want: QueryConfig{"page": "1", "limit": "20"},
		},
		{
			name: "empty page and limit fall back",
			raw:  map[string]string{"page": "", "limit": ""},
			want: QueryConfig{"page": "1", "limit": "20"},
		},
		{
			name: "supplied values pass through",
			raw: map[string]string{
				"page": "3", "limit": "10", "sort_by": "price", "order": "asc",
				"category": "abc", "price_min": "10", "price_max": "50",
			},
			want: QueryConfig{
				"page": "3", "limit": "10", "sort_by": "price", "order": "asc",
				"category": "abc", "price_min": "10", "price_max": "50",
			},
		},
		{
			name: "malformed values stay opaque",
			raw:  map[string]string{"page": "abc", "rating_filter": "five"},
			want: QueryConfig{"page": "abc", "limit": "20", "rating_filter": "five"},
		},
		{
			name: "empty optional value is still defined",
			raw:  map[string]string{"name": ""},
			want: QueryConfig{"page": "1", "limit": "20", "name": ""},
		},
		{
			name: "unrecognized keys are dropped",
			raw:  map[string]string{"utm_source": "mail", "excluded": "p1"},
			want: QueryConfig{"page": "1", "limit": "20", "excluded": "p1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Equal(Normalize(tt.raw)), "normalize must be idempotent")
		})
	}
}

func TestFromValues_LastValueWins(t *testing.T) {
	values := url.Values{"page": {"2", "4"}, "name": {"shoe"}, "order": {}}
	got := FromValues(values)
	assert.Equal(t, QueryConfig{"page": "4", "limit": "20", "name": "shoe"}, got)
}

func TestParse(t *testing.T) {
	got, err := Parse("page=2&name=red+shoe&price_min=10")
	require.NoError(t, err)
	assert.Equal(t, QueryConfig{"page": "2", "limit": "20", "name": "red shoe", "price_min": "10"}, got)

	_, err = Parse("page=%zz")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	configs := []QueryConfig{
		Normalize(nil),
		Normalize(map[string]string{"page": "7", "name": "áo khoác & quần", "category": "60aba4e24efcc70f8892e1c6"}),
		Normalize(map[string]string{"sort_by": "view", "order": "desc", "rating_filter": "4", "excluded": "a,b"}),
		Normalize(map[string]string{"name": ""}),
	}

	for _, c := range configs {
		got, err := Parse(c.Encode())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestWithUpdates(t *testing.T) {
	base := Normalize(map[string]string{"page": "2", "sort_by": "price", "order": "asc"})

	got, err := Parse(base.WithUpdates(map[string]string{"page": "3"}))
	require.NoError(t, err)
	assert.Equal(t, QueryConfig{"page": "3", "limit": "20", "sort_by": "price", "order": "asc"}, got)

	got, err = Parse(base.WithUpdates(map[string]string{"price_min": "10", "price_max": "50"}))
	require.NoError(t, err)
	assert.Equal(t, "10", got["price_min"])
	assert.Equal(t, "50", got["price_max"])
	assert.Equal(t, "price", got["sort_by"], "other updates keep sort state")

	assert.Equal(t, "2", base["page"], "base must not be mutated")
}

func TestWithUpdates_Encoding(t *testing.T) {
	base := Normalize(nil)
	assert.Equal(t, "limit=20&name=red+shoe%26sock&page=1", base.WithUpdates(map[string]string{"name": "red shoe&sock"}))
}

func TestStartNameSearch(t *testing.T) {
	t.Run("drops sort state when ordered", func(t *testing.T) {
		base := Normalize(map[string]string{"page": "2", "sort_by": "price", "order": "desc", "category": "c1"})
		got, err := Parse(base.StartNameSearch("lamp"))
		require.NoError(t, err)
		assert.Equal(t, QueryConfig{"page": "2", "limit": "20", "category": "c1", "name": "lamp"}, got)
		assert.Equal(t, "desc", base["order"])
	})

	t.Run("keeps sort_by without order", func(t *testing.T) {
		base := Normalize(map[string]string{"sort_by": "sold"})
		got, err := Parse(base.StartNameSearch("lamp"))
		require.NoError(t, err)
		assert.Equal(t, QueryConfig{"page": "1", "limit": "20", "sort_by": "sold", "name": "lamp"}, got)
	})
}

func TestClearFilters(t *testing.T) {
	base := Normalize(map[string]string{
		"page": "4", "name": "lamp", "sort_by": "price", "order": "asc",
		"price_min": "1", "price_max": "9", "rating_filter": "3", "category": "c1",
	})
	got := base.ClearFilters()
	assert.Equal(t, QueryConfig{"page": "4", "limit": "20", "name": "lamp", "sort_by": "price", "order": "asc"}, got)
	assert.Equal(t, "c1", base["category"])
}

func TestPageAndLimit(t *testing.T) {
	c := Normalize(map[string]string{"page": "5", "limit": "abc"})

	page, err := c.Page()
	require.NoError(t, err)
	assert.Equal(t, 5, page)

	_, err = c.Limit()
	assert.Error(t, err)
}
