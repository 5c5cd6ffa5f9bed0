// Package querystate translates between raw listing query parameters and the
// canonical product-listing configuration, and back into query strings.
package querystate

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
)

// Recognized listing keys
const (
	KeyPage         = "page"
	KeyLimit        = "limit"
	KeySortBy       = "sort_by"
	KeyOrder        = "order"
	KeyExcluded     = "excluded"
	KeyName         = "name"
	KeyPriceMax     = "price_max"
	KeyPriceMin     = "price_min"
	KeyRatingFilter = "rating_filter"
	KeyCategory     = "category"
)

// Defaults applied when page or limit is absent or empty
const (
	DefaultPage  = "1"
	DefaultLimit = "20"
)

// optionalKeys are copied through only when supplied.
var optionalKeys = []string{
	KeySortBy,
	KeyExcluded,
	KeyName,
	KeyOrder,
	KeyPriceMax,
	KeyPriceMin,
	KeyRatingFilter,
	KeyCategory,
}

// filterKeys are the aside-panel filters removed by ClearFilters.
var filterKeys = []string{KeyPriceMin, KeyPriceMax, KeyRatingFilter, KeyCategory}

// QueryConfig is the normalized listing state. page and limit are always
// present; every other key is present only when a value was supplied.
// A QueryConfig is never mutated: every method returns a new one.
type QueryConfig map[string]string

// Normalize builds a QueryConfig from raw parameters. A key missing from raw
// is undefined and stays out of the result.
func Normalize(raw map[string]string) QueryConfig {
	cfg := QueryConfig{
		KeyPage:  valueOr(raw, KeyPage, DefaultPage),
		KeyLimit: valueOr(raw, KeyLimit, DefaultLimit),
	}
	for _, key := range optionalKeys {
		if v, ok := raw[key]; ok {
			cfg[key] = v
		}
	}
	return cfg
}

// FromValues normalizes parsed URL query values. A repeated key keeps its
// last value.
func FromValues(values url.Values) QueryConfig {
	raw := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			raw[key] = vs[len(vs)-1]
		}
	}
	return Normalize(raw)
}

// Parse normalizes a raw query string such as "page=2&name=shoe".
func Parse(rawQuery string) (QueryConfig, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	return FromValues(values), nil
}

func valueOr(raw map[string]string, key, fallback string) string {
	if v := raw[key]; v != "" {
		return v
	}
	return fallback
}

// Get returns the value for key and whether it is present.
func (c QueryConfig) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Page parses the page value. Validation of the number is left to the caller.
func (c QueryConfig) Page() (int, error) {
	return c.intValue(KeyPage)
}

// Limit parses the limit value.
func (c QueryConfig) Limit() (int, error) {
	return c.intValue(KeyLimit)
}

func (c QueryConfig) intValue(key string) (int, error) {
	n, err := strconv.Atoi(c[key])
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number: %w", key, c[key], err)
	}
	return n, nil
}

// Merge returns a copy of c with updates applied over it. Updates win on
// collision.
func (c QueryConfig) Merge(updates map[string]string) QueryConfig {
	merged := make(QueryConfig, len(c)+len(updates))
	maps.Copy(merged, c)
	maps.Copy(merged, updates)
	return merged
}

// Without returns a copy of c with keys removed.
func (c QueryConfig) Without(keys ...string) QueryConfig {
	out := maps.Clone(c)
	if out == nil {
		out = QueryConfig{}
	}
	for _, key := range keys {
		delete(out, key)
	}
	return out
}

// Values converts c to url.Values.
func (c QueryConfig) Values() url.Values {
	values := make(url.Values, len(c))
	for key, v := range c {
		values.Set(key, v)
	}
	return values
}

// Encode serializes c as a URL-encoded query string with sorted keys.
func (c QueryConfig) Encode() string {
	return c.Values().Encode()
}

// WithUpdates merges updates over c and serializes the result.
func (c QueryConfig) WithUpdates(updates map[string]string) string {
	return c.Merge(updates).Encode()
}

// StartNameSearch switches the listing into free-text search for name.
// Entering name search resets sorting: when c carries an order, both order
// and sort_by are dropped.
func (c QueryConfig) StartNameSearch(name string) string {
	base := c
	if c[KeyOrder] != "" {
		base = c.Without(KeyOrder, KeySortBy)
	}
	return base.WithUpdates(map[string]string{KeyName: name})
}

// ClearFilters drops the price, rating and category filters while keeping
// paging, sorting and search state.
func (c QueryConfig) ClearFilters() QueryConfig {
	return c.Without(filterKeys...)
}

// Equal reports whether c and other hold the same keys and values.
func (c QueryConfig) Equal(other QueryConfig) bool {
	return maps.Equal(c, other)
}
