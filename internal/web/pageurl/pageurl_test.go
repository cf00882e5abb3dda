package pageurl

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestResolveIDQueryParamWins(t *testing.T) {
	t.Parallel()

	u := mustParse(t, "/items/99?id=12#id=7")
	id, ok := ResolveID(u, "id")
	require.True(t, ok)
	require.Equal(t, "12", id)
}

func TestResolveIDNumericPathSegment(t *testing.T) {
	t.Parallel()

	id, ok := ResolveID(mustParse(t, "/items/42"), "id")
	require.True(t, ok)
	require.Equal(t, "42", id)

	// Trailing slash does not hide the segment.
	id, ok = ResolveID(mustParse(t, "/items/42/"), "id")
	require.True(t, ok)
	require.Equal(t, "42", id)

	// Non-numeric final segments are not identifiers.
	_, ok = ResolveID(mustParse(t, "/items/detail"), "id")
	require.False(t, ok)
}

func TestResolveIDFragmentFallback(t *testing.T) {
	t.Parallel()

	id, ok := ResolveID(mustParse(t, "/item#id=7"), "id")
	require.True(t, ok)
	require.Equal(t, "7", id)
}

func TestResolveIDMiss(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"/item", "/items/abc", "/item#section", "/item?id="} {
		_, ok := ResolveID(mustParse(t, raw), "id")
		require.False(t, ok, "url %s", raw)
	}

	_, ok := ResolveID(nil, "id")
	require.False(t, ok)
}
