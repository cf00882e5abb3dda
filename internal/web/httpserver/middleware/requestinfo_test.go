package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	custommw "trackhub.org/trackhub-web/internal/web/httpserver/middleware"
)

func TestJoinBase(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		base   string
		target string
		want   string
	}{
		"root base":           {"", "/upload", "/upload"},
		"slash base":          {"/", "/upload", "/upload"},
		"prefixed":            {"/hub", "/upload", "/hub/upload"},
		"prefixed home":       {"/hub", "/", "/hub/"},
		"trailing slash base": {"/hub/", "/my-posts", "/hub/my-posts"},
		"bare target":         {"/hub", "login", "/hub/login"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, custommw.JoinBase(tc.base, tc.target))
		})
	}
}

func TestRelativePathStripsMountBase(t *testing.T) {
	t.Parallel()

	var got string
	handler := custommw.RequestInfoMiddleware("/hub")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = custommw.RelativePath(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hub/my-posts", nil))
	require.Equal(t, "/my-posts", got)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hub/", nil))
	require.Equal(t, "/", got)

	rootHandler := custommw.RequestInfoMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = custommw.RelativePath(r.Context())
	}))
	rootHandler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, "/profile", got)

	require.Empty(t, custommw.RelativePath(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestBasePathFromContextDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/", custommw.BasePathFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
