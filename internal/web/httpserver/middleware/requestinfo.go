package middleware

import (
	"context"
	"net/http"
	"strings"
)

type requestInfoKeyType int

const requestInfoKey requestInfoKeyType = iota

// RequestInfo records where the app is mounted and which page is being
// served, for base-aware link building and nav highlighting.
type RequestInfo struct {
	Path     string
	BasePath string
}

// RequestInfoMiddleware annotates the context with the current request path
// and the mount base.
func RequestInfoMiddleware(basePath string) func(http.Handler) http.Handler {
	base := NormalizeBasePath(basePath)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &RequestInfo{
				Path:     r.URL.Path,
				BasePath: base,
			}
			ctx := context.WithValue(r.Context(), requestInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestInfoFromContext returns the request metadata stored by
// RequestInfoMiddleware.
func RequestInfoFromContext(ctx context.Context) (*RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey).(*RequestInfo)
	return info, ok && info != nil
}

// RequestPathFromContext returns the full request path, or "" when the
// middleware is not installed.
func RequestPathFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok {
		return info.Path
	}
	return ""
}

// BasePathFromContext returns the mount base, or "/" when unavailable.
func BasePathFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok && info.BasePath != "" {
		return info.BasePath
	}
	return "/"
}

// RelativePath returns the request path with the mount base stripped, so the
// same nav highlighting works wherever the app is mounted.
func RelativePath(ctx context.Context) string {
	info, ok := RequestInfoFromContext(ctx)
	if !ok {
		return ""
	}
	path := RequestPathFromContext(ctx)
	if info.BasePath != "/" {
		if path == info.BasePath {
			path = "/"
		} else if strings.HasPrefix(path, info.BasePath+"/") {
			path = strings.TrimPrefix(path, info.BasePath)
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

// JoinBase prefixes a site-relative target with the mount base.
func JoinBase(base, target string) string {
	base = NormalizeBasePath(base)
	if base == "/" {
		return target
	}
	if target == "" || target == "/" {
		return base + "/"
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return base + target
}

// NormalizeBasePath reduces a configured base path to "/" or "/prefix" form
// with no trailing slash.
func NormalizeBasePath(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if base != "/" {
		base = strings.TrimRight(base, "/")
		if base == "" {
			return "/"
		}
	}
	return base
}
