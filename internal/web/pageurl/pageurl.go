// Package pageurl resolves entity identifiers from page locations. The legacy
// pages linked to detail views in three different ways over time (query string,
// path segment, fragment), and inbound links of all three shapes still exist.
package pageurl

import (
	"net/url"
	"strings"
)

// ResolveID extracts an entity identifier from a page URL, trying in order:
// the named query parameter, the final non-empty path segment when it is
// purely numeric, and the named parameter inside the URL fragment. A miss
// returns ok=false rather than an error; callers render an inline recoverable
// error state for it.
func ResolveID(u *url.URL, param string) (id string, ok bool) {
	if u == nil {
		return "", false
	}

	if v := strings.TrimSpace(u.Query().Get(param)); v != "" {
		return v, true
	}

	if seg := lastSegment(u.Path); seg != "" && isNumeric(seg) {
		return seg, true
	}

	if frag := strings.TrimSpace(u.Fragment); frag != "" {
		vals, err := url.ParseQuery(frag)
		if err == nil {
			if v := strings.TrimSpace(vals.Get(param)); v != "" {
				return v, true
			}
		}
	}

	return "", false
}

func lastSegment(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if seg := strings.TrimSpace(segments[i]); seg != "" {
			return seg
		}
	}
	return ""
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
