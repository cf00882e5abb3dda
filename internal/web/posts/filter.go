package posts

import (
	"strings"

	"trackhub.org/trackhub-web/internal/web/normalize"
)

// Filter selects a subset of a fetched collection. The zero value is the
// identity filter. Status and Category are mutually exclusive in the UI but
// both are honored when set.
type Filter struct {
	Status   string
	Category string
}

// ParseFilter interprets a filter control value: "all" (or empty) is identity,
// "lost"/"found" match status, anything else matches category. Matching is
// case-insensitive.
func ParseFilter(value string) Filter {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "all":
		return Filter{}
	case "lost":
		return Filter{Status: normalize.StatusLost}
	case "found":
		return Filter{Status: normalize.StatusFound}
	default:
		return Filter{Category: value}
	}
}

// IsZero reports whether the filter passes everything through.
func (f Filter) IsZero() bool {
	return f.Status == "" && f.Category == ""
}

// Match reports whether a single post passes the filter.
func (f Filter) Match(p normalize.Post) bool {
	if f.Status != "" && !strings.EqualFold(p.Status, f.Status) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	return true
}

// Apply derives the filtered subset of a collection. It is a pure function:
// the input slice is never mutated, and applying the identity filter returns
// an equal collection regardless of what was applied before.
func Apply(items []normalize.Post, f Filter) []normalize.Post {
	if f.IsZero() {
		out := make([]normalize.Post, len(items))
		copy(out, items)
		return out
	}
	out := make([]normalize.Post, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}
