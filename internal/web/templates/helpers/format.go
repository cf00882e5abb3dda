// Package helpers holds the display formatting shared by page templates.
package helpers

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"trackhub.org/trackhub-web/internal/web/normalize"
)

// PlaceholderPhoto is served for posts without an image payload.
const PlaceholderPhoto = "/static/placeholder.svg"

// PhotoSrc returns the img src for a post. Data URIs must be marked safe
// explicitly or html/template strips them.
func PhotoSrc(p normalize.Post) template.URL {
	if uri := p.PhotoDataURI(); uri != "" {
		return template.URL(uri)
	}
	return template.URL(PlaceholderPhoto)
}

// Relative returns a coarse "time ago" string for listing cards, or the
// placeholder when the timestamp never resolved.
func Relative(d normalize.Date) string {
	if !d.Valid {
		return normalize.MemberSincePlaceholder
	}
	diff := time.Since(d.Time)
	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	}
	if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return d.Time.Format("Jan 2, 2006")
}

// BadgeClass maps a post status to its badge styling class.
func BadgeClass(status string) string {
	switch strings.ToUpper(status) {
	case normalize.StatusFound:
		return "badge badge-found"
	case normalize.StatusLost:
		return "badge badge-lost"
	default:
		return "badge badge-unknown"
	}
}

// StatusLabel renders the badge text for a post status.
func StatusLabel(status string) string {
	if normalize.NormalizeStatus(status) == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(status)
}

// NavClass returns navbar link classes.
func NavClass(active bool) string {
	if active {
		return "nav-link active"
	}
	return "nav-link"
}

// MemberSince renders the membership display line.
func MemberSince(d normalize.Date) string {
	return "Member since " + d.MemberSince()
}
