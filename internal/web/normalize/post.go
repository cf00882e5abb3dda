// Package normalize maps the loosely-shaped JSON the Track Hub backend emits
// into canonical view models. Field names have drifted across backend versions
// (photoUrl/photoBase64/image, createdAt/created_at, id/postId/_id); this is the
// single boundary where those variants are resolved, so every renderer consumes
// one shape.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Post status values recognized by the UI. Anything else renders as unknown.
const (
	StatusLost  = "LOST"
	StatusFound = "FOUND"
)

// DefaultPhotoMime is assumed when a photo payload arrives without a MIME type.
const DefaultPhotoMime = "image/jpeg"

// Post is the canonical listing view model. Every field is defaulted: a Post
// built from an empty record is valid and renders as a disabled placeholder card.
type Post struct {
	ID              string
	HasID           bool
	UserID          string
	Title           string
	Description     string
	Category        string
	Location        string
	Status          string
	PhotoBase64     string
	PhotoMime       string
	ContactPublic   string
	AdditionalNotes string
	Claimed         bool
	CreatedAt       Date
	User            *User
}

// PostFromRaw builds a canonical Post from a decoded JSON object of unknown
// shape. It never fails; missing or malformed fields fall back to zero values.
func PostFromRaw(raw map[string]any) Post {
	p := Post{
		Title:           stringField(raw, "title"),
		Description:     stringField(raw, "description"),
		Category:        stringField(raw, "category"),
		Location:        stringField(raw, "location"),
		ContactPublic:   stringField(raw, "contactPublic"),
		AdditionalNotes: stringField(raw, "additionalNotes"),
		Claimed:         boolField(raw, "isClaimed", "claimed"),
		CreatedAt:       DateFromRaw(firstPresent(raw, "createdAt", "created_at", "created_date")),
	}

	p.ID, p.HasID = idField(raw, "id", "postId", "_id")
	if uid, ok := idField(raw, "userId", "user_id"); ok {
		p.UserID = uid
	}

	p.Status = NormalizeStatus(stringField(raw, "status"))

	if photo := stringField(raw, "photoBase64", "photoUrl", "image"); photo != "" {
		mime, payload := SplitDataURI(photo)
		if mime == "" {
			mime = stringField(raw, "photoMime")
		}
		if mime == "" {
			mime = DefaultPhotoMime
		}
		p.PhotoBase64 = payload
		p.PhotoMime = mime
	}

	if nested, ok := raw["user"].(map[string]any); ok {
		u := UserFromRaw(nested)
		p.User = &u
		if p.UserID == "" {
			p.UserID = u.ID
		}
	}

	return p
}

// PostsFromRaw normalizes a decoded JSON array, skipping non-object entries.
func PostsFromRaw(raws []any) []Post {
	posts := make([]Post, 0, len(raws))
	for _, entry := range raws {
		if obj, ok := entry.(map[string]any); ok {
			posts = append(posts, PostFromRaw(obj))
		}
	}
	return posts
}

// NormalizeStatus uppercases the raw status and collapses unrecognized values
// to the empty string, which the templates render as an unknown badge.
func NormalizeStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case StatusLost:
		return StatusLost
	case StatusFound:
		return StatusFound
	default:
		return ""
	}
}

// StatusBadge returns the badge label for the post's status.
func (p Post) StatusBadge() string {
	if p.Status == "" {
		return "UNKNOWN"
	}
	return p.Status
}

// HasPhoto reports whether the post carries an image payload.
func (p Post) HasPhoto() bool {
	return p.PhotoBase64 != ""
}

// PhotoDataURI returns a data URI suitable for an img src attribute, or the
// empty string when no photo is present (templates substitute a placeholder).
func (p Post) PhotoDataURI() string {
	if p.PhotoBase64 == "" {
		return ""
	}
	mime := p.PhotoMime
	if mime == "" {
		mime = DefaultPhotoMime
	}
	return "data:" + mime + ";base64," + p.PhotoBase64
}

// Navigable reports whether the post can be linked to a detail page. Posts
// without a resolvable identifier render in a disabled state instead.
func (p Post) Navigable() bool {
	return p.HasID
}

// SplitDataURI separates an optional data:<mime>;base64, prefix from a base64
// payload. Payloads without a prefix are returned unchanged with an empty MIME.
func SplitDataURI(value string) (mime, payload string) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "data:") {
		return "", value
	}
	rest := value[len("data:"):]
	idx := strings.Index(rest, ";base64,")
	if idx < 0 {
		return "", value
	}
	return rest[:idx], rest[idx+len(";base64,"):]
}

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func boolField(raw map[string]any, keys ...string) bool {
	for _, key := range keys {
		if v, ok := raw[key].(bool); ok {
			return v
		}
	}
	return false
}

// idField resolves an opaque identifier that may arrive as a string, a JSON
// number, or not at all. Absence is a representable state, not an error.
func idField(raw map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s := asString(v); s != "" {
			return s, true
		}
	}
	return "", false
}

func firstPresent(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// asString renders scalar JSON values as display text. Integral floats (the
// default decoding of JSON numbers) print without an exponent or fraction.
func asString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
