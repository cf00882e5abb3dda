package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MemberSincePlaceholder is rendered whenever no date strategy succeeds.
const MemberSincePlaceholder = "—"

// epochMillisThreshold separates epoch-seconds from epoch-millis inputs.
// Values at or above 1e12 are read as milliseconds.
const epochMillisThreshold = 1e12

var dotNetDatePattern = regexp.MustCompile(`^/Date\((-?\d+)\)/$`)

// Date is a timestamp that may legitimately be absent or unparseable.
type Date struct {
	Time  time.Time
	Valid bool
}

// DateFromRaw resolves the backend's many timestamp encodings into a Date.
// Accepted shapes, in order of attempt: a numeric epoch (seconds below the
// millisecond threshold, otherwise millis), an ISO-style string, a
// /Date(ms)/ wrapper, a {year,month,day} object, a {seconds,nanos} object,
// and finally a single recursion into a nested createdAt/created_at field.
// Any input that defeats every strategy yields an invalid Date, never an error.
func DateFromRaw(v any) Date {
	return dateFromRaw(v, 1)
}

func dateFromRaw(v any, depth int) Date {
	switch val := v.(type) {
	case nil:
		return Date{}
	case time.Time:
		return Date{Time: val, Valid: !val.IsZero()}
	case float64:
		return dateFromEpoch(val)
	case int64:
		return dateFromEpoch(float64(val))
	case int:
		return dateFromEpoch(float64(val))
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return dateFromEpoch(f)
		}
		return Date{}
	case string:
		return dateFromString(val)
	case map[string]any:
		return dateFromObject(val, depth)
	default:
		return Date{}
	}
}

func dateFromEpoch(v float64) Date {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Date{}
	}
	if math.Abs(v) >= epochMillisThreshold {
		return Date{Time: time.UnixMilli(int64(v)).UTC(), Valid: true}
	}
	return Date{Time: time.Unix(int64(v), 0).UTC(), Valid: true}
}

func dateFromString(raw string) Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}
	}

	if m := dotNetDatePattern.FindStringSubmatch(raw); m != nil {
		millis, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Date{}
		}
		return Date{Time: time.UnixMilli(millis).UTC(), Valid: true}
	}

	// Java LocalDateTime serializes without a zone, so try zoneless layouts too.
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date{Time: t.UTC(), Valid: true}
		}
	}

	// Numeric strings carry epoch values.
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return dateFromEpoch(f)
	}
	return Date{}
}

func dateFromObject(raw map[string]any, depth int) Date {
	if y, ok := numField(raw, "year"); ok {
		month := 1
		day := 1
		if m, ok := numField(raw, "month"); ok && m >= 1 && m <= 12 {
			month = int(m)
		}
		if d, ok := numField(raw, "day"); ok && d >= 1 && d <= 31 {
			day = int(d)
		}
		return Date{
			Time:  time.Date(int(y), time.Month(month), day, 0, 0, 0, 0, time.UTC),
			Valid: true,
		}
	}

	if secs, ok := numField(raw, "seconds"); ok {
		nanos := int64(0)
		if n, ok := numField(raw, "nanos"); ok {
			nanos = int64(n)
		}
		return Date{Time: time.Unix(int64(secs), nanos).UTC(), Valid: true}
	}

	if depth > 0 {
		if nested := firstPresent(raw, "createdAt", "created_at"); nested != nil {
			return dateFromRaw(nested, depth-1)
		}
	}
	return Date{}
}

func numField(raw map[string]any, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// MemberSince renders the month/year membership display string, or the fixed
// placeholder when the date never resolved.
func (d Date) MemberSince() string {
	if !d.Valid {
		return MemberSincePlaceholder
	}
	return d.Time.Format("January 2006")
}

// Short renders a compact date, or the placeholder when absent.
func (d Date) Short() string {
	if !d.Valid {
		return MemberSincePlaceholder
	}
	return d.Time.Format("Jan 2, 2006")
}
