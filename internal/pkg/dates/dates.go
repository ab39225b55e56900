package dates

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Date is a timezone-agnostic calendar date. All internal date arithmetic
// goes through this type so that day counting never drifts across DST
// boundaries or the runner's local zone.
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// Spreadsheet serial day counts are relative to 1899-12-30: serial 1 is
// 1899-12-31, matching the host spreadsheet's date epoch.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Normalize converts any of the raw date shapes the spreadsheet backends
// produce into a Date: a serial day-count number, a numeric string coerced
// to a serial, an ISO YYYY-MM-DD string, a time.Time, or a Date itself.
// Empty, out-of-range (serial < 1) and unparseable input return ok=false.
// It never panics.
func Normalize(raw any) (Date, bool) {
	switch v := raw.(type) {
	case nil:
		return Date{}, false
	case Date:
		if v.IsZero() {
			return Date{}, false
		}
		return v, true
	case *Date:
		if v == nil || v.IsZero() {
			return Date{}, false
		}
		return *v, true
	case time.Time:
		if v.IsZero() {
			return Date{}, false
		}
		u := v.UTC()
		return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}, true
	case *time.Time:
		if v == nil {
			return Date{}, false
		}
		return Normalize(*v)
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return Date{}, false
		}
		// Numeric-looking strings are serial day counts, not years.
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return fromSerial(n)
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return Date{}, false
		}
		return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
	default:
		return Date{}, false
	}
}

func fromSerial(n float64) (Date, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 1 {
		return Date{}, false
	}
	t := serialEpoch.AddDate(0, 0, int(math.Floor(n)))
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Serial returns the spreadsheet serial day count for d. It round-trips
// Normalize for every serial >= 1.
func (d Date) Serial() int {
	return int(d.utc().Sub(serialEpoch).Hours() / 24)
}

// Time returns d as midnight UTC.
func (d Date) Time() time.Time { return d.utc() }

// ISO renders d as YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Display renders d as DD-MM-YYYY.
func (d Date) Display() string {
	return fmt.Sprintf("%02d-%02d-%04d", d.Day, int(d.Month), d.Year)
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.utc().Before(other.utc()) }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.utc().After(other.utc()) }

// DaysBetween returns the absolute whole-calendar-day difference between a
// and b. Identical dates yield 0 regardless of the caller's local timezone.
func DaysBetween(a, b Date) int {
	diff := int(b.utc().Sub(a.utc()).Hours() / 24)
	if diff < 0 {
		return -diff
	}
	return diff
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}
}

// FormatDisplay renders a human display date as DD-MM-YYYY, or "N/A" for
// empty input. A loose three-dash-component date like "2023-1-5" is still
// rearranged; anything else falls through unchanged when it is a non-empty
// string.
func FormatDisplay(raw any) string {
	if d, ok := Normalize(raw); ok {
		return d.Display()
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
		if t, err := time.Parse("2006-1-2", strings.TrimSpace(s)); err == nil {
			return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}.Display()
		}
		return s
	}
	return "N/A"
}
