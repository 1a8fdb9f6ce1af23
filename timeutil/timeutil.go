// Package timeutil parses ISO-8601 date, date-time, and duration text into
// normalized time values and encodes durations back into canonical text.
//
// Date-time input is matched against two fixed grammars: the long form with
// field separators ("2019-05-01T12:00:00Z") and the short compact form
// ("20190501T120000Z"). Results are always naive UTC timestamps: zone-aware
// input is converted to UTC and the zone discarded. Text without a zone
// indicator is treated as already in UTC unless the caller supplies an
// assumed local zone.
//
// Durations follow the designator grammar ("P1DT2H30M"). Year and month
// designators decode with fixed 365-day and 30-day substitutions inherited
// from the deployed grammar; the approximation is deliberately not
// calendar-accurate, and the encoder therefore never emits those
// designators. Only non-negative durations parse; the encoder accepts
// negative values and emits a leading "-".
//
// The parsers accept either raw text or an already-typed value. Typed input
// passes through with normalization only: a time.Time is converted to UTC,
// a Date or time.Duration is returned unchanged.
//
// All functions are pure and safe for concurrent use by multiple goroutines.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformed is the single error kind reported by the parsers. Every
// failure wraps it, so callers can test with errors.Is.
var ErrMalformed = errors.New("malformed ISO-8601 value")

// Date is a civil calendar day without time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the date portion of t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String returns the date in ISO-8601 form (YYYY-MM-DD).
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Now returns the current UTC timestamp.
func Now() time.Time { return time.Now().UTC() }

// Today returns the current UTC date.
func Today() Date { return DateOf(Now()) }

// ParseDateTime parses an ISO-8601 date-time value into a naive UTC
// timestamp. value is either a string matching the long or short grammar,
// or an already-typed time.Time, which is returned after UTC conversion
// only. Omitted optional fields default to zero, so a bare date yields
// midnight. Text without a zone indicator is treated as already in UTC.
func ParseDateTime(value any) (time.Time, error) {
	return ParseDateTimeIn(value, nil)
}

// ParseDateTimeIn is ParseDateTime with an assumed local zone: when the
// text carries no zone indicator, local is attached before the UTC
// conversion. A nil local means none, leaving naive input in UTC. When
// local observes daylight saving, a naive time that falls in a
// spring-forward gap does not exist in that zone and is rejected as
// malformed.
func ParseDateTimeIn(value any, local *time.Location) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		t, err := parseDateTime(v, local)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("timeutil: date-time input must be string or time.Time, got %T: %w", value, ErrMalformed)
	}
}

// ParseDate parses an ISO-8601 date value. A Date input is returned
// unchanged (it carries no time-of-day or zone to resolve); a string or
// time.Time is resolved through ParseDateTime and reduced to its date
// portion.
func ParseDate(value any) (Date, error) {
	if d, ok := value.(Date); ok {
		return d, nil
	}
	t, err := ParseDateTime(value)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// ParseDuration parses an ISO-8601 duration value into an elapsed time.
// A time.Duration input is returned unchanged. Years decode as 365 days
// and months as 30 days (see the package doc). A leading "-" matches the
// grammar but is always rejected: only non-negative elapsed times are
// representable as parser output. A duration with no designator component
// at all ("P", "PT") is malformed.
func ParseDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case string:
		return parseDuration(v)
	default:
		return 0, fmt.Errorf("timeutil: duration input must be string or time.Duration, got %T: %w", value, ErrMalformed)
	}
}

// EncodeDuration encodes an elapsed time as a canonical ISO-8601 duration
// string matching P(nD)?(T(nH)?(nM)?(nS)?)?, or the literal "PT0S" for a
// zero-length duration. Year and month designators are never emitted:
// their decoding is a lossy approximation that cannot be reconstructed
// from a pure elapsed time. Seconds carry six fractional digits when a
// microsecond component is present, and sub-microsecond precision is
// truncated.
func EncodeDuration(d time.Duration) string {
	var b strings.Builder
	d = d.Truncate(time.Microsecond) // sub-microsecond precision is not representable
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')

	days := int64(d / (24 * time.Hour))
	rem := d % (24 * time.Hour)
	hours := int64(rem / time.Hour)
	minutes := int64(rem % time.Hour / time.Minute)
	seconds := int64(rem % time.Minute / time.Second)
	micros := int64(rem % time.Second / time.Microsecond)

	if days != 0 {
		fmt.Fprintf(&b, "%dD", days)
	} else if rem == 0 {
		b.WriteString("T0S") // zero-length duration
		return b.String()
	}
	if rem != 0 {
		b.WriteByte('T')
		if hours != 0 {
			fmt.Fprintf(&b, "%dH", hours)
		}
		if minutes != 0 {
			fmt.Fprintf(&b, "%dM", minutes)
		}
		if micros != 0 {
			fmt.Fprintf(&b, "%.6fS", float64(seconds)+float64(micros)/1e6)
		} else if seconds != 0 {
			fmt.Fprintf(&b, "%dS", seconds)
		}
	}
	return b.String()
}
