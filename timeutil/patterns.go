package timeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// The three fixed grammar sets. The two date-time forms share one capture
// group layout so a single assembly path serves both.
var (
	// Long form: YYYY-MM-DD[THH:MM[:SS[.ffffff]][Z|±HH[:MM]]]
	reLong = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})` +
		`(?:T(\d{2}):(\d{2})` +
		`(?::(\d{2})(?:[.,](\d{0,6})\d*)?)?` +
		`(Z|([+-]\d{2})(?::(\d{2}))?)?` +
		`)?$`)

	// Short form: YYYYMMDD[THHMM[SS[.ffffff]][Z|±HH[MM]]]
	reShort = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})` +
		`(?:T(\d{2})(\d{2})` +
		`(?:(\d{2})(?:[.,](\d{0,6})\d*)?)?` +
		`(Z|([+-]\d{2})(\d{2})?)?` +
		`)?$`)

	// Duration: [±]P[nY][nM][nD][T][nH][nM][nS], each n a non-negative
	// decimal number, optionally fractional.
	reDuration = regexp.MustCompile(`^([+-])?P` +
		`(?:(\d+(?:\.\d+)?)Y)?` +
		`(?:(\d+(?:\.\d+)?)M)?` +
		`(?:(\d+(?:\.\d+)?)D)?` +
		`T?(?:(\d+(?:\.\d+)?)H)?` +
		`(?:(\d+(?:\.\d+)?)M)?` +
		`(?:(\d+(?:\.\d+)?)S)?$`)
)

// Capture group indices shared by the long and short date-time grammars
// (1-based submatch positions).
const (
	grpYear     = 1
	grpMonth    = 2
	grpDay      = 3
	grpHour     = 4
	grpMinute   = 5
	grpSecond   = 6
	grpFrac     = 7
	grpZone     = 8
	grpZoneHour = 9
	grpZoneMin  = 10
)

// Capture group indices for the duration grammar. The M designator is
// months before the T separator and minutes after it.
const (
	grpSign       = 1
	grpDurYears   = 2
	grpDurMonths  = 3
	grpDurDays    = 4
	grpDurHours   = 5
	grpDurMinutes = 6
	grpDurSeconds = 7
)

// Day substitutions for the year and month designators. Deliberately not
// calendar-accurate: deployed duration semantics decode with these fixed
// factors, and correcting them would silently change accepted values.
const (
	daysPerYear  = 365
	daysPerMonth = 30
)

// parseDateTime matches s against the long and short grammars in order,
// first match wins, and assembles the timestamp. The result carries the
// resolved zone; the caller converts to UTC.
func parseDateTime(s string, local *time.Location) (time.Time, error) {
	m := reLong.FindStringSubmatch(s)
	if m == nil {
		m = reShort.FindStringSubmatch(s)
	}
	if m == nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid date-time %q: %w", s, ErrMalformed)
	}

	year := atoi(m[grpYear])
	month := atoi(m[grpMonth])
	day := atoi(m[grpDay])
	hour := atoi(m[grpHour])
	minute := atoi(m[grpMinute])
	sec := atoi(m[grpSecond])
	usec := fracMicros(m[grpFrac])

	loc := local
	switch zone := m[grpZone]; {
	case zone == "":
		// no indicator: keep the assumed local zone, or naive UTC
	case zone == "Z":
		loc = time.UTC
	default:
		loc = fixedZone(m[grpZoneHour], m[grpZoneMin])
	}
	if loc == nil {
		loc = time.UTC
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, usec*1000, loc)
	// time.Date normalizes out-of-range fields instead of rejecting them;
	// a component mismatch means the input is not a valid timestamp
	// (month 13, Feb 30, hour 25, leap seconds).
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != sec {
		return time.Time{}, fmt.Errorf("timeutil: invalid date-time %q: %w", s, ErrMalformed)
	}
	return t, nil
}

// fixedZone builds a constant-offset zone from the signed hour field and
// optional minute field of an explicit offset indicator. The minute
// magnitude carries the hour field's sign, preserving the deployed
// grammar's sign-and-magnitude reading ("-05:30" resolves to -(5h30m)).
// The label mirrors the indicator, e.g. "+02:00".
func fixedZone(zoneHour, zoneMin string) *time.Location {
	if zoneMin == "" {
		zoneMin = "00"
	}
	hours, _ := strconv.Atoi(zoneHour)                 // ±HH
	minutes, _ := strconv.Atoi(zoneHour[:1] + zoneMin) // sign + MM
	return time.FixedZone(zoneHour+":"+zoneMin, hours*3600+minutes*60)
}

// parseDuration matches s against the duration grammar and folds the
// designator components into a single elapsed time: years and months fold
// into the day count (365/30 substitution), hours and minutes into the
// fractional-second total.
func parseDuration(s string) (time.Duration, error) {
	m := reDuration.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("timeutil: invalid duration %q: %w", s, ErrMalformed)
	}
	if m[grpDurYears] == "" && m[grpDurMonths] == "" && m[grpDurDays] == "" &&
		m[grpDurHours] == "" && m[grpDurMinutes] == "" && m[grpDurSeconds] == "" {
		return 0, fmt.Errorf("timeutil: duration %q has no components: %w", s, ErrMalformed)
	}
	if m[grpSign] == "-" {
		return 0, fmt.Errorf("timeutil: duration %q must not be negative: %w", s, ErrMalformed)
	}

	days := parseFloat(m[grpDurDays])
	days += parseFloat(m[grpDurMonths]) * daysPerMonth
	days += parseFloat(m[grpDurYears]) * daysPerYear
	fsec := parseFloat(m[grpDurSeconds])
	fsec += parseFloat(m[grpDurMinutes]) * 60
	fsec += parseFloat(m[grpDurHours]) * 3600

	// Fold to whole microseconds and range-check in two stages: a coarse
	// float bound so the int64 conversion below is defined, then the exact
	// integer bound for the nanosecond representation.
	micros := math.Round((days*86400 + fsec) * 1e6)
	if micros > 9.3e15 {
		return 0, fmt.Errorf("timeutil: duration %q is out of range: %w", s, ErrMalformed)
	}
	us := int64(micros)
	if us > math.MaxInt64/int64(time.Microsecond) {
		return 0, fmt.Errorf("timeutil: duration %q is out of range: %w", s, ErrMalformed)
	}
	return time.Duration(us) * time.Microsecond, nil
}

// atoi converts a digit-only submatch to int; an empty (unmatched) group
// defaults to zero.
func atoi(s string) int {
	n, _ := strconv.Atoi(s) // grammar guarantees digits
	return n
}

// parseFloat converts a numeric submatch to float64; an empty (unmatched)
// group defaults to zero.
func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64) // grammar guarantees a decimal number
	return f
}

// fracMicros right-pads fractional-second digits to exactly six, yielding
// microseconds. Digits beyond six were already truncated by the grammar.
func fracMicros(frac string) int {
	n := atoi(frac)
	for i := len(frac); i < 6; i++ {
		n *= 10
	}
	return n
}
