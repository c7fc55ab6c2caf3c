package billing

import (
	"fmt"
	"time"
)

const timestampLayout = "20060102150405"

// ParseTimestamp validates a 14-digit yyyymmddhhmmss value. time.Parse
// rejects out-of-range fields (month 13, February 30, hour 24), which covers
// the field-range rules including leap years.
func ParseTimestamp(raw string) (time.Time, error) {
	if len(raw) != 14 {
		return time.Time{}, fmt.Errorf("%w: timestamp %q must be 14 digits yyyymmddhhmmss", ErrInvalidInput, raw)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("%w: timestamp %q must be 14 digits yyyymmddhhmmss", ErrInvalidInput, raw)
		}
	}
	parsed, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %v", ErrInvalidInput, raw, err)
	}
	return parsed, nil
}

// FormatTimestamp renders the wire form expected by the weight service.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// resolveRange applies the date-defaulting rules: an omitted from is the
// start of the current calendar month, an omitted to is the current instant
// (exclusive), and an explicit to is widened to the end of its calendar day.
func resolveRange(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	var from, to time.Time

	if fromRaw == "" {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		parsed, err := ParseTimestamp(fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}

	if toRaw == "" {
		to = now
	} else {
		parsed, err := ParseTimestamp(toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = endOfDay(parsed)
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidInput, FormatTimestamp(from), FormatTimestamp(to))
	}
	return from, to, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
