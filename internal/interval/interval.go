// Package interval holds the date-range model behind venue availability:
// occupied spans normalized from remote bookings, and the index the booking
// form queries before allowing a submission.
package interval

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned by Normalize when a raw booking date cannot be
// parsed. Callers drop the record and keep going; one bad booking must not
// take down the whole availability view.
var ErrInvalidDate = errors.New("interval: invalid date")

// DateInterval is one occupied span, inclusive of both boundary calendar
// days: Start is 00:00:00 of the first occupied day, End is 23:59:59.999 of
// the last. Values are never mutated after creation.
type DateInterval struct {
	Start time.Time
	End   time.Time
}

// Normalize parses the dateFrom/dateTo strings of a raw booking and expands
// them to full-day bounds. A stay with dateFrom == dateTo is a valid
// single-day interval. A reversed range is reported as invalid.
func Normalize(rawFrom, rawTo string) (DateInterval, error) {
	start, err := parseDay(rawFrom)
	if err != nil {
		return DateInterval{}, fmt.Errorf("%w: dateFrom %q", ErrInvalidDate, rawFrom)
	}
	end, err := parseDay(rawTo)
	if err != nil {
		return DateInterval{}, fmt.Errorf("%w: dateTo %q", ErrInvalidDate, rawTo)
	}

	iv := DateInterval{Start: startOfDay(start), End: endOfDay(end)}
	if iv.End.Before(iv.Start) {
		return DateInterval{}, fmt.Errorf("%w: dateTo %q precedes dateFrom %q", ErrInvalidDate, rawTo, rawFrom)
	}
	return iv, nil
}

// Overlaps reports whether a and b share at least one instant. Both bounds
// are inclusive, so a stay ending on the day another begins is an overlap.
func (a DateInterval) Overlaps(b DateInterval) bool {
	return !a.Start.After(b.End) && !b.Start.After(a.End)
}

// Contains reports whether day falls inside the interval.
func (a DateInterval) Contains(day time.Time) bool {
	return !day.Before(a.Start) && !day.After(a.End)
}

// Days is the number of calendar days the interval covers.
func (a DateInterval) Days() int {
	return int(a.End.Sub(a.Start).Hours()/24) + 1
}

func (a DateInterval) String() string {
	return fmt.Sprintf("%s..%s", a.Start.Format("2006-01-02"), a.End.Format("2006-01-02"))
}

// FromDays builds an interval from two calendar days, expanding to full-day
// bounds the same way Normalize does. Used for candidate ranges picked in a
// form rather than parsed off the wire.
func FromDays(from, to time.Time) DateInterval {
	return DateInterval{Start: startOfDay(from), End: endOfDay(to)}
}

var dayFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
}

func parseDay(raw string) (time.Time, error) {
	for _, f := range dayFormats {
		if t, err := time.Parse(f, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}
