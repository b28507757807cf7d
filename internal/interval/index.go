package interval

import (
	"sort"
	"time"
)

// Index answers availability queries for one venue. It is an immutable
// snapshot: rebuilt from scratch whenever the booking list is refetched,
// never mutated in place. Overlapping or redundant intervals are kept as
// received; queries stay correct either way.
type Index struct {
	venueID   string
	intervals []DateInterval
}

// BuildIndex wraps the normalized intervals for a venue, ordered by start.
func BuildIndex(venueID string, intervals []DateInterval) *Index {
	ivs := make([]DateInterval, len(intervals))
	copy(ivs, intervals)
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start.Before(ivs[j].Start) })
	return &Index{venueID: venueID, intervals: ivs}
}

func (x *Index) VenueID() string { return x.venueID }

func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.intervals)
}

// IsRangeAvailable reports whether candidate overlaps none of the indexed
// intervals. A nil index treats everything as available.
func (x *Index) IsRangeAvailable(candidate DateInterval) bool {
	if x == nil {
		return true
	}
	for _, iv := range x.intervals {
		if iv.Overlaps(candidate) {
			return false
		}
	}
	return true
}

// IsDayAvailable reports whether a single calendar day is unbooked.
func (x *Index) IsDayAvailable(day time.Time) bool {
	if x == nil {
		return true
	}
	for _, iv := range x.intervals {
		if iv.Contains(day) {
			return false
		}
	}
	return true
}

// ExcludedIntervals returns the booked spans for a calendar surface to grey
// out. The result is a copy; callers cannot corrupt the index.
func (x *Index) ExcludedIntervals() []DateInterval {
	if x == nil {
		return nil
	}
	out := make([]DateInterval, len(x.intervals))
	copy(out, x.intervals)
	return out
}
