// Package booking is the availability and submission core: it pulls existing
// reservations for a venue off the remote API, turns them into blocked date
// intervals, and validates a proposed booking before anything is sent. The
// remote service stays the final arbiter for committed bookings.
package booking

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/Glenn-2k/holidaze/internal/holidaze"
	"github.com/Glenn-2k/holidaze/internal/interval"
	"github.com/Glenn-2k/holidaze/internal/session"
)

// Source is the read side of the remote booking service.
type Source interface {
	VenueBookings(ctx context.Context, token, venueID string) ([]holidaze.Booking, error)
}

// FetchPolicy decides what a failed availability fetch degrades to.
type FetchPolicy string

const (
	// FailOpen resolves to an empty interval list on fetch errors, so the
	// venue page keeps working and the remote service catches true
	// conflicts at submit time. This is the default and a documented risk.
	FailOpen FetchPolicy = "fail-open"

	// FailClosed propagates the fetch error instead, blocking booking
	// until availability is known.
	FailClosed FetchPolicy = "fail-closed"
)

// Fetcher retrieves raw bookings for a venue and normalizes them into
// intervals. Malformed records and records for other venues are dropped
// without aborting the batch. Pure with respect to application state: it
// returns data and mutates nothing shared.
type Fetcher struct {
	src      Source
	sessions session.Provider
	policy   FetchPolicy
	logger   log.Logger
}

func NewFetcher(src Source, sessions session.Provider, policy FetchPolicy, logger log.Logger) *Fetcher {
	if policy == "" {
		policy = FailOpen
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Fetcher{
		src:      src,
		sessions: sessions,
		policy:   policy,
		logger:   log.With(logger, "component", "availability"),
	}
}

// BookedIntervals fetches and normalizes the occupied spans for venueID.
// Under FailOpen the error return is always nil and a fetch failure yields an
// empty list.
func (f *Fetcher) BookedIntervals(ctx context.Context, venueID string) ([]interval.DateInterval, error) {
	var token string
	if f.sessions != nil {
		token = f.sessions.Token()
	}

	raw, err := f.src.VenueBookings(ctx, token, venueID)
	if err != nil {
		if f.policy == FailClosed {
			return nil, fmt.Errorf("booking: fetch venue %s: %w", venueID, err)
		}
		fetchDegradedTotal.Inc()
		level.Warn(f.logger).Log("msg", "availability fetch failed, assuming nothing booked", "venue", venueID, "err", err)
		return []interval.DateInterval{}, nil
	}

	return f.normalize(venueID, raw), nil
}

func (f *Fetcher) normalize(venueID string, raw []holidaze.Booking) []interval.DateInterval {
	intervals := make([]interval.DateInterval, 0, len(raw))
	for _, b := range raw {
		// The server may page in bookings for other venues; trust only
		// records that reference this one.
		if b.ForVenue() != venueID {
			continue
		}
		iv, err := interval.Normalize(b.DateFrom, b.DateTo)
		if err != nil {
			droppedRecordsTotal.Inc()
			level.Warn(f.logger).Log("msg", "dropping malformed booking", "venue", venueID, "booking", b.ID, "err", err)
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals
}

// IndexFromRaw builds an index from bookings already in hand, such as the
// list embedded in a venue response, saving the separate fetch.
func (f *Fetcher) IndexFromRaw(venueID string, raw []holidaze.Booking) *interval.Index {
	return interval.BuildIndex(venueID, f.normalize(venueID, raw))
}

// BuildIndex is BookedIntervals plus the index wrap, the shape most callers
// want.
func (f *Fetcher) BuildIndex(ctx context.Context, venueID string) (*interval.Index, error) {
	ivs, err := f.BookedIntervals(ctx, venueID)
	if err != nil {
		return nil, err
	}
	return interval.BuildIndex(venueID, ivs), nil
}
