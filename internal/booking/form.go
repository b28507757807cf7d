package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/Glenn-2k/holidaze/internal/holidaze"
	"github.com/Glenn-2k/holidaze/internal/interval"
	"github.com/Glenn-2k/holidaze/internal/session"
)

// State of the form controller. One instance moves
// Editing -> Validating -> Submitting -> Succeeded | Failed; validation
// rejections fall back to Editing with the user's input preserved.
type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Submitter is the write side of the remote booking service.
type Submitter interface {
	CreateBooking(ctx context.Context, token string, req holidaze.CreateBookingRequest) (holidaze.Booking, error)
}

// VenueConstraints are the read-only venue inputs to validation.
type VenueConstraints struct {
	VenueID   string
	MaxGuests int
}

// Deps are the collaborators a Form needs. Sessions and Now are injected so
// the controller is testable with fakes.
type Deps struct {
	Submitter Submitter
	Fetcher   *Fetcher
	Sessions  session.Provider
	Logger    log.Logger
	Now       func() time.Time
}

// Form holds one user's proposed booking for one venue and validates it
// against the availability index and venue constraints before submission.
// Methods are safe for interleaved calls; a mutex stands in for the single
// UI thread the design assumes.
type Form struct {
	venue VenueConstraints
	deps  Deps

	mu       sync.Mutex
	state    State
	dateFrom time.Time
	dateTo   time.Time
	hasFrom  bool
	hasTo    bool
	guests   int
	index    *interval.Index
}

func NewForm(venue VenueConstraints, deps Deps) *Form {
	if deps.Logger == nil {
		deps.Logger = log.NewNopLogger()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Form{
		venue:  venue,
		deps:   deps,
		state:  StateEditing,
		guests: 1,
	}
}

// Load populates the availability index from the remote service. If ctx is
// already cancelled when the fetch resolves (view torn down mid-flight), the
// result is discarded and no state changes.
func (f *Form) Load(ctx context.Context) error {
	idx, err := f.deps.Fetcher.BuildIndex(ctx, f.venue.VenueID)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.mu.Lock()
	f.index = idx
	f.mu.Unlock()
	return nil
}

// SetIndex swaps in a prebuilt index, for callers that fetched availability
// themselves.
func (f *Form) SetIndex(idx *interval.Index) {
	f.mu.Lock()
	f.index = idx
	f.mu.Unlock()
}

// Index returns the current availability snapshot (possibly nil before Load).
func (f *Form) Index() *interval.Index {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

// ExcludedIntervals exposes the booked spans for a calendar surface.
func (f *Form) ExcludedIntervals() []interval.DateInterval {
	return f.Index().ExcludedIntervals()
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Proposed returns the current input: the selected days (zero when unset) and
// guest count.
func (f *Form) Proposed() (dateFrom, dateTo time.Time, guests int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dateFrom, f.dateTo, f.guests
}

// SetDateFrom sets the start day. Days strictly in the past are rejected; a
// start after the current end also rejects rather than silently moving the
// end.
func (f *Form) SetDateFrom(day time.Time) ValidationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return fail(KindSubmitInFlight, "submission in progress")
	}
	f.editLocked()

	if f.isPastDay(day) {
		return fail(KindInvalidRange, "start date cannot be in the past")
	}
	if f.hasTo && day.After(f.dateTo) {
		return fail(KindInvalidRange, "start date must not be after end date")
	}
	f.dateFrom = day
	f.hasFrom = true
	return ok()
}

// SetDateTo sets the end day; it must not precede the start.
func (f *Form) SetDateTo(day time.Time) ValidationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return fail(KindSubmitInFlight, "submission in progress")
	}
	f.editLocked()

	if f.isPastDay(day) {
		return fail(KindInvalidRange, "end date cannot be in the past")
	}
	if f.hasFrom && day.Before(f.dateFrom) {
		return fail(KindInvalidRange, "end date must be after start date")
	}
	f.dateTo = day
	f.hasTo = true
	return ok()
}

// SetGuests sets the party size: a positive integer no larger than the
// venue's capacity. On rejection no other field is touched.
func (f *Form) SetGuests(n int) ValidationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return fail(KindSubmitInFlight, "submission in progress")
	}
	f.editLocked()

	if n <= 0 {
		return fail(KindGuestLimitExceeded, "guest count must be at least 1")
	}
	if n > f.venue.MaxGuests {
		return fail(KindGuestLimitExceeded, fmt.Sprintf("maximum guests allowed is %d", f.venue.MaxGuests))
	}
	f.guests = n
	return ok()
}

// Reset clears the proposed booking, as on view teardown.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearProposedLocked()
	f.state = StateEditing
}

// Submit validates the proposed booking and, if everything passes, posts it
// to the remote service. All checks run before any network call. While a
// submission is in flight further Submit calls are rejected, so a double
// click produces exactly one request. On success the index is refreshed so
// the new booking blocks out its range, and the form is cleared; on failure
// the input is preserved for retry.
func (f *Form) Submit(ctx context.Context) (holidaze.Booking, ValidationResult) {
	f.mu.Lock()
	if f.state == StateSubmitting || f.state == StateValidating {
		f.mu.Unlock()
		return holidaze.Booking{}, fail(KindSubmitInFlight, "submission already in progress")
	}
	f.state = StateValidating

	token := ""
	if f.deps.Sessions != nil {
		token = f.deps.Sessions.Token()
	}
	if res := f.validateLocked(token); !res.Valid {
		f.state = StateEditing
		if res.Kind == KindDateConflict {
			conflictsTotal.Inc()
		}
		f.mu.Unlock()
		return holidaze.Booking{}, res
	}

	req := holidaze.CreateBookingRequest{
		DateFrom: f.dateFrom.Format(time.RFC3339),
		DateTo:   f.dateTo.Format(time.RFC3339),
		Guests:   f.guests,
		VenueID:  f.venue.VenueID,
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	booked, err := f.deps.Submitter.CreateBooking(ctx, token, req)

	f.mu.Lock()
	if err != nil {
		f.state = StateFailed
		f.mu.Unlock()
		return holidaze.Booking{}, submitFailure(err)
	}
	f.clearProposedLocked()
	f.state = StateSucceeded
	f.mu.Unlock()

	submissionsTotal.WithLabelValues("success").Inc()
	level.Info(f.deps.Logger).Log("msg", "booking created", "venue", f.venue.VenueID, "booking", booked.ID)

	// Reconcile: refetch so subsequent availability queries see the new
	// booking. Eventual consistency only; the server remains authoritative
	// for conflicts in the gap.
	if err := f.Load(ctx); err != nil {
		level.Warn(f.deps.Logger).Log("msg", "post-submit availability refresh failed", "venue", f.venue.VenueID, "err", err)
	}
	return booked, ok()
}

func submitFailure(err error) ValidationResult {
	if apiErr, isAPI := holidaze.IsAPIError(err); isAPI {
		submissionsTotal.WithLabelValues("rejected").Inc()
		msg := apiErr.Message
		if msg == "" {
			msg = "the booking service rejected the request"
		}
		return fail(KindRemoteRejected, msg)
	}
	submissionsTotal.WithLabelValues("error").Inc()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fail(KindNetworkFailure, "the request timed out, please try again")
	}
	return fail(KindNetworkFailure, "could not reach the booking service, please try again")
}

// validateLocked runs the synchronous pre-submit checks in order: dates
// present, range sane, guests within bounds, session present, range free.
func (f *Form) validateLocked(token string) ValidationResult {
	if !f.hasFrom || !f.hasTo {
		return fail(KindMissingDates, "please select both start and end date")
	}
	if f.dateTo.Before(f.dateFrom) {
		return fail(KindInvalidRange, "end date must be after start date")
	}
	if f.isPastDay(f.dateFrom) {
		return fail(KindInvalidRange, "start date cannot be in the past")
	}
	if f.guests <= 0 || f.guests > f.venue.MaxGuests {
		return fail(KindGuestLimitExceeded, fmt.Sprintf("guest count must be between 1 and %d", f.venue.MaxGuests))
	}
	if token == "" {
		return fail(KindUnauthenticated, "you must be signed in to book")
	}
	candidate := interval.FromDays(f.dateFrom, f.dateTo)
	if !f.index.IsRangeAvailable(candidate) {
		return fail(KindDateConflict, "the selected dates overlap an existing booking")
	}
	return ok()
}

// editLocked moves a settled form (Succeeded/Failed) back to Editing when the
// user starts changing input again.
func (f *Form) editLocked() {
	if f.state == StateSucceeded || f.state == StateFailed {
		f.state = StateEditing
	}
}

func (f *Form) clearProposedLocked() {
	f.dateFrom = time.Time{}
	f.dateTo = time.Time{}
	f.hasFrom = false
	f.hasTo = false
	f.guests = 1
}

// isPastDay reports whether day's calendar date is before today.
func (f *Form) isPastDay(day time.Time) bool {
	now := f.deps.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	return d.Before(today)
}
