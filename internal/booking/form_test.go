package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Glenn-2k/holidaze/internal/holidaze"
	"github.com/Glenn-2k/holidaze/internal/session"
)

// Fixed clock so "past date" checks are deterministic.
var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeSubmitter struct {
	mu        sync.Mutex
	calls     int
	lastToken string
	lastReq   holidaze.CreateBookingRequest
	result    holidaze.Booking
	err       error

	// When set, CreateBooking signals entered and blocks until release is
	// closed, to exercise the in-flight guard.
	entered chan struct{}
	release chan struct{}
}

func (s *fakeSubmitter) CreateBooking(ctx context.Context, token string, req holidaze.CreateBookingRequest) (holidaze.Booking, error) {
	s.mu.Lock()
	s.calls++
	s.lastToken = token
	s.lastReq = req
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
	}
	return s.result, s.err
}

func (s *fakeSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestForm(t *testing.T, src *fakeSource, sub *fakeSubmitter, token string) *Form {
	t.Helper()
	provider := session.NewMemory(token)
	return NewForm(
		VenueConstraints{VenueID: "v1", MaxGuests: 4},
		Deps{
			Submitter: sub,
			Fetcher:   NewFetcher(src, provider, FailOpen, nil),
			Sessions:  provider,
			Now:       func() time.Time { return testNow },
		},
	)
}

func fillValid(t *testing.T, f *Form) {
	t.Helper()
	require.True(t, f.SetDateFrom(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)).Valid)
	require.True(t, f.SetDateTo(time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)).Valid)
	require.True(t, f.SetGuests(2).Valid)
}

func TestSetDateRejectsPastAndReversed(t *testing.T) {
	f := newTestForm(t, &fakeSource{}, &fakeSubmitter{}, "tok")

	res := f.SetDateFrom(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC))
	assert.False(t, res.Valid)
	assert.Equal(t, KindInvalidRange, res.Kind)

	// Today itself is fine.
	assert.True(t, f.SetDateFrom(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)).Valid)

	res = f.SetDateTo(time.Date(2024, 6, 14, 23, 0, 0, 0, time.UTC))
	assert.False(t, res.Valid)

	require.True(t, f.SetDateFrom(time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)).Valid)
	res = f.SetDateTo(time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC))
	assert.False(t, res.Valid)
	assert.Equal(t, KindInvalidRange, res.Kind)

	// Rejected input never sticks.
	_, to, _ := f.Proposed()
	assert.True(t, to.IsZero())
}

func TestSetGuestsBounds(t *testing.T) {
	f := newTestForm(t, &fakeSource{}, &fakeSubmitter{}, "tok")

	for _, n := range []int{0, -1, 5} {
		res := f.SetGuests(n)
		assert.False(t, res.Valid, "guests=%d", n)
		assert.Equal(t, KindGuestLimitExceeded, res.Kind)
	}
	assert.True(t, f.SetGuests(1).Valid)
	assert.True(t, f.SetGuests(4).Valid)

	_, _, guests := f.Proposed()
	assert.Equal(t, 4, guests)
}

func TestSubmitRequiresBothDates(t *testing.T) {
	sub := &fakeSubmitter{}
	f := newTestForm(t, &fakeSource{}, sub, "tok")
	require.True(t, f.SetDateFrom(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)).Valid)

	_, res := f.Submit(context.Background())
	assert.False(t, res.Valid)
	assert.Equal(t, KindMissingDates, res.Kind)
	assert.Equal(t, 0, sub.callCount())
	assert.Equal(t, StateEditing, f.State())
}

func TestSubmitRequiresSession(t *testing.T) {
	sub := &fakeSubmitter{}
	f := newTestForm(t, &fakeSource{}, sub, "")
	fillValid(t, f)

	_, res := f.Submit(context.Background())
	assert.False(t, res.Valid)
	assert.Equal(t, KindUnauthenticated, res.Kind)
	assert.Equal(t, 0, sub.callCount(), "no network call without a session")

	// Input survives so the user can sign in and retry.
	from, to, guests := f.Proposed()
	assert.False(t, from.IsZero())
	assert.False(t, to.IsZero())
	assert.Equal(t, 2, guests)
}

func TestSubmitRejectsConflictingRange(t *testing.T) {
	src := &fakeSource{bookings: []holidaze.Booking{
		{ID: "b1", VenueID: "v1", DateFrom: "2024-07-02", DateTo: "2024-07-04"},
	}}
	sub := &fakeSubmitter{}
	f := newTestForm(t, src, sub, "tok")
	require.NoError(t, f.Load(context.Background()))
	fillValid(t, f) // 2024-07-01..2024-07-03 overlaps b1

	_, res := f.Submit(context.Background())
	assert.False(t, res.Valid)
	assert.Equal(t, KindDateConflict, res.Kind)
	assert.Equal(t, 0, sub.callCount())
}

func TestSubmitSuccessClearsAndReconciles(t *testing.T) {
	src := &fakeSource{}
	sub := &fakeSubmitter{result: holidaze.Booking{ID: "new"}}
	f := newTestForm(t, src, sub, "tok")
	require.NoError(t, f.Load(context.Background()))
	fillValid(t, f)

	// The remote service now knows about the booking; the post-submit
	// refetch must pick it up.
	sub.result = holidaze.Booking{ID: "new", VenueID: "v1", DateFrom: "2024-07-01", DateTo: "2024-07-03"}
	src.bookings = []holidaze.Booking{sub.result}

	booked, res := f.Submit(context.Background())
	require.True(t, res.Valid)
	assert.Equal(t, "new", booked.ID)
	assert.Equal(t, StateSucceeded, f.State())

	assert.Equal(t, "tok", sub.lastToken)
	assert.Equal(t, "v1", sub.lastReq.VenueID)
	assert.Equal(t, 2, sub.lastReq.Guests)

	from, to, guests := f.Proposed()
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
	assert.Equal(t, 1, guests)

	require.Equal(t, 1, f.Index().Len())
	assert.False(t, f.Index().IsDayAvailable(time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)))
}

func TestSubmitRemoteRejectionPreservesInput(t *testing.T) {
	sub := &fakeSubmitter{err: &holidaze.APIError{Status: 409, Message: "overlapping booking"}}
	f := newTestForm(t, &fakeSource{}, sub, "tok")
	require.NoError(t, f.Load(context.Background()))
	fillValid(t, f)

	_, res := f.Submit(context.Background())
	assert.False(t, res.Valid)
	assert.Equal(t, KindRemoteRejected, res.Kind)
	assert.Equal(t, "overlapping booking", res.Message)
	assert.Equal(t, StateFailed, f.State())

	from, _, guests := f.Proposed()
	assert.False(t, from.IsZero())
	assert.Equal(t, 2, guests)

	// Editing again moves the form back to Editing.
	assert.True(t, f.SetGuests(3).Valid)
	assert.Equal(t, StateEditing, f.State())
}

func TestSubmitNetworkFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	f := newTestForm(t, &fakeSource{}, sub, "tok")
	require.NoError(t, f.Load(context.Background()))
	fillValid(t, f)

	_, res := f.Submit(context.Background())
	assert.False(t, res.Valid)
	assert.Equal(t, KindNetworkFailure, res.Kind)
}

func TestDoubleSubmitSendsOneRequest(t *testing.T) {
	sub := &fakeSubmitter{
		result:  holidaze.Booking{ID: "new"},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newTestForm(t, &fakeSource{}, sub, "tok")
	require.NoError(t, f.Load(context.Background()))
	fillValid(t, f)

	done := make(chan ValidationResult, 1)
	go func() {
		_, res := f.Submit(context.Background())
		done <- res
	}()

	<-sub.entered // first submit is on the wire

	_, second := f.Submit(context.Background())
	assert.False(t, second.Valid)
	assert.Equal(t, KindSubmitInFlight, second.Kind)

	edit := f.SetGuests(3)
	assert.False(t, edit.Valid)
	assert.Equal(t, KindSubmitInFlight, edit.Kind)

	close(sub.release)
	first := <-done
	assert.True(t, first.Valid)
	assert.Equal(t, 1, sub.callCount())
}

func TestLoadDiscardsResultAfterCancel(t *testing.T) {
	src := &fakeSource{bookings: []holidaze.Booking{
		{ID: "b1", VenueID: "v1", DateFrom: "2024-07-01", DateTo: "2024-07-02"},
	}}
	f := newTestForm(t, src, &fakeSubmitter{}, "tok")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.Load(ctx)
	require.Error(t, err)
	assert.Nil(t, f.Index(), "cancelled load must not install an index")
}

func TestResetClearsProposed(t *testing.T) {
	f := newTestForm(t, &fakeSource{}, &fakeSubmitter{}, "tok")
	fillValid(t, f)

	f.Reset()
	from, to, guests := f.Proposed()
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
	assert.Equal(t, 1, guests)
	assert.Equal(t, StateEditing, f.State())
}
