package holidaze

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "test-key"})
}

func writeData(t *testing.T, w http.ResponseWriter, data any, meta *Meta) {
	t.Helper()
	env := map[string]any{"data": data}
	if meta != nil {
		env["meta"] = meta
	}
	require.NoError(t, json.NewEncoder(w).Encode(env))
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeData(t, w, []Booking{}, nil)
	})

	_, err := c.VenueBookings(context.Background(), "tok-123", "v1")
	require.NoError(t, err)

	assert.Equal(t, "test-key", got.Get("X-Noroff-API-Key"))
	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
}

func TestUnauthenticatedRequestsOmitBearer(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeData(t, w, []Venue{}, nil)
	})

	_, _, err := c.Venues(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestVenueBookingsQueryAndEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/holidaze/bookings", r.URL.Path)
		assert.Equal(t, "v1", r.URL.Query().Get("_venue"))
		writeData(t, w, []Booking{
			{ID: "b1", DateFrom: "2024-07-01T00:00:00.000Z", DateTo: "2024-07-02T00:00:00.000Z", Guests: 2, VenueID: "v1"},
		}, nil)
	})

	bookings, err := c.VenueBookings(context.Background(), "tok", "v1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b1", bookings[0].ID)
	assert.Equal(t, 2, bookings[0].Guests)
}

func TestVenuesMeta(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeData(t, w, []Venue{{ID: "v1"}, {ID: "v2"}}, &Meta{CurrentPage: 2, PageCount: 5, TotalCount: 93})
	})

	venues, meta, err := c.Venues(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Len(t, venues, 2)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 93, meta.TotalCount)
}

func TestCreateBookingPostsBody(t *testing.T) {
	var got CreateBookingRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		writeData(t, w, Booking{ID: "new"}, nil)
	})

	req := CreateBookingRequest{DateFrom: "2024-07-01T00:00:00Z", DateTo: "2024-07-03T00:00:00Z", Guests: 2, VenueID: "v1"}
	booked, err := c.CreateBooking(context.Background(), "tok", req)
	require.NoError(t, err)
	assert.Equal(t, "new", booked.ID)
	assert.Equal(t, req, got)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"errors":[{"message":"dates unavailable"}],"status":"Conflict"}`))
	})

	_, err := c.CreateBooking(context.Background(), "tok", CreateBookingRequest{VenueID: "v1"})
	require.Error(t, err)
	apiErr, isAPI := IsAPIError(err)
	require.True(t, isAPI)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "dates unavailable", apiErr.Message)
}

func TestFlatErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	})

	_, err := c.Profile(context.Background(), "bad", "alice", false, false)
	apiErr, isAPI := IsAPIError(err)
	require.True(t, isAPI)
	assert.Equal(t, "invalid token", apiErr.Message)
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", APIKey: "k"})
	_, err := c.SearchVenues(context.Background(), "cabin")
	require.Error(t, err)
	_, isAPI := IsAPIError(err)
	assert.False(t, isAPI)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@stud.noroff.no", body["email"])
		writeData(t, w, AuthData{Name: "alice", Email: body["email"], AccessToken: "tok"}, nil)
	})

	auth, err := c.Login(context.Background(), "alice@stud.noroff.no", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", auth.Name)
	assert.Equal(t, "tok", auth.AccessToken)
}

func TestRegisterSetsHolidazeFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("_holidaze"))
		w.WriteHeader(http.StatusCreated)
		writeData(t, w, AuthData{Name: "bob"}, nil)
	})

	_, err := c.Register(context.Background(), RegisterRequest{Name: "bob", Email: "bob@stud.noroff.no", Password: "secret123"})
	require.NoError(t, err)
}

func TestUpdateVenuePutsChanges(t *testing.T) {
	var got CreateVenueRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/holidaze/venues/v1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeData(t, w, Venue{ID: "v1", Name: got.Name}, nil)
	})

	req := CreateVenueRequest{Name: "Renamed Cabin", Description: "Now with sauna", Price: 120, MaxGuests: 6}
	venue, err := c.UpdateVenue(context.Background(), "tok", "v1", req)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Cabin", venue.Name)
	assert.Equal(t, req, got)
}

func TestDeleteVenueNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.DeleteVenue(context.Background(), "tok", "v1"))
}
