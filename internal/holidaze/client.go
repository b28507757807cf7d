// Package holidaze is a client for the Holidaze REST API. The remote service
// is the single source of truth for venues, profiles and committed bookings;
// this client only moves data and never enforces booking rules itself.
package holidaze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const DefaultBaseURL = "https://v2.api.noroff.dev"

// APIError is a non-2xx response from the service, carrying the
// server-provided message when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("holidaze: %s (status=%d)", e.Message, e.Status)
	}
	return fmt.Sprintf("holidaze: request failed (status=%d)", e.Status)
}

// IsAPIError unwraps err to an *APIError if the remote service rejected the
// request, as opposed to a transport failure.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type Config struct {
	BaseURL string
	APIKey  string // static provider credential, sent as X-Noroff-API-Key
	Timeout time.Duration
	Logger  log.Logger
}

type Client struct {
	hc      *http.Client
	baseURL string
	apiKey  string
	logger  log.Logger
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	return &Client{
		hc:      &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  log.With(cfg.Logger, "component", "holidaze"),
	}
}

// Login exchanges credentials for a profile and access token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthData, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthData
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, body, &out); err != nil {
		return AuthData{}, err
	}
	return out, nil
}

// Register creates a profile. The _holidaze flag opts the account into the
// Holidaze endpoints.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthData, error) {
	q := url.Values{"_holidaze": {"true"}}
	var out AuthData
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", q, req, &out); err != nil {
		return AuthData{}, err
	}
	return out, nil
}

// Venues lists venues, newest first. page is 1-based; limit <= 0 uses the
// server default.
func (c *Client) Venues(ctx context.Context, page, limit int) ([]Venue, Meta, error) {
	q := url.Values{"sort": {"created"}, "sortOrder": {"desc"}}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []Venue
	meta, err := c.doList(ctx, "/holidaze/venues", "", q, &out)
	if err != nil {
		return nil, Meta{}, err
	}
	return out, meta, nil
}

// SearchVenues matches venue name and description against query.
func (c *Client) SearchVenues(ctx context.Context, query string) ([]Venue, error) {
	q := url.Values{"q": {query}}
	var out []Venue
	if _, err := c.doList(ctx, "/holidaze/venues/search", "", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Venue fetches one venue, with its bookings and owner embedded when
// withBookings is set.
func (c *Client) Venue(ctx context.Context, id string, withBookings bool) (Venue, error) {
	q := url.Values{}
	if withBookings {
		q.Set("_bookings", "true")
		q.Set("_owner", "true")
	}
	var out Venue
	if err := c.do(ctx, http.MethodGet, "/holidaze/venues/"+url.PathEscape(id), "", q, nil, &out); err != nil {
		return Venue{}, err
	}
	return out, nil
}

// VenueBookings retrieves the bookings page for a venue. The server may
// return bookings for other venues in the same page, so callers must re-filter
// by venue id; the availability fetcher does exactly that.
func (c *Client) VenueBookings(ctx context.Context, token, venueID string) ([]Booking, error) {
	q := url.Values{"_venue": {venueID}}
	var out []Booking
	if _, err := c.doList(ctx, "/holidaze/bookings", token, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBooking submits a new booking with the caller's token. A non-2xx
// status comes back as *APIError.
func (c *Client) CreateBooking(ctx context.Context, token string, req CreateBookingRequest) (Booking, error) {
	var out Booking
	if err := c.do(ctx, http.MethodPost, "/holidaze/bookings", token, nil, req, &out); err != nil {
		return Booking{}, err
	}
	return out, nil
}

// Profile fetches a profile by name, optionally embedding bookings and venues.
func (c *Client) Profile(ctx context.Context, token, name string, withBookings, withVenues bool) (Profile, error) {
	q := url.Values{}
	if withBookings {
		q.Set("_bookings", "true")
	}
	if withVenues {
		q.Set("_venues", "true")
	}
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/holidaze/profiles/"+url.PathEscape(name), token, q, nil, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// ProfileBookings lists a profile's own bookings with venues embedded.
func (c *Client) ProfileBookings(ctx context.Context, token, name string) ([]Booking, error) {
	q := url.Values{"_venue": {"true"}}
	var out []Booking
	if _, err := c.doList(ctx, "/holidaze/profiles/"+url.PathEscape(name)+"/bookings", token, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAvatar replaces the profile avatar.
func (c *Client) UpdateAvatar(ctx context.Context, token, name string, avatar Media) (Profile, error) {
	body := map[string]Media{"avatar": avatar}
	var out Profile
	if err := c.do(ctx, http.MethodPut, "/holidaze/profiles/"+url.PathEscape(name), token, nil, body, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// SetVenueManager toggles the venue-manager flag on a profile.
func (c *Client) SetVenueManager(ctx context.Context, token, name string, manager bool) (Profile, error) {
	body := map[string]bool{"venueManager": manager}
	var out Profile
	if err := c.do(ctx, http.MethodPut, "/holidaze/profiles/"+url.PathEscape(name), token, nil, body, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// CreateVenue registers a new listing; the token must belong to a venue
// manager.
func (c *Client) CreateVenue(ctx context.Context, token string, req CreateVenueRequest) (Venue, error) {
	var out Venue
	if err := c.do(ctx, http.MethodPost, "/holidaze/venues", token, nil, req, &out); err != nil {
		return Venue{}, err
	}
	return out, nil
}

// UpdateVenue replaces a listing's editable fields.
func (c *Client) UpdateVenue(ctx context.Context, token, id string, req CreateVenueRequest) (Venue, error) {
	var out Venue
	if err := c.do(ctx, http.MethodPut, "/holidaze/venues/"+url.PathEscape(id), token, nil, req, &out); err != nil {
		return Venue{}, err
	}
	return out, nil
}

// DeleteVenue removes a listing.
func (c *Client) DeleteVenue(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/holidaze/venues/"+url.PathEscape(id), token, nil, nil, nil)
}

// --- transport ---

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta Meta            `json:"meta"`
}

// errorBody covers both shapes the service uses: a flat message and an
// errors array.
type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) doList(ctx context.Context, path, token string, query url.Values, out any) (Meta, error) {
	env, err := c.request(ctx, http.MethodGet, path, token, query, nil)
	if err != nil {
		return Meta{}, err
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return Meta{}, fmt.Errorf("holidaze: decode %s: %w", path, err)
		}
	}
	return env.Meta, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	env, err := c.request(ctx, method, path, token, query, body)
	if err != nil {
		return err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("holidaze: decode %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, path, token string, query url.Values, body any) (envelope, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return envelope{}, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Noroff-API-Key", c.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("holidaze: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return envelope{}, fmt.Errorf("holidaze: read %s: %w", path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" && len(eb.Errors) > 0 {
			msg = eb.Errors[0].Message
		}
		level.Debug(c.logger).Log("msg", "request rejected", "method", method, "path", path, "status", res.StatusCode)
		return envelope{}, &APIError{Status: res.StatusCode, Message: msg}
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return envelope{}, fmt.Errorf("holidaze: decode %s: %w", path, err)
		}
	}
	return env, nil
}
