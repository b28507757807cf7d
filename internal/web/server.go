// Package web renders the Holidaze UI: venue browsing, the booking form and
// profile screens. It owns no booking rules; everything is delegated to the
// booking core and the remote API.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Glenn-2k/holidaze/internal/booking"
	"github.com/Glenn-2k/holidaze/internal/holidaze"
	"github.com/Glenn-2k/holidaze/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

const dayFormat = "2006-01-02"

// TokenStore is the persistence behind web sessions.
type TokenStore interface {
	Save(ctx context.Context, rec session.Record) error
	Get(ctx context.Context, id string) (session.Record, error)
	Delete(ctx context.Context, id string) error
}

type Server struct {
	client      *holidaze.Client
	store       TokenStore
	cookies     *CookieManager
	tmpl        *template.Template
	logger      log.Logger
	validate    *validator.Validate
	fetchPolicy booking.FetchPolicy
}

func NewServer(client *holidaze.Client, store TokenStore, cookies *CookieManager, fetchPolicy booking.FetchPolicy, logger log.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{"day": day}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		client:      client,
		store:       store,
		cookies:     cookies,
		tmpl:        tmpl,
		logger:      log.With(logger, "component", "web"),
		validate:    validator.New(),
		fetchPolicy: fetchPolicy,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	r.HandleFunc("/", s.handleVenues).Methods(http.MethodGet)
	r.HandleFunc("/venues/{id}", s.handleVenue).Methods(http.MethodGet)
	r.HandleFunc("/venues/{id}/book", s.handleBook).Methods(http.MethodPost)

	r.HandleFunc("/profile", s.handleProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile/avatar", s.handleAvatar).Methods(http.MethodPost)
	r.HandleFunc("/profile/venue-manager", s.handleVenueManager).Methods(http.MethodPost)

	r.HandleFunc("/manage/venues/new", s.handleVenueNew).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/manage/venues/{id}/edit", s.handleVenueEdit).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/manage/venues/{id}/delete", s.handleVenueDelete).Methods(http.MethodPost)

	return r
}

// currentSession resolves the signed-in profile for a request, if any.
func (s *Server) currentSession(r *http.Request) (session.Record, bool) {
	sid, ok := s.cookies.Get(r)
	if !ok {
		return session.Record{}, false
	}
	rec, err := s.store.Get(r.Context(), sid)
	if err != nil {
		return session.Record{}, false
	}
	return rec, true
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		level.Error(s.logger).Log("msg", "template render failed", "template", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type baseData struct {
	Title     string
	UserName  string
	IsManager bool
	Error     string
	Success   string
}

// --- auth ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	type loginData struct {
		baseData
		Email string
	}

	if r.Method == http.MethodGet {
		s.render(w, "login.html", loginData{baseData: baseData{Title: "Login"}})
		return
	}

	_ = r.ParseForm()
	in := loginInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if err := s.validate.Struct(in); err != nil {
		s.render(w, "login.html", loginData{
			baseData: baseData{Title: "Login", Error: "Please enter a valid email and a password of at least 8 characters."},
			Email:    in.Email,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	auth, err := s.client.Login(ctx, in.Email, in.Password)
	if err != nil {
		s.render(w, "login.html", loginData{
			baseData: baseData{Title: "Login", Error: "Invalid email or password."},
			Email:    in.Email,
		})
		return
	}

	sid := NewSessionID()
	rec := session.Record{
		ID:           sid,
		ProfileName:  auth.Name,
		Email:        auth.Email,
		AccessToken:  auth.AccessToken,
		VenueManager: auth.VenueManager,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		level.Error(s.logger).Log("msg", "session save failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := s.cookies.Set(w, r, sid); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	type registerData struct {
		baseData
		Name  string
		Email string
	}

	if r.Method == http.MethodGet {
		s.render(w, "register.html", registerData{baseData: baseData{Title: "Register"}})
		return
	}

	_ = r.ParseForm()
	in := registerInput{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Email:        strings.TrimSpace(r.FormValue("email")),
		Password:     r.FormValue("password"),
		VenueManager: r.FormValue("venue_manager") == "on",
	}
	if err := s.validate.Struct(in); err != nil {
		s.render(w, "register.html", registerData{
			baseData: baseData{Title: "Register", Error: "Name, a stud.noroff.no email and a password of at least 8 characters are required."},
			Name:     in.Name,
			Email:    in.Email,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	_, err := s.client.Register(ctx, holidaze.RegisterRequest{
		Name:         in.Name,
		Email:        in.Email,
		Password:     in.Password,
		VenueManager: in.VenueManager,
	})
	if err != nil {
		msg := "Registration failed. Please try again."
		if apiErr, isAPI := holidaze.IsAPIError(err); isAPI && apiErr.Message != "" {
			msg = apiErr.Message
		}
		s.render(w, "register.html", registerData{
			baseData: baseData{Title: "Register", Error: msg},
			Name:     in.Name,
			Email:    in.Email,
		})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sid, ok := s.cookies.Get(r); ok {
		if err := s.store.Delete(r.Context(), sid); err != nil {
			level.Warn(s.logger).Log("msg", "session delete failed", "err", err)
		}
	}
	s.cookies.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// --- venues ---

func (s *Server) handleVenues(w http.ResponseWriter, r *http.Request) {
	type venuesData struct {
		baseData
		Venues   []holidaze.Venue
		Query    string
		Page     int
		NextPage int
		PrevPage int
	}

	rec, signedIn := s.currentSession(r)
	data := venuesData{baseData: baseData{Title: "Venues"}}
	if signedIn {
		data.UserName = rec.ProfileName
		data.IsManager = rec.VenueManager
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query != "" {
		venues, err := s.client.SearchVenues(ctx, query)
		if err != nil {
			data.Error = "Could not search venues right now."
			level.Warn(s.logger).Log("msg", "venue search failed", "err", err)
		}
		data.Venues = venues
		data.Query = query
		s.render(w, "venues.html", data)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	venues, meta, err := s.client.Venues(ctx, page, 24)
	if err != nil {
		data.Error = "Could not load venues right now."
		level.Warn(s.logger).Log("msg", "venue list failed", "err", err)
	}
	data.Venues = venues
	data.Page = page
	if meta.NextPage != nil {
		data.NextPage = *meta.NextPage
	}
	if meta.PreviousPage != nil {
		data.PrevPage = *meta.PreviousPage
	}
	s.render(w, "venues.html", data)
}

type bookedRange struct {
	From string
	To   string
}

type venuePageData struct {
	baseData
	Venue    holidaze.Venue
	Booked   []bookedRange
	DateFrom string
	DateTo   string
	Guests   int
	IsOwner  bool
}

// venuePage assembles the venue-detail view: venue data plus the availability
// snapshot the calendar greys out.
func (s *Server) venuePage(ctx context.Context, r *http.Request, venueID string) (venuePageData, *booking.Form, error) {
	rec, signedIn := s.currentSession(r)

	venue, err := s.client.Venue(ctx, venueID, true)
	if err != nil {
		return venuePageData{}, nil, err
	}

	var provider session.Provider = session.NewMemory("")
	if signedIn {
		provider = session.NewMemory(rec.AccessToken)
	}
	fetcher := booking.NewFetcher(s.client, provider, s.fetchPolicy, s.logger)
	form := booking.NewForm(
		booking.VenueConstraints{VenueID: venueID, MaxGuests: venue.MaxGuests},
		booking.Deps{
			Submitter: s.client,
			Fetcher:   fetcher,
			Sessions:  provider,
			Logger:    s.logger,
		},
	)
	// The venue came with its bookings embedded; index those instead of
	// fetching the list again. Post-submit reconciliation still refetches.
	form.SetIndex(fetcher.IndexFromRaw(venueID, venue.Bookings))

	data := venuePageData{
		baseData: baseData{Title: venue.Name},
		Venue:    venue,
		Guests:   1,
	}
	if signedIn {
		data.UserName = rec.ProfileName
		data.IsManager = rec.VenueManager
		data.IsOwner = venue.Owner != nil && venue.Owner.Name == rec.ProfileName
	}
	for _, iv := range form.ExcludedIntervals() {
		data.Booked = append(data.Booked, bookedRange{
			From: iv.Start.Format(dayFormat),
			To:   iv.End.Format(dayFormat),
		})
	}
	return data, form, nil
}

func (s *Server) handleVenue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	data, _, err := s.venuePage(ctx, r, mux.Vars(r)["id"])
	if err != nil {
		s.renderVenueError(w, err)
		return
	}
	s.render(w, "venue.html", data)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	venueID := mux.Vars(r)["id"]
	data, form, err := s.venuePage(ctx, r, venueID)
	if err != nil {
		s.renderVenueError(w, err)
		return
	}

	_ = r.ParseForm()
	guests, _ := strconv.Atoi(r.FormValue("guests"))
	in := bookingInput{
		DateFrom: strings.TrimSpace(r.FormValue("date_from")),
		DateTo:   strings.TrimSpace(r.FormValue("date_to")),
		Guests:   guests,
	}
	data.DateFrom = in.DateFrom
	data.DateTo = in.DateTo
	data.Guests = in.Guests

	if err := s.validate.Struct(in); err != nil {
		data.Error = "Please select both dates and at least one guest."
		s.render(w, "venue.html", data)
		return
	}

	from, _ := time.Parse(dayFormat, in.DateFrom)
	to, _ := time.Parse(dayFormat, in.DateTo)

	for _, res := range []booking.ValidationResult{
		form.SetDateFrom(from),
		form.SetDateTo(to),
		form.SetGuests(in.Guests),
	} {
		if !res.Valid {
			data.Error = res.Message
			s.render(w, "venue.html", data)
			return
		}
	}

	booked, res := form.Submit(ctx)
	if !res.Valid {
		if res.Kind == booking.KindUnauthenticated {
			data.Error = "You must be signed in to make a booking."
		} else {
			data.Error = res.Message
		}
		s.render(w, "venue.html", data)
		return
	}

	// Re-read the reconciled availability so the new booking shows as
	// blocked immediately.
	data.Booked = data.Booked[:0]
	for _, iv := range form.ExcludedIntervals() {
		data.Booked = append(data.Booked, bookedRange{
			From: iv.Start.Format(dayFormat),
			To:   iv.End.Format(dayFormat),
		})
	}
	data.DateFrom, data.DateTo, data.Guests = "", "", 1
	data.Success = fmt.Sprintf("Booking confirmed (%s to %s).", day(booked.DateFrom), day(booked.DateTo))
	s.render(w, "venue.html", data)
}

// day trims an ISO timestamp down to its calendar date.
func day(iso string) string {
	if len(iso) >= len(dayFormat) {
		return iso[:len(dayFormat)]
	}
	return iso
}

func (s *Server) renderVenueError(w http.ResponseWriter, err error) {
	if apiErr, isAPI := holidaze.IsAPIError(err); isAPI && apiErr.Status == http.StatusNotFound {
		http.Error(w, "venue not found", http.StatusNotFound)
		return
	}
	level.Error(s.logger).Log("msg", "venue page failed", "err", err)
	http.Error(w, "could not load venue", http.StatusBadGateway)
}

// --- profile ---

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	type profileData struct {
		baseData
		Profile  holidaze.Profile
		Bookings []holidaze.Booking
	}

	rec, signedIn := s.currentSession(r)
	if !signedIn {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	profile, err := s.client.Profile(ctx, rec.AccessToken, rec.ProfileName, true, true)
	if err != nil {
		level.Warn(s.logger).Log("msg", "profile fetch failed", "err", err)
		http.Error(w, "could not load profile", http.StatusBadGateway)
		return
	}
	s.render(w, "profile.html", profileData{
		baseData: baseData{Title: "Profile", UserName: rec.ProfileName, IsManager: profile.VenueManager},
		Profile:  profile,
		Bookings: profile.Bookings,
	})
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	rec, signedIn := s.currentSession(r)
	if !signedIn {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	_ = r.ParseForm()
	avatarURL := strings.TrimSpace(r.FormValue("avatar_url"))
	if avatarURL == "" {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if _, err := s.client.UpdateAvatar(ctx, rec.AccessToken, rec.ProfileName, holidaze.Media{URL: avatarURL, Alt: rec.ProfileName}); err != nil {
		level.Warn(s.logger).Log("msg", "avatar update failed", "err", err)
	}
	http.Redirect(w, r, "/profile", http.StatusFound)
}

func (s *Server) handleVenueManager(w http.ResponseWriter, r *http.Request) {
	rec, signedIn := s.currentSession(r)
	if !signedIn {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	profile, err := s.client.SetVenueManager(ctx, rec.AccessToken, rec.ProfileName, !rec.VenueManager)
	if err != nil {
		level.Warn(s.logger).Log("msg", "venue manager toggle failed", "err", err)
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}
	rec.VenueManager = profile.VenueManager
	if err := s.store.Save(ctx, rec); err != nil {
		level.Warn(s.logger).Log("msg", "session update failed", "err", err)
	}
	http.Redirect(w, r, "/profile", http.StatusFound)
}

// --- venue management ---

func (s *Server) handleVenueNew(w http.ResponseWriter, r *http.Request) {
	type venueNewData struct {
		baseData
		Name        string
		Description string
		Price       string
		MaxGuests   string
		MediaURL    string
	}

	rec, signedIn := s.currentSession(r)
	if !signedIn {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if !rec.VenueManager {
		http.Error(w, "venue manager account required", http.StatusForbidden)
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, "venue_new.html", venueNewData{
			baseData: baseData{Title: "New venue", UserName: rec.ProfileName, IsManager: true},
		})
		return
	}

	_ = r.ParseForm()
	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	maxGuests, _ := strconv.Atoi(r.FormValue("max_guests"))
	in := venueInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
		MaxGuests:   maxGuests,
		MediaURL:    strings.TrimSpace(r.FormValue("media_url")),
	}
	renderErr := func(msg string) {
		s.render(w, "venue_new.html", venueNewData{
			baseData:    baseData{Title: "New venue", UserName: rec.ProfileName, IsManager: true, Error: msg},
			Name:        in.Name,
			Description: in.Description,
			Price:       r.FormValue("price"),
			MaxGuests:   r.FormValue("max_guests"),
			MediaURL:    in.MediaURL,
		})
	}
	if err := s.validate.Struct(in); err != nil {
		renderErr("Name, description, a non-negative price and at least one guest are required.")
		return
	}

	req := holidaze.CreateVenueRequest{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		MaxGuests:   in.MaxGuests,
	}
	if in.MediaURL != "" {
		req.Media = []holidaze.Media{{URL: in.MediaURL, Alt: in.Name}}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	venue, err := s.client.CreateVenue(ctx, rec.AccessToken, req)
	if err != nil {
		msg := "Could not create venue."
		if apiErr, isAPI := holidaze.IsAPIError(err); isAPI && apiErr.Message != "" {
			msg = apiErr.Message
		}
		renderErr(msg)
		return
	}
	http.Redirect(w, r, "/venues/"+venue.ID, http.StatusFound)
}

func (s *Server) handleVenueEdit(w http.ResponseWriter, r *http.Request) {
	type venueEditData struct {
		baseData
		ID          string
		Name        string
		Description string
		Price       string
		MaxGuests   string
		MediaURL    string
	}

	rec, signedIn := s.currentSession(r)
	if !signedIn {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if !rec.VenueManager {
		http.Error(w, "venue manager account required", http.StatusForbidden)
		return
	}

	venueID := mux.Vars(r)["id"]
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if r.Method == http.MethodGet {
		venue, err := s.client.Venue(ctx, venueID, false)
		if err != nil {
			s.renderVenueError(w, err)
			return
		}
		data := venueEditData{
			baseData:    baseData{Title: "Edit venue", UserName: rec.ProfileName, IsManager: true},
			ID:          venue.ID,
			Name:        venue.Name,
			Description: venue.Description,
			Price:       strconv.FormatFloat(venue.Price, 'f', -1, 64),
			MaxGuests:   strconv.Itoa(venue.MaxGuests),
		}
		if len(venue.Media) > 0 {
			data.MediaURL = venue.Media[0].URL
		}
		s.render(w, "venue_edit.html", data)
		return
	}

	_ = r.ParseForm()
	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	maxGuests, _ := strconv.Atoi(r.FormValue("max_guests"))
	in := venueInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
		MaxGuests:   maxGuests,
		MediaURL:    strings.TrimSpace(r.FormValue("media_url")),
	}
	renderErr := func(msg string) {
		s.render(w, "venue_edit.html", venueEditData{
			baseData:    baseData{Title: "Edit venue", UserName: rec.ProfileName, IsManager: true, Error: msg},
			ID:          venueID,
			Name:        in.Name,
			Description: in.Description,
			Price:       r.FormValue("price"),
			MaxGuests:   r.FormValue("max_guests"),
			MediaURL:    in.MediaURL,
		})
	}
	if err := s.validate.Struct(in); err != nil {
		renderErr("Name, description, a non-negative price and at least one guest are required.")
		return
	}

	req := holidaze.CreateVenueRequest{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		MaxGuests:   in.MaxGuests,
	}
	if in.MediaURL != "" {
		req.Media = []holidaze.Media{{URL: in.MediaURL, Alt: in.Name}}
	}

	venue, err := s.client.UpdateVenue(ctx, rec.AccessToken, venueID, req)
	if err != nil {
		msg := "Could not update venue."
		if apiErr, isAPI := holidaze.IsAPIError(err); isAPI && apiErr.Message != "" {
			msg = apiErr.Message
		}
		renderErr(msg)
		return
	}
	http.Redirect(w, r, "/venues/"+venue.ID, http.StatusFound)
}

func (s *Server) handleVenueDelete(w http.ResponseWriter, r *http.Request) {
	rec, signedIn := s.currentSession(r)
	if !signedIn {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := s.client.DeleteVenue(ctx, rec.AccessToken, mux.Vars(r)["id"]); err != nil {
		level.Warn(s.logger).Log("msg", "venue delete failed", "err", err)
	}
	http.Redirect(w, r, "/profile", http.StatusFound)
}
