package holidaze

// Wire shapes owned by the Holidaze API. Dates stay as raw strings here;
// parsing and day-bound expansion happen in the interval package so that a
// malformed record can be dropped without aborting a whole fetch.

type Media struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type VenueMeta struct {
	Wifi      bool `json:"wifi"`
	Parking   bool `json:"parking"`
	Breakfast bool `json:"breakfast"`
	Pets      bool `json:"pets"`
}

type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Zip       string  `json:"zip"`
	Country   string  `json:"country"`
	Continent string  `json:"continent"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Media       []Media   `json:"media"`
	Price       float64   `json:"price"`
	MaxGuests   int       `json:"maxGuests"`
	Rating      float64   `json:"rating"`
	Created     string    `json:"created"`
	Updated     string    `json:"updated"`
	Meta        VenueMeta `json:"meta"`
	Location    Location  `json:"location"`
	Owner       *Profile  `json:"owner,omitempty"`
	Bookings    []Booking `json:"bookings,omitempty"`
}

type VenueRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Booking struct {
	ID       string `json:"id"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests"`
	Created  string `json:"created"`
	Updated  string `json:"updated"`
	VenueID  string `json:"venueId"`

	Venue *VenueRef `json:"venue,omitempty"`
}

// ForVenue resolves the venue a booking belongs to, whether the server sent a
// flat venueId or an embedded venue object.
func (b Booking) ForVenue() string {
	if b.VenueID != "" {
		return b.VenueID
	}
	if b.Venue != nil {
		return b.Venue.ID
	}
	return ""
}

// VenueName is the embedded venue name when the listing was requested with
// _venue=true, empty otherwise.
func (b Booking) VenueName() string {
	if b.Venue != nil {
		return b.Venue.Name
	}
	return ""
}

type Profile struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Bio          string  `json:"bio"`
	Avatar       *Media  `json:"avatar,omitempty"`
	Banner       *Media  `json:"banner,omitempty"`
	VenueManager bool    `json:"venueManager"`
	Venues       []Venue `json:"venues,omitempty"`
	Bookings     []Booking `json:"bookings,omitempty"`
}

// AuthData is the profile plus access token returned by login and register.
type AuthData struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Avatar       *Media `json:"avatar,omitempty"`
	VenueManager bool   `json:"venueManager"`
	AccessToken  string `json:"accessToken"`
}

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	VenueManager bool   `json:"venueManager"`
}

type CreateBookingRequest struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests"`
	VenueID  string `json:"venueId"`
}

type CreateVenueRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Media       []Media   `json:"media,omitempty"`
	Price       float64   `json:"price"`
	MaxGuests   int       `json:"maxGuests"`
	Meta        VenueMeta `json:"meta"`
	Location    *Location `json:"location,omitempty"`
}

// Meta is the pagination envelope on list endpoints.
type Meta struct {
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	CurrentPage  int  `json:"currentPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
}
