package web

// Incoming form shapes, validated at the boundary before anything is sent to
// the remote API.

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type registerInput struct {
	Name         string `validate:"required,min=2"`
	Email        string `validate:"required,email,endswith=@stud.noroff.no"`
	Password     string `validate:"required,min=8"`
	VenueManager bool
}

type bookingInput struct {
	DateFrom string `validate:"required,datetime=2006-01-02"`
	DateTo   string `validate:"required,datetime=2006-01-02"`
	Guests   int    `validate:"min=1"`
}

type venueInput struct {
	Name        string  `validate:"required,min=2"`
	Description string  `validate:"required"`
	Price       float64 `validate:"min=0"`
	MaxGuests   int     `validate:"min=1"`
	MediaURL    string  `validate:"omitempty,url"`
}
