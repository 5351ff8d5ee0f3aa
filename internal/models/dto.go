package models

// BookingRequest is the typed boundary object for POST /api/bookings. Date and
// time fields arrive as strings and are parsed by the issuance workflow;
// ticket number and token are never part of the input.
type BookingRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`

	Departure         string          `json:"departure"`
	Arrival           string          `json:"arrival"`
	Airline           string          `json:"airline"`
	FlightNumber      string          `json:"flightNumber"`
	Price             float64         `json:"price"`
	Currency          string          `json:"currency"`
	DepartureDateTime string          `json:"departureDateTime"`
	ArrivalDateTime   string          `json:"arrivalDateTime"`
	Duration          string          `json:"duration"`
	Segments          []FlightSegment `json:"segments"`

	IsRoundTrip             bool            `json:"isRoundTrip"`
	ReturnDeparture         string          `json:"returnDeparture"`
	ReturnArrival           string          `json:"returnArrival"`
	ReturnAirline           string          `json:"returnAirline"`
	ReturnFlightNumber      string          `json:"returnFlightNumber"`
	ReturnDepartureDateTime string          `json:"returnDepartureDateTime"`
	ReturnArrivalDateTime   string          `json:"returnArrivalDateTime"`
	ReturnDuration          string          `json:"returnDuration"`
	ReturnSegments          []FlightSegment `json:"returnSegments"`

	Seat           string `json:"seat"`
	RemainingSeats string `json:"remainingSeats"`
	PaymentMethod  string `json:"paymentMethod"`

	// Set when the caller has already confirmed payment out of band; the
	// booking is then created with paymentStatus=completed instead of pending.
	PaymentConfirmed bool `json:"paymentConfirmed"`
}

type BookingByTicketRequest struct {
	TicketNumber  string `json:"ticketNumber"`
	CustomerEmail string `json:"customerEmail"`
}

type RegisterRequest struct {
	Prenom     string `json:"prenom"`
	Nom        string `json:"nom"`
	Email      string `json:"email"`
	MotDePasse string `json:"motDePasse"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	MotDePasse string `json:"motDePasse"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type AuthResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}
