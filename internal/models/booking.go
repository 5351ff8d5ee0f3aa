package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Payment status lifecycle: pending -> completed | failed | cancelled.
// There is no transition out of completed.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
)

const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID string `bun:"id,pk" json:"_id"`

	// Customer snapshot, captured at booking time. Independent of the User
	// record the booking may reference.
	CustomerName  string `bun:"customer_name,notnull" json:"customerName"`
	CustomerEmail string `bun:"customer_email,notnull" json:"customerEmail"`
	CustomerPhone string `bun:"customer_phone,notnull" json:"customerPhone"`

	// Owning user. Empty for anonymous bookings.
	UserID string `bun:"user_id,nullzero" json:"userId,omitempty"`

	// Outbound itinerary.
	Departure         string          `bun:"departure,notnull" json:"departure"`
	Arrival           string          `bun:"arrival,notnull" json:"arrival"`
	Airline           string          `bun:"airline,nullzero" json:"airline,omitempty"`
	FlightNumber      string          `bun:"flight_number,nullzero" json:"flightNumber,omitempty"`
	Price             float64         `bun:"price,notnull" json:"price"`
	Currency          string          `bun:"currency,notnull,default:'XOF'" json:"currency"`
	DepartureDateTime time.Time       `bun:"departure_date_time,notnull" json:"departureDateTime"`
	ArrivalDateTime   time.Time       `bun:"arrival_date_time,nullzero" json:"arrivalDateTime,omitempty"`
	Duration          string          `bun:"duration,nullzero" json:"duration,omitempty"`
	Segments          []FlightSegment `bun:"segments,type:jsonb,nullzero" json:"segments,omitempty"`

	// Return itinerary. ReturnDepartureDateTime is required whenever
	// IsRoundTrip is set.
	IsRoundTrip             bool            `bun:"is_round_trip" json:"isRoundTrip"`
	ReturnDeparture         string          `bun:"return_departure,nullzero" json:"returnDeparture,omitempty"`
	ReturnArrival           string          `bun:"return_arrival,nullzero" json:"returnArrival,omitempty"`
	ReturnAirline           string          `bun:"return_airline,nullzero" json:"returnAirline,omitempty"`
	ReturnFlightNumber      string          `bun:"return_flight_number,nullzero" json:"returnFlightNumber,omitempty"`
	ReturnDepartureDateTime time.Time       `bun:"return_departure_date_time,nullzero" json:"returnDepartureDateTime,omitempty"`
	ReturnArrivalDateTime   time.Time       `bun:"return_arrival_date_time,nullzero" json:"returnArrivalDateTime,omitempty"`
	ReturnDuration          string          `bun:"return_duration,nullzero" json:"returnDuration,omitempty"`
	ReturnSegments          []FlightSegment `bun:"return_segments,type:jsonb,nullzero" json:"returnSegments,omitempty"`

	// Fulfillment.
	Seat           string    `bun:"seat,nullzero" json:"seat,omitempty"`
	CheckInTime    time.Time `bun:"check_in_time,nullzero" json:"checkInTime,omitempty"`
	RemainingSeats string    `bun:"remaining_seats,nullzero" json:"remainingSeats,omitempty"`

	// Issuance. TicketNumber and TicketToken are assigned exactly once at
	// creation, server side. Never accepted from client input.
	TicketNumber  string `bun:"ticket_number,unique,notnull" json:"ticketNumber"`
	TicketToken   string `bun:"ticket_token,notnull" json:"-"`
	PaymentStatus string `bun:"payment_status,notnull" json:"paymentStatus"`
	PaymentMethod string `bun:"payment_method,notnull" json:"paymentMethod"`
	EmailSent     bool   `bun:"email_sent,notnull" json:"emailSent"`

	Status    string    `bun:"status,notnull" json:"status"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// PublicBookingView is the reduced field set returned by ticket verification.
// No internal token, no payment internals beyond the status.
type PublicBookingView struct {
	TicketNumber      string    `json:"ticketNumber"`
	CustomerName      string    `json:"customerName"`
	Departure         string    `json:"departure"`
	Arrival           string    `json:"arrival"`
	Airline           string    `json:"airline,omitempty"`
	FlightNumber      string    `json:"flightNumber,omitempty"`
	DepartureDateTime time.Time `json:"departureDateTime"`
	Seat              string    `json:"seat,omitempty"`
	IsRoundTrip       bool      `json:"isRoundTrip"`
	ReturnDeparture   string    `json:"returnDeparture,omitempty"`
	ReturnArrival     string    `json:"returnArrival,omitempty"`
	PaymentStatus     string    `json:"paymentStatus"`
	Status            string    `json:"status"`
}

func (b *Booking) PublicView() PublicBookingView {
	return PublicBookingView{
		TicketNumber:      b.TicketNumber,
		CustomerName:      b.CustomerName,
		Departure:         b.Departure,
		Arrival:           b.Arrival,
		Airline:           b.Airline,
		FlightNumber:      b.FlightNumber,
		DepartureDateTime: b.DepartureDateTime,
		Seat:              b.Seat,
		IsRoundTrip:       b.IsRoundTrip,
		ReturnDeparture:   b.ReturnDeparture,
		ReturnArrival:     b.ReturnArrival,
		PaymentStatus:     b.PaymentStatus,
		Status:            b.Status,
	}
}
