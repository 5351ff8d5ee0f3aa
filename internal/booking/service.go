// Package booking implements the ticket issuance workflow: request
// validation, server-side ticket number and token generation, persistence,
// and the decoupled e-mail dispatch that follows a successful creation.
package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nudem-backend/internal/apperr"
	"nudem-backend/internal/booking/db"
	"nudem-backend/internal/logger"
	"nudem-backend/internal/models"
)

type DBLayer interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetBookingByTicketAndEmail(ctx context.Context, ticketNumber, customerEmail string) (*models.Booking, error)
	GetBookingByTicketAndToken(ctx context.Context, ticketNumber, ticketToken string) (*models.Booking, error)
	TicketNumberExists(ctx context.Context, ticketNumber string) (bool, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id string) error
}

// Dispatcher hands a ticket e-mail job off for asynchronous delivery. The
// booking response never waits for SMTP.
type Dispatcher interface {
	DispatchTicketEmail(ctx context.Context, bookingID string) error
}

// Mailer is the synchronous path, used by the explicit resend endpoint.
type Mailer interface {
	SendTicketEmail(booking models.Booking) error
}

type Service struct {
	DB         DBLayer
	Dispatcher Dispatcher
	Mailer     Mailer
	Logger     *logger.Logger
}

func NewService(dbLayer DBLayer, dispatcher Dispatcher, mailer Mailer, log *logger.Logger) *Service {
	return &Service{DB: dbLayer, Dispatcher: dispatcher, Mailer: mailer, Logger: log}
}

// Layouts accepted for client-supplied datetimes. The aggregator emits local
// times without a zone, the frontend sends RFC3339.
var dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// CreateBooking runs the issuance workflow. userID is empty for anonymous
// callers; token validation happened in the middleware.
func (s *Service) CreateBooking(ctx context.Context, req models.BookingRequest, userID string) (*models.Booking, error) {
	booking, err := s.buildBooking(req, userID)
	if err != nil {
		return nil, err
	}

	ticketNumber, err := s.generateTicketNumber(ctx)
	if err != nil {
		return nil, err
	}
	ticketToken, err := generateTicketToken()
	if err != nil {
		return nil, err
	}

	booking.ID = uuid.NewString()
	booking.TicketNumber = ticketNumber
	booking.TicketToken = ticketToken
	booking.PaymentStatus = models.PaymentPending
	if req.PaymentConfirmed {
		booking.PaymentStatus = models.PaymentCompleted
	}
	booking.EmailSent = false
	booking.Status = models.BookingConfirmed
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := s.DB.CreateBooking(ctx, booking); err != nil {
		return nil, apperr.Persistence(err)
	}
	s.Logger.LogBooking("CREATE", booking.ID, fmt.Sprintf("booking persisted, ticket %s", booking.TicketNumber))

	// Best-effort side effect: the booking stands whether or not the e-mail
	// job could be handed off.
	if err := s.Dispatcher.DispatchTicketEmail(ctx, booking.ID); err != nil {
		s.Logger.Error("DISPATCH", fmt.Sprintf("failed to dispatch ticket email for booking %s: %v", booking.ID, err))
	}

	return booking, nil
}

func (s *Service) buildBooking(req models.BookingRequest, userID string) (*models.Booking, error) {
	required := []struct {
		name  string
		empty bool
	}{
		{"customerName", req.CustomerName == ""},
		{"customerEmail", req.CustomerEmail == ""},
		{"customerPhone", req.CustomerPhone == ""},
		{"departure", req.Departure == ""},
		{"arrival", req.Arrival == ""},
		{"price", req.Price <= 0},
		{"paymentMethod", req.PaymentMethod == ""},
		{"departureDateTime", req.DepartureDateTime == ""},
	}
	for _, f := range required {
		if f.empty {
			return nil, apperr.Validation(f.name, "is required")
		}
	}
	if req.IsRoundTrip && req.ReturnDepartureDateTime == "" {
		return nil, apperr.Validation("returnDepartureDateTime", "is required for round trips")
	}

	departureAt, err := parseDateTime(req.DepartureDateTime)
	if err != nil {
		return nil, apperr.Validation("departureDateTime", "is not a valid datetime")
	}

	booking := &models.Booking{
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		UserID:             userID,
		Departure:          req.Departure,
		Arrival:            req.Arrival,
		Airline:            req.Airline,
		FlightNumber:       req.FlightNumber,
		Price:              req.Price,
		Currency:           req.Currency,
		DepartureDateTime:  departureAt,
		Duration:           req.Duration,
		Segments:           req.Segments,
		IsRoundTrip:        req.IsRoundTrip,
		ReturnDeparture:    req.ReturnDeparture,
		ReturnArrival:      req.ReturnArrival,
		ReturnAirline:      req.ReturnAirline,
		ReturnFlightNumber: req.ReturnFlightNumber,
		ReturnDuration:     req.ReturnDuration,
		ReturnSegments:     req.ReturnSegments,
		Seat:               req.Seat,
		RemainingSeats:     req.RemainingSeats,
		PaymentMethod:      req.PaymentMethod,
	}
	if booking.Currency == "" {
		booking.Currency = "XOF"
	}

	optional := []struct {
		name  string
		value string
		dst   *time.Time
	}{
		{"arrivalDateTime", req.ArrivalDateTime, &booking.ArrivalDateTime},
		{"returnDepartureDateTime", req.ReturnDepartureDateTime, &booking.ReturnDepartureDateTime},
		{"returnArrivalDateTime", req.ReturnArrivalDateTime, &booking.ReturnArrivalDateTime},
	}
	for _, f := range optional {
		if f.value == "" {
			continue
		}
		t, err := parseDateTime(f.value)
		if err != nil {
			return nil, apperr.Validation(f.name, "is not a valid datetime")
		}
		*f.dst = t
	}

	return booking, nil
}

// generateTicketNumber produces a unique human-readable ticket number. The
// timestamp makes collisions unlikely, the store check makes them impossible.
func (s *Service) generateTicketNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		suffix := make([]byte, 2)
		if _, err := rand.Read(suffix); err != nil {
			return "", fmt.Errorf("failed to generate ticket number: %w", err)
		}
		candidate := fmt.Sprintf("NUDEM-%d-%s", time.Now().UnixNano(), hex.EncodeToString(suffix))

		exists, err := s.DB.TicketNumberExists(ctx, candidate)
		if err != nil {
			return "", apperr.Persistence(err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique ticket number")
}

// generateTicketToken returns 16 bytes of entropy, hex encoded. The token is
// the opaque half of the verification pair.
func generateTicketToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate ticket token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func parseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// GetBookings returns the caller's own bookings. Listing always requires an
// authenticated caller; there is no anonymous "all bookings" fallback.
func (s *Service) GetBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	if userID == "" {
		return nil, apperr.Unauthorized(fmt.Errorf("listing requires authentication"))
	}
	bookings, err := s.DB.GetBookingsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return bookings, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("booking")
		}
		return nil, apperr.Persistence(err)
	}
	return booking, nil
}

// GetBookingByTicket requires ticket number and customer e-mail to match.
func (s *Service) GetBookingByTicket(ctx context.Context, ticketNumber, customerEmail string) (*models.Booking, error) {
	if ticketNumber == "" || customerEmail == "" {
		return nil, apperr.Validation("ticketNumber/customerEmail", "are required")
	}
	booking, err := s.DB.GetBookingByTicketAndEmail(ctx, ticketNumber, customerEmail)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("booking")
		}
		return nil, apperr.Persistence(err)
	}
	return booking, nil
}

// VerifyTicket succeeds only when ticket number and token match the stored
// pair, and returns the reduced public view.
func (s *Service) VerifyTicket(ctx context.Context, ticketNumber, token string) (*models.PublicBookingView, error) {
	if ticketNumber == "" || token == "" {
		return nil, apperr.NotFound("ticket")
	}
	booking, err := s.DB.GetBookingByTicketAndToken(ctx, ticketNumber, token)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("ticket")
		}
		return nil, apperr.Persistence(err)
	}
	view := booking.PublicView()
	return &view, nil
}

func (s *Service) CancelBooking(ctx context.Context, id string) error {
	if err := s.DB.DeleteBooking(ctx, id); err != nil {
		if db.IsNoRows(err) {
			return apperr.NotFound("booking")
		}
		return apperr.Persistence(err)
	}
	s.Logger.LogBooking("CANCEL", id, "booking deleted")
	return nil
}

// ConfirmPayment moves a pending booking to completed. Completed is terminal.
func (s *Service) ConfirmPayment(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != models.PaymentPending {
		return nil, fmt.Errorf("%w: payment is %s, not pending", apperr.ErrConflict, booking.PaymentStatus)
	}

	booking.PaymentStatus = models.PaymentCompleted
	booking.UpdatedAt = time.Now().UTC()
	if err := s.DB.UpdateBooking(ctx, booking); err != nil {
		return nil, apperr.Persistence(err)
	}
	s.Logger.LogBooking("PAYMENT", id, "payment confirmed")
	return booking, nil
}

// MarkEmailSent records a confirmed delivery. The flag only ever moves
// false -> true.
func (s *Service) MarkEmailSent(ctx context.Context, id string) error {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.EmailSent {
		return nil
	}
	booking.EmailSent = true
	booking.UpdatedAt = time.Now().UTC()
	if err := s.DB.UpdateBooking(ctx, booking); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// DeliverTicket sends the ticket synchronously and records the delivery.
// Unlike creation, a transport failure here surfaces to the caller; the
// worker and the explicit resend endpoint both use this path.
func (s *Service) DeliverTicket(ctx context.Context, id string) error {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Mailer.SendTicketEmail(*booking); err != nil {
		return err
	}
	s.Logger.LogMail("SEND", booking.CustomerEmail, fmt.Sprintf("ticket %s delivered", booking.TicketNumber))
	return s.MarkEmailSent(ctx, id)
}
