package booking_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nudem-backend/internal/apperr"
	"nudem-backend/internal/auth"
	"nudem-backend/internal/booking"
	"nudem-backend/internal/logger"
	"nudem-backend/internal/models"
	"nudem-backend/internal/ticket"
)

type Handler struct {
	BookingService *booking.Service
	PDF            *ticket.PDFGenerator
	Logger         *logger.Logger
}

func NewHandler(bookingService *booking.Service, pdf *ticket.PDFGenerator, log *logger.Logger) *Handler {
	return &Handler{BookingService: bookingService, PDF: pdf, Logger: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to its status code. The client gets the
// taxonomy message only; full detail stays in the server log.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status >= 500 {
		h.Logger.Error("API", err.Error())
	}
	h.writeJSON(w, status, map[string]string{"error": apperr.Public(err)})
}

// CreateBooking handles POST /api/bookings. Anonymous callers are allowed;
// a presented bearer token was already validated by the middleware.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("body", "is not valid JSON"))
		return
	}

	created, err := h.BookingService.CreateBooking(r.Context(), req, auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// GetBookings handles GET /api/bookings, scoped to the authenticated caller.
func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.BookingService.GetBookings(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	h.writeJSON(w, http.StatusOK, bookings)
}

// GetBookingByTicket handles POST /api/get-booking-by-ticket. Both ticket
// number and customer e-mail must match.
func (h *Handler) GetBookingByTicket(w http.ResponseWriter, r *http.Request) {
	var req models.BookingByTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("body", "is not valid JSON"))
		return
	}

	found, err := h.BookingService.GetBookingByTicket(r.Context(), req.TicketNumber, req.CustomerEmail)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, found)
}

// DeleteBooking handles DELETE /api/bookings/{id}.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.BookingService.CancelBooking(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

// ConfirmPayment handles POST /api/bookings/{id}/confirm-payment.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	updated, err := h.BookingService.ConfirmPayment(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// GenerateTicket handles GET /api/generate-ticket/{bookingId}. The download
// is policy-gated: not available until the ticket e-mail went out.
func (h *Handler) GenerateTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")
	found, err := h.BookingService.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !found.EmailSent {
		h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "ticket not yet issued by email"})
		return
	}

	pdfBytes, err := h.PDF.Generate(*found)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", ticket.Filename(*found)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

// SendTicketEmail handles POST /api/send-ticket-email/{bookingId}. This is
// the explicit resend trigger, so a transport failure is a 500 here.
func (h *Handler) SendTicketEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")
	if err := h.BookingService.DeliverTicket(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Ticket email sent"})
}

// VerifyTicket handles GET /api/verify-ticket/{ticketNumber}?token=...
func (h *Handler) VerifyTicket(w http.ResponseWriter, r *http.Request) {
	ticketNumber := chi.URLParam(r, "ticketNumber")
	token := r.URL.Query().Get("token")

	view, err := h.BookingService.VerifyTicket(r.Context(), ticketNumber, token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}
