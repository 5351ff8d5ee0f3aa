// Package ticket renders a booking into its ticket artifacts: the
// verification payload, the QR code carrying it, and the PDF document sent to
// the customer. Generation is a pure function of the booking fields.
package ticket

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"nudem-backend/internal/apperr"
	"nudem-backend/internal/models"
)

// Placeholder shown on the document for cosmetic fields the booking does not
// carry. Mandatory fields are never substituted.
const placeholder = "—"

// VerificationPayload builds the exact string encoded into the ticket QR
// code. verify-ticket parses the same pair back, so the format is fixed.
func VerificationPayload(b models.Booking) (string, error) {
	if b.TicketNumber == "" {
		return "", apperr.Artifact("missing ticket number")
	}
	if b.TicketToken == "" {
		return "", apperr.Artifact("missing ticket token")
	}
	if b.DepartureDateTime.IsZero() {
		return "", apperr.Artifact("missing departure date")
	}
	return fmt.Sprintf("QR:%s:%s", b.TicketNumber, b.TicketToken), nil
}

// QRCode encodes the verification payload as a 256px PNG.
func QRCode(b models.Booking) ([]byte, error) {
	payload, err := VerificationPayload(b)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}
	return png, nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
