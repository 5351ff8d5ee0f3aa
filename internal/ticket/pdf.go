package ticket

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/signintech/gopdf"

	"nudem-backend/internal/models"
)

// PDFGenerator renders the e-ticket document. The same booking always
// produces the same document structure, with the verification QR embedded.
type PDFGenerator struct {
	FontPath string
}

func NewPDFGenerator(fontPath string) *PDFGenerator {
	if fontPath == "" {
		fontPath = "./fonts/DejaVuSans.ttf"
	}
	return &PDFGenerator{FontPath: fontPath}
}

// Filename returns the attachment name used for both the e-mail and the
// download endpoint.
func Filename(b models.Booking) string {
	return fmt.Sprintf("billet-%s.pdf", b.TicketNumber)
}

func (g *PDFGenerator) Generate(b models.Booking) ([]byte, error) {
	qrPNG, err := QRCode(b)
	if err != nil {
		return nil, err
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := pdf.AddTTFFont("dejavu", g.FontPath); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	if err := pdf.SetFont("dejavu", "", 18); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}
	pdf.SetX(40)
	pdf.SetY(30)
	pdf.Cell(nil, "BILLET ÉLECTRONIQUE — Ñu Dem")

	if err := pdf.SetFont("dejavu", "", 12); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}
	pdf.SetY(70)
	writeRows(pdf, outboundRows(b))

	if b.IsRoundTrip {
		pdf.Br(10)
		pdf.SetX(40)
		pdf.Cell(nil, "Vol retour")
		pdf.Br(20)
		writeRows(pdf, returnRows(b))
	}

	pdf.Br(10)
	if err := addQRImage(pdf, qrPNG); err != nil {
		return nil, err
	}

	pdf.SetY(790)
	pdf.SetX(40)
	pdf.Cell(nil, "Présentez ce billet et une pièce d'identité à l'embarquement.")

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func outboundRows(b models.Booking) []row {
	return []row{
		{"Passager", b.CustomerName},
		{"Téléphone", orPlaceholder(b.CustomerPhone)},
		{"Numéro de billet", b.TicketNumber},
		{"Compagnie", orPlaceholder(b.Airline)},
		{"Vol", orPlaceholder(b.FlightNumber)},
		{"Départ", b.Departure},
		{"Arrivée", b.Arrival},
		{"Date de départ", b.DepartureDateTime.Format("02/01/2006 15:04")},
		{"Durée", orPlaceholder(b.Duration)},
		{"Siège", orPlaceholder(b.Seat)},
		{"Prix", fmt.Sprintf("%.0f %s", b.Price, b.Currency)},
	}
}

func returnRows(b models.Booking) []row {
	date := placeholder
	if !b.ReturnDepartureDateTime.IsZero() {
		date = b.ReturnDepartureDateTime.Format("02/01/2006 15:04")
	}
	return []row{
		{"Compagnie", orPlaceholder(b.ReturnAirline)},
		{"Vol", orPlaceholder(b.ReturnFlightNumber)},
		{"Départ", orPlaceholder(b.ReturnDeparture)},
		{"Arrivée", orPlaceholder(b.ReturnArrival)},
		{"Date de départ", date},
	}
}

type row struct {
	Label string
	Value string
}

func writeRows(pdf *gopdf.GoPdf, rows []row) {
	for _, r := range rows {
		pdf.SetX(40)
		pdf.Cell(nil, r.Label+": "+r.Value)
		pdf.Br(18)
	}
}

func addQRImage(pdf *gopdf.GoPdf, qrPNG []byte) error {
	img, err := png.Decode(bytes.NewReader(qrPNG))
	if err != nil {
		return fmt.Errorf("failed to decode QR image: %w", err)
	}
	rect := &gopdf.Rect{W: 120, H: 120}
	if err := pdf.ImageFrom(img, 400, 80, rect); err != nil {
		return fmt.Errorf("failed to draw QR code: %w", err)
	}
	return nil
}
