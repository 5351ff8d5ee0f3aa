// Package mailer is the SMTP transport. Messages mirror the ones the booking
// frontend expects: ticket e-mail with the PDF attached plus a fallback
// download link, registration confirmation, and the password-reset link.
package mailer

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/gomail.v2"

	"nudem-backend/internal/apperr"
	"nudem-backend/internal/config"
	"nudem-backend/internal/models"
	"nudem-backend/internal/ticket"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	pdf    *ticket.PDFGenerator

	baseURL     string
	frontendURL string
}

func New(cfg config.EmailConfig, app config.AppConfig, pdf *ticket.PDFGenerator) *Mailer {
	return &Mailer{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:        cfg.From,
		pdf:         pdf,
		baseURL:     app.BaseURL,
		frontendURL: app.FrontendURL,
	}
}

// SendTicketEmail generates the PDF and mails it to the customer's captured
// address. Failure propagates to the caller; the issuance workflow decides
// whether it is fatal.
func (m *Mailer) SendTicketEmail(b models.Booking) error {
	if b.CustomerEmail == "" {
		return apperr.Artifact("missing customer email")
	}

	pdfBytes, err := m.pdf.Generate(b)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", b.CustomerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Votre billet électronique pour %s → %s", b.Departure, b.Arrival))
	msg.SetBody("text/html", m.ticketBody(b))
	msg.Attach(ticket.Filename(b), gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdfBytes)
		return err
	}))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return apperr.Dispatch(err)
	}
	return nil
}

func (m *Mailer) ticketBody(b models.Booking) string {
	downloadLink := fmt.Sprintf("%s/api/generate-ticket/%s", m.baseURL, b.ID)
	return fmt.Sprintf(`
		<h2>Bonjour %s,</h2>
		<p>Jàmm ak jàmm ! Merci d'avoir réservé avec Ñu Dem ! Votre billet pour votre vol de %s à %s est en pièce jointe.</p>
		<p><strong>Numéro de billet :</strong> %s</p>
		<p><strong>Date de départ :</strong> %s</p>
		<p><strong>Prix :</strong> %.0f %s</p>
		<p>Si la pièce jointe ne s'ouvre pas, téléchargez votre billet ici : <a href="%s">%s</a></p>
		<p>Veuillez présenter ce billet (imprimé ou sur votre téléphone) et une pièce d'identité à l'embarquement.</p>
		<p>Ñu Dem vous souhaite un bon voyage !</p>`,
		b.CustomerName, b.Departure, b.Arrival, b.TicketNumber,
		b.DepartureDateTime.In(time.UTC).Format("02/01/2006 15:04"),
		b.Price, b.Currency, downloadLink, downloadLink)
}

// SendConfirmationEmail is sent once after registration. Failure never blocks
// the registration itself.
func (m *Mailer) SendConfirmationEmail(u models.User) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", u.Email)
	msg.SetHeader("Subject", "Bienvenue chez Ñu Dem")
	msg.SetBody("text/html", fmt.Sprintf(`
		<h2>Bonjour %s %s,</h2>
		<p>Votre compte Ñu Dem a bien été créé.</p>
		<p>Vous pouvez dès maintenant rechercher et réserver vos vols.</p>
		<p>L'équipe Ñu Dem</p>`, u.Prenom, u.Nom))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return apperr.Dispatch(err)
	}
	return nil
}

// SendResetEmail mails the password-reset link. The link expires one hour
// after the token was issued.
func (m *Mailer) SendResetEmail(u models.User, resetToken string) error {
	resetLink := fmt.Sprintf("%s/reset-password/%s", m.frontendURL, resetToken)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", u.Email)
	msg.SetHeader("Subject", "Réinitialisation de votre mot de passe")
	msg.SetBody("text/html", fmt.Sprintf(`
		<p>Vous avez demandé à réinitialiser votre mot de passe.</p>
		<p>Cliquez sur ce lien pour définir un nouveau mot de passe :</p>
		<a href="%s">%s</a>
		<p>Ce lien expirera dans 1 heure.</p>`, resetLink, resetLink))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return apperr.Dispatch(err)
	}
	return nil
}
