package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"nudem-backend/internal/booking"
	booking_db "nudem-backend/internal/booking/db"
	"nudem-backend/internal/config"
	"nudem-backend/internal/database"
	"nudem-backend/internal/kafka"
	"nudem-backend/internal/logger"
	"nudem-backend/internal/mailer"
	"nudem-backend/internal/ticket"
)

// The mailer worker consumes ticket e-mail jobs published by the booking
// service, delivers them over SMTP and records the outcome on the booking.
func main() {
	log := logger.NewLogger("mailer-worker")
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	bunDB, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()
	log.Info("DATABASE", "Database connection successful")

	pdfGen := ticket.NewPDFGenerator(os.Getenv("TICKET_FONT_PATH"))
	mail := mailer.New(cfg.Email, cfg.App, pdfGen)
	bookingService := booking.NewService(&booking_db.DB{Bun: bunDB}, nil, mail, log)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TicketTopic, cfg.Kafka.GroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Info("APP", "Shutdown signal received")
		cancel()
	}()

	log.Info("KAFKA", fmt.Sprintf("Consuming ticket email jobs from %s", cfg.Kafka.TicketTopic))
	consumer.Start(ctx, func(job kafka.TicketEmailJob) {
		if err := bookingService.DeliverTicket(ctx, job.BookingID); err != nil {
			log.Error("MAIL", fmt.Sprintf("delivery for booking %s failed: %v", job.BookingID, err))
			return
		}
		log.LogBooking("EMAIL", job.BookingID, "ticket email delivered")
	})

	log.Info("APP", "Mailer worker shutdown complete")
}
