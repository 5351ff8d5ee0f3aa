package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"nudem-backend/internal/auth"
	"nudem-backend/internal/booking"
	"nudem-backend/internal/booking/booking_api"
	booking_db "nudem-backend/internal/booking/db"
	"nudem-backend/internal/config"
	"nudem-backend/internal/database"
	"nudem-backend/internal/database/migrations"
	"nudem-backend/internal/dispatch"
	"nudem-backend/internal/flights"
	"nudem-backend/internal/flights/flight_api"
	"nudem-backend/internal/kafka"
	"nudem-backend/internal/logger"
	"nudem-backend/internal/mailer"
	"nudem-backend/internal/ticket"
	"nudem-backend/internal/users"
	user_db "nudem-backend/internal/users/db"
	"nudem-backend/internal/users/user_api"
)

func main() {
	log := logger.NewLogger("booking-service")
	defer log.Close()

	log.Info("APP", "Starting booking service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx := context.Background()

	bunDB, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()
	log.Info("DATABASE", "Database connection successful")

	if err := migrations.NewRunner(bunDB, migrations.DefaultOptions()).Run(ctx); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}

	// Flight aggregator token cache: shared through Redis when available,
	// process-local otherwise.
	var tokenCache flights.TokenCache = flights.NewMemoryTokenCache()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
		}
		defer redisClient.Close()
		tokenCache = flights.NewRedisTokenCache(redisClient)
		log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	pdfGen := ticket.NewPDFGenerator(os.Getenv("TICKET_FONT_PATH"))
	mail := mailer.New(cfg.Email, cfg.App, pdfGen)
	flightClient := flights.NewClient(cfg.Flights, tokenCache)

	bookingService := booking.NewService(&booking_db.DB{Bun: bunDB}, nil, mail, log)
	userService := users.NewService(&user_db.DB{Bun: bunDB}, issuer, mail, log)

	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.TicketTopic}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		bookingService.Dispatcher = dispatch.NewKafka(producer, cfg.Kafka.TicketTopic)
		log.Info("KAFKA", "Ticket emails dispatched through Kafka")
	} else {
		bookingService.Dispatcher = dispatch.NewInline(bookingService, log)
		log.Info("DISPATCH", "Kafka disabled, ticket emails dispatched in-process")
	}

	bookingHandler := booking_api.NewHandler(bookingService, pdfGen, log)
	userHandler := user_api.NewHandler(userService, log)
	flightHandler := flight_api.NewHandler(flightClient, log)

	log.Info("HTTP", "Setting up router")
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/inscription", userHandler.Register)
		r.Post("/connexion", userHandler.Login)
		r.Post("/forgot-password", userHandler.ForgotPassword)
		r.Post("/reset-password", userHandler.ResetPassword)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/flights", flightHandler.Search)

		r.With(auth.Optional(issuer)).Post("/bookings", bookingHandler.CreateBooking)
		r.With(auth.Require(issuer)).Get("/bookings", bookingHandler.GetBookings)
		r.Delete("/bookings/{id}", bookingHandler.DeleteBooking)
		r.Post("/bookings/{id}/confirm-payment", bookingHandler.ConfirmPayment)

		r.Post("/get-booking-by-ticket", bookingHandler.GetBookingByTicket)
		r.Get("/generate-ticket/{bookingId}", bookingHandler.GenerateTicket)
		r.Post("/send-ticket-email/{bookingId}", bookingHandler.SendTicketEmail)
		r.Get("/verify-ticket/{ticketNumber}", bookingHandler.VerifyTicket)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Booking service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Booking service shutdown complete")
	}
}
