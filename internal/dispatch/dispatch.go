// Package dispatch decouples ticket e-mail delivery from booking creation.
// With Kafka enabled, creation only enqueues a job and the mailer worker
// delivers it; without Kafka, delivery runs on a detached goroutine. Either
// way booking latency is independent of SMTP latency.
package dispatch

import (
	"context"
	"fmt"

	"nudem-backend/internal/booking"
	"nudem-backend/internal/kafka"
	"nudem-backend/internal/logger"
)

// Kafka publishes ticket e-mail jobs for the mailer worker.
type Kafka struct {
	Producer *kafka.Producer
	Topic    string
}

func NewKafka(producer *kafka.Producer, topic string) *Kafka {
	return &Kafka{Producer: producer, Topic: topic}
}

func (d *Kafka) DispatchTicketEmail(ctx context.Context, bookingID string) error {
	return d.Producer.PublishTicketEmail(ctx, d.Topic, bookingID)
}

// Inline delivers the ticket from a detached goroutine in the same process.
type Inline struct {
	Bookings *booking.Service
	Logger   *logger.Logger
}

func NewInline(bookings *booking.Service, log *logger.Logger) *Inline {
	return &Inline{Bookings: bookings, Logger: log}
}

func (d *Inline) DispatchTicketEmail(_ context.Context, bookingID string) error {
	go func() {
		// Detached from the request: the client response never waits on SMTP.
		ctx := context.Background()
		if err := d.Bookings.DeliverTicket(ctx, bookingID); err != nil {
			d.Logger.Error("DISPATCH", fmt.Sprintf("ticket email for booking %s failed: %v", bookingID, err))
		}
	}()
	return nil
}
