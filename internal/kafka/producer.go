package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// TicketEmailJob is the message published when a booking needs its ticket
// e-mail sent. The worker loads the booking by id so the payload stays small
// and never goes stale.
type TicketEmailJob struct {
	BookingID string `json:"bookingId"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer}
}

// PublishTicketEmail enqueues a ticket e-mail job keyed by booking id.
func (p *Producer) PublishTicketEmail(ctx context.Context, topic, bookingID string) error {
	value, err := json.Marshal(TicketEmailJob{BookingID: bookingID})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(bookingID),
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
