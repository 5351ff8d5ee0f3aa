package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader}
}

// Start consumes ticket e-mail jobs until the context is cancelled.
func (c *Consumer) Start(ctx context.Context, handler func(job TicketEmailJob)) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("kafka: error reading message: %v", err)
			continue
		}

		var job TicketEmailJob
		if err := json.Unmarshal(msg.Value, &job); err != nil {
			log.Printf("kafka: failed to unmarshal message: %v", err)
			continue
		}
		handler(job)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
