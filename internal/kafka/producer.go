package kafka

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"

	"github.com/profai/profai-backend/internal/core"
	"github.com/profai/profai-backend/internal/logger"
)

// InteractionEvent is one batch of turns attributed to a learner. The chat
// handler publishes the user message plus the tutor's reply after each turn;
// the consumer folds accumulated batches into the stored profile.
type InteractionEvent struct {
	UserID       string                  `json:"userId"`
	Interactions []core.ConversationTurn `json:"interactions"`
}

// Producer writes interaction events keyed by user id. The hash balancer
// keeps all events for one learner on the same partition, preserving order.
type Producer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 100 * time.Millisecond,
	})
	return &Producer{writer: writer, log: log}
}

// Publish writes one event, retrying transient broker errors a few times
// with linear backoff before giving up.
func (p *Producer) Publish(ctx context.Context, event InteractionEvent) error {
	value, err := sonic.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
		Time:  time.Now(),
	}

	const maxRetries = 3
	var writeErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		writeErr = p.writer.WriteMessages(ctx, msg)
		if writeErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		backoff := time.Duration((attempt+1)*100) * time.Millisecond
		p.log.Warn("kafka write failed, backing off",
			"attempt", attempt+1, "userId", event.UserID, "backoff", backoff, "error", writeErr)
		time.Sleep(backoff)
	}
	return writeErr
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
