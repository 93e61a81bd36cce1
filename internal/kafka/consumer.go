package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"

	"github.com/profai/profai-backend/internal/core"
	"github.com/profai/profai-backend/internal/db"
	"github.com/profai/profai-backend/internal/logger"
	"github.com/profai/profai-backend/internal/workers"
)

// Consumer reads interaction events and refreshes stored learner profiles
// asynchronously from the live turn: the profile a chat request reads
// reflects interactions up to some earlier turn, never the in-flight one.
type Consumer struct {
	reader *kafka.Reader
	repo   *db.Repository
	pool   *workers.Pool
	log    *logger.Logger
}

func NewConsumer(brokers []string, topic, groupID string, repo *db.Repository, pool *workers.Pool, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		pool:   pool,
		log:    log,
	}
}

// Start consumes until ctx is cancelled. Each event is logged to the
// interaction table and dispatched to the per-user pool for the profile
// read-modify-write.
func (c *Consumer) Start(ctx context.Context) error {
	defer c.reader.Close()

	c.log.Info("interaction consumer started")

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var event InteractionEvent
		if err := sonic.Unmarshal(m.Value, &event); err != nil {
			c.log.Warn("skipping undecodable interaction event", "error", err)
			continue
		}
		if event.UserID == "" || len(event.Interactions) == 0 {
			c.log.Warn("skipping incomplete interaction event", "userId", event.UserID)
			continue
		}

		for _, turn := range event.Interactions {
			if err := c.repo.LogInteraction(ctx, event.UserID, turn.Role, turn.Content, m.Time.UnixMilli()); err != nil {
				c.log.Warn("failed to log interaction", "userId", event.UserID, "error", err)
			}
		}

		c.pool.Dispatch(event.UserID, func() {
			c.refresh(event)
		})
	}
}

// refresh folds one event into the stored profile. A learner without a
// stored profile is skipped, not invented: missing profiles surface as
// not-found on the synchronous path and must not masquerade as fresh ones.
func (c *Consumer) refresh(event InteractionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prior, err := c.repo.GetProfile(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, core.ErrProfileNotFound) {
			c.log.Warn("no stored profile for event, skipping refresh", "userId", event.UserID)
		} else {
			c.log.Error("failed to load profile for refresh", "userId", event.UserID, "error", err)
		}
		return
	}

	updated, err := core.UpdateProfile(prior, event.Interactions, time.Now())
	if err != nil {
		c.log.Warn("profile refresh skipped", "userId", event.UserID, "error", err)
		return
	}

	if err := c.repo.SaveProfile(ctx, event.UserID, updated); err != nil {
		c.log.Error("failed to save refreshed profile", "userId", event.UserID, "error", err)
		return
	}

	c.log.Debug("profile refreshed", "userId", event.UserID, "totalInteractions", updated.TotalInteractions)
}
