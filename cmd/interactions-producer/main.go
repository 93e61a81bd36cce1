// Dev tool: publish a single interaction event to the interactions topic so
// the consumer/profile-refresh path can be exercised without the full API.
package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"github.com/profai/profai-backend/internal/config"
	"github.com/profai/profai-backend/internal/core"
	"github.com/profai/profai-backend/internal/kafka"
	"github.com/profai/profai-backend/internal/logger"
)

func main() {
	userID := flag.String("user", "demo-user", "user id to attribute the interaction to")
	message := flag.String("message", "Can you show me how neural networks learn?", "user message content")
	reply := flag.String("reply", "", "optional assistant reply to include in the batch")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	interactions := []core.ConversationTurn{
		{Role: core.RoleUser, Content: *message},
	}
	if strings.TrimSpace(*reply) != "" {
		interactions = append(interactions, core.ConversationTurn{Role: core.RoleAssistant, Content: *reply})
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := producer.Publish(ctx, kafka.InteractionEvent{
		UserID:       *userID,
		Interactions: interactions,
	}); err != nil {
		log.Fatal("failed to publish interaction event", "error", err)
	}
	log.Info("interaction event published", "userId", *userID, "turns", len(interactions))
}
