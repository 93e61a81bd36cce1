package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/profai/profai-backend/internal/api"
	"github.com/profai/profai-backend/internal/config"
	"github.com/profai/profai-backend/internal/core"
	"github.com/profai/profai-backend/internal/db"
	"github.com/profai/profai-backend/internal/elevenlabs"
	"github.com/profai/profai-backend/internal/genai"
	"github.com/profai/profai-backend/internal/kafka"
	"github.com/profai/profai-backend/internal/logger"
	"github.com/profai/profai-backend/internal/prompts"
	"github.com/profai/profai-backend/internal/script"
	"github.com/profai/profai-backend/internal/workers"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	repo, err := db.NewRepository(cfg.DSN(), cfg.RedisAddr, log)
	if err != nil {
		log.Fatal("failed to initialize profile store", "error", err)
	}
	defer repo.Close()

	gen := genai.New(genai.Config{
		APIKey:      cfg.OpenAIKey,
		ChatModel:   cfg.ChatModel,
		ScriptModel: cfg.ScriptModel,
		TTSModel:    cfg.TTSModel,
	})

	personas := script.DefaultPersonas()
	var synth api.Synthesizer = gen
	if cfg.TTSProvider == "elevenlabs" && cfg.ElevenLabsKey != "" {
		synth = elevenlabs.New(elevenlabs.Config{APIKey: cfg.ElevenLabsKey, SpeakerBoost: true})
		personas = recastVoices(personas, cfg)
	}

	analyzer := core.NewAnalyzer(log)
	composer := prompts.NewComposer()
	post := script.NewPostProcessor(personas, log)

	var producer *kafka.Producer
	var publisher api.Publisher
	pool := workers.NewPool(cfg.Workers, log)
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		publisher = producer
	}

	handler := api.NewHandler(log, repo, analyzer, composer, post, gen, synth, publisher, api.Services{
		OpenAI:     cfg.OpenAIKey != "",
		ElevenLabs: cfg.ElevenLabsKey != "",
		Kafka:      cfg.KafkaEnabled,
	})
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		log.Info("starting HTTP server", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	if cfg.KafkaEnabled {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, repo, pool, log)
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error("consumer error", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	pool.Stop()
	if producer != nil {
		_ = producer.Close()
	}
	log.Info("shutdown complete")
}

// recastVoices swaps the cast's voice ids for the configured provider voices
// while keeping the persona descriptions.
func recastVoices(personas map[string]script.Voice, cfg config.Config) map[string]script.Voice {
	if cfg.VoiceSarah != "" {
		sarah := personas["sarah"]
		sarah.VoiceID = cfg.VoiceSarah
		personas["sarah"] = sarah
	}
	if cfg.VoiceMarcus != "" {
		marcus := personas["marcus"]
		marcus.VoiceID = cfg.VoiceMarcus
		personas["marcus"] = marcus
	}
	return personas
}
