// Command seed publishes a batch of sample events to the events topic so a
// locally running dashboard has some data to show.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/justbelka/VSFI2024/internal/config"
	"github.com/justbelka/VSFI2024/internal/domain/event"
	"github.com/justbelka/VSFI2024/internal/infrastructure/kafka"

	"github.com/google/uuid"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	batches := flag.Int("batches", 1, "how many copies of the sample batch to publish")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer producer.Close()

	ctx := context.Background()

	published := 0
	for i := 0; i < *batches; i++ {
		for _, m := range sampleBatch() {
			value, err := json.Marshal(m)
			if err != nil {
				logger.Error("failed to marshal message", "error", err)
				os.Exit(1)
			}

			if err := producer.SendMessage(ctx, []byte(uuid.NewString()), value); err != nil {
				logger.Error("failed to publish message", "error", err)
				os.Exit(1)
			}
			published++
		}
	}

	logger.Info("published sample events", "count", published, "topic", producer.GetTopic())
}

func sampleBatch() []event.Message {
	imageA := uuid.NewString()
	imageB := uuid.NewString()
	alice := "alice"
	amount := int64(25)

	return []event.Message{
		{User: "alice", Type: "upload", ImageUUID: &imageA},
		{User: "bob", Type: "upload", ImageUUID: &imageB},
		{User: "carol", Type: "buy", ImageUUID: &imageA, Amount: &amount},
		{User: "bob", Type: "transfer", Target: &alice},
	}
}
