package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/justbelka/VSFI2024/internal/domain/event"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	kafkago "github.com/segmentio/kafka-go"
)

var (
	eventsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_events_saved_total",
		Help: "The total number of events persisted to the event store",
	})
	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_events_dropped_total",
		Help: "The total number of messages dropped without being persisted",
	}, []string{"reason"})
	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "consumer_processing_duration_seconds",
		Help:    "Time taken to map and persist one message",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2},
	})
)

// MessageSource is the log the consumer reads from. CommitMessages advances
// the durable group offset; FetchMessage never advances it.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// EventWriter is the persistence side of the pipeline.
type EventWriter interface {
	Insert(ctx context.Context, e *event.Event) error
}

// Consumer pulls messages from the log, maps them to events and persists
// them, committing the offset only after a successful write. A store outage
// therefore stalls ingestion instead of losing messages, while unparseable
// payloads are dropped permanently since redelivery cannot fix them.
type Consumer struct {
	source MessageSource
	store  EventWriter
	logger *slog.Logger

	now          func() time.Time
	fetchBackoff time.Duration
}

func New(source MessageSource, store EventWriter, logger *slog.Logger) *Consumer {
	return &Consumer{
		source:       source,
		store:        store,
		logger:       logger,
		now:          time.Now,
		fetchBackoff: 1 * time.Second,
	}
}

// Run processes messages until ctx is cancelled. Infrastructure errors are
// never fatal: the loop logs and keeps pulling.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("ingestion consumer started")

	for {
		msg, err := c.source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("ingestion consumer stopped")
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			select {
			case <-ctx.Done():
				c.logger.Info("ingestion consumer stopped")
				return nil
			case <-time.After(c.fetchBackoff):
			}
			continue
		}

		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafkago.Message) {
	started := time.Now()

	if len(msg.Value) == 0 {
		// Redelivery cannot make an empty payload parseable; skip it.
		c.logger.Error("message without payload",
			"partition", msg.Partition, "offset", msg.Offset)
		eventsDropped.WithLabelValues("empty").Inc()
		return
	}

	m, err := event.ParseMessage(msg.Value)
	if err != nil {
		c.logger.Error("failed to deserialize shisha event", "error", err,
			"partition", msg.Partition, "offset", msg.Offset)
		eventsDropped.WithLabelValues("malformed").Inc()
		return
	}

	if !m.KnownType() {
		c.logger.Warn("unknown event type, defaulting to upload",
			"type", m.Type, "user", m.User)
	}

	e := m.Event(c.now())
	if err := c.store.Insert(ctx, &e); err != nil {
		// Offset stays put so the message is redelivered once the store
		// recovers (at-least-once).
		c.logger.Error("failed to write message in db, not committing offset",
			"error", err, "partition", msg.Partition, "offset", msg.Offset)
		return
	}

	eventsSaved.Inc()
	processingDuration.Observe(time.Since(started).Seconds())
	c.logger.Info("event saved", "actor", e.Actor, "event_type", e.EventType)

	if err := c.source.CommitMessages(ctx, msg); err != nil {
		// The write is already durable; a redelivery after restart would
		// produce one duplicate row. Accepted at-least-once tradeoff.
		c.logger.Error("failed to commit offset", "error", err)
	}
}
