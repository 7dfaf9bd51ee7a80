package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"

	"stream-service/internal/hub"
	"stream-service/internal/room"
)

// TickReader is the consuming side of a kafka reader; *kafka.Reader
// satisfies it and tests substitute their own.
type TickReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewTickReader builds a kafka reader for the market-tick topic.
func NewTickReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1e6,
	})
}

// KafkaIngestor consumes market ticks from the broker and fans each one
// out to its symbol room. It replaces the synthetic driver when a real
// upstream pipeline produces the ticks.
type KafkaIngestor struct {
	reader TickReader
	pub    Publisher
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewKafkaIngestor(reader TickReader, pub Publisher, logger *slog.Logger) *KafkaIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaIngestor{
		reader: reader,
		pub:    pub,
		logger: logger,
	}
}

// Start begins consuming ticks.
func (k *KafkaIngestor) Start(ctx context.Context) error {
	k.ctx, k.cancel = context.WithCancel(ctx)

	k.wg.Add(1)
	go k.run()

	k.logger.Info("kafka tick ingestor started")
	return nil
}

// Stop shuts the consumer down.
func (k *KafkaIngestor) Stop(ctx context.Context) error {
	if k.cancel != nil {
		k.cancel()
	}
	if err := k.reader.Close(); err != nil {
		k.logger.Warn("failed to close kafka reader", "error", err)
	}

	done := make(chan struct{})
	go func() {
		k.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		k.logger.Info("kafka tick ingestor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *KafkaIngestor) run() {
	defer k.wg.Done()

	for {
		msg, err := k.reader.ReadMessage(k.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			k.logger.Error("kafka read error", "error", err)
			return
		}

		var update hub.MarketUpdate
		if err := json.Unmarshal(msg.Value, &update); err != nil {
			k.logger.Warn("malformed tick dropped",
				"topic", msg.Topic, "offset", msg.Offset, "error", err)
			continue
		}
		if update.Symbol == "" {
			k.logger.Warn("tick without symbol dropped", "offset", msg.Offset)
			continue
		}

		k.pub.Publish(room.Symbol(update.Symbol), hub.EventMarketUpdate, update)
	}
}
