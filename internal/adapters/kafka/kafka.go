// Package kafka provides the outbound producer that mirrors platform
// events (trade confirmations, social notices) to the broker for
// downstream consumers. Real-time fan-out to connected clients does not
// pass through here; that is the hub's job.
package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

// InitProducer builds a synchronous producer tuned the way the rest of
// the platform expects: all-replica acks, snappy compression, keyed
// partitioning so one user's events stay ordered.
func InitProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "stream-service"
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// EventProducer publishes platform events to one topic, keyed by user.
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventProducer(producer sarama.SyncProducer, topic string) *EventProducer {
	return &EventProducer{producer: producer, topic: topic}
}

// Emit produces one event to the platform topic. The key keeps all of
// a user's events in one partition.
func (p *EventProducer) Emit(userKey string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal platform event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(userKey),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("produce platform event: %w", err)
	}
	return nil
}

func (p *EventProducer) Close() error {
	return p.producer.Close()
}
