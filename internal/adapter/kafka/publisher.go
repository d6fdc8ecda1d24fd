// Package kafka streams fresh observations to a Kafka topic so downstream
// consumers (alerting, archival) see conditions as they are fetched.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/swell-api/internal/domain"
)

// Publisher produces observation messages to a Kafka topic.
// It implements pipeline.ConditionsPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the conditions topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes one observation and writes it, keyed by station id so a
// station's readings stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, obs domain.Observation) error {
	msg, err := serializeToMessage(obs)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(obs domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "wind_source", Value: []byte(obs.WindSource)},
			{Key: "observed_at", Value: []byte(obs.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
