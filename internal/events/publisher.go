package events

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/callvox/painel/backend/internal/types"
	"github.com/rs/zerolog"
)

// Publisher emits agent status transition events to Kafka. A nil
// Publisher is valid and drops everything, so callers never have to
// branch on whether Kafka is configured.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewPublisher connects a sync producer to the given brokers. Returns
// nil (and no error) when brokers is empty, meaning Kafka is disabled.
func NewPublisher(brokers []string, topic string, logger zerolog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		logger.Info().Msg("Kafka disabled (no brokers configured)")
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka publisher connected")

	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// PublishTransition sends a status transition keyed by agent so all
// transitions for one agent land on the same partition in order.
func (p *Publisher) PublishTransition(t types.StatusTransition) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transition: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(t.Key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish transition: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
