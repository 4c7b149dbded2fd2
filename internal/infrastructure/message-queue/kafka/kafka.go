package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alimikegami/point-of-sales/payment-bridge/config"
	"github.com/alimikegami/point-of-sales/payment-bridge/internal/dto"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events keyed by order id, so every event of one order lands
// on the same partition.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

func CreateKafkaPublisher(config *config.Config) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(config.KafkaConfig.BrokerAddress),
			Topic:                  config.KafkaConfig.BrokerTopic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           defaultPublishTimeout,
			MaxAttempts:            3,
			WriteBackoffMax:        100 * time.Millisecond,
			AllowAutoTopicCreation: true,
			Transport: &kafka.Transport{
				DialTimeout: time.Second,
			},
		},
		timeout: defaultPublishTimeout,
	}
}

func (p *Publisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Kafka message: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
