package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"topmovies/movie/pkg/model"
	"topmovies/pkg/logging"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

const (
	flushTimeoutMs = 5000
	// Undelivered messages fail after this long instead of librdkafka's
	// five minute default.
	messageTimeoutMs = 10000
)

type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// Publisher defines a Kafka producer of rating events.
type Publisher struct {
	producer producer
	topic    string
	logger   *zap.Logger
}

// NewPublisher creates a new Kafka rating event publisher.
func NewPublisher(addr string, topic string, logger *zap.Logger) (*Publisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  addr,
		"message.timeout.ms": messageTimeoutMs,
	})
	if err != nil {
		return nil, err
	}
	return newPublisher(p, topic, logger), nil
}

func newPublisher(p producer, topic string, logger *zap.Logger) *Publisher {
	logger = logger.With(
		zap.String(logging.FieldComponent, "kafka-publisher"),
		zap.String("topic", topic),
	)
	return &Publisher{producer: p, topic: topic, logger: logger}
}

// Publish sends a rating event keyed by movie id and waits for its delivery
// report or for ctx to end.
func (p *Publisher) Publish(ctx context.Context, event *model.RatingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	delivery := make(chan kafka.Event, 1)
	topic := p.topic
	if err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.MovieID.String()),
		Value:          payload,
	}, delivery); err != nil {
		return fmt.Errorf("produce rating event: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", e)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("deliver rating event: %w", msg.TopicPartition.Error)
		}
	}
	p.logger.Debug("Published rating event", zap.Stringer("event", event))
	return nil
}

// Close flushes outstanding messages and closes the producer.
func (p *Publisher) Close() {
	if remaining := p.producer.Flush(flushTimeoutMs); remaining != 0 {
		p.logger.Warn("Rating events not delivered", zap.Int("remaining", remaining))
	}
	p.producer.Close()
}
