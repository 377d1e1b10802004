package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"topmovies/movie/pkg/model"
	"topmovies/pkg/logging"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

// pollInterval bounds a single read so cancellation is noticed promptly.
const pollInterval = 500 * time.Millisecond

type consumer interface {
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	Close() error
}

// Ingester defines a Kafka ingester of rating events.
type Ingester struct {
	consumer consumer
	topic    string
	logger   *zap.Logger
}

// NewIngester creates a new Kafka rating event ingester.
func NewIngester(addr string, groupID string, topic string, logger *zap.Logger) (*Ingester, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": addr,
		"group.id":          groupID,
		"auto.offset.reset": "earliest",
	})
	if err != nil {
		return nil, err
	}
	return newIngester(c, topic, logger), nil
}

func newIngester(c consumer, topic string, logger *zap.Logger) *Ingester {
	logger = logger.With(
		zap.String(logging.FieldComponent, "kafka-ingester"),
		zap.String("topic", topic),
	)
	return &Ingester{consumer: c, topic: topic, logger: logger}
}

// Ingest starts ingestion from Kafka and returns a channel of the rating
// events read from the topic. The channel is closed and the consumer shut
// down once ctx ends.
func (i *Ingester) Ingest(ctx context.Context) (<-chan model.RatingEvent, error) {
	i.logger.Info("Starting Kafka ingester")
	if err := i.consumer.SubscribeTopics([]string{i.topic}, nil); err != nil {
		return nil, err
	}

	ch := make(chan model.RatingEvent, 1)
	go func() {
		defer func() {
			close(ch)
			if err := i.consumer.Close(); err != nil {
				i.logger.Warn("Failed to close consumer", zap.Error(err))
			}
		}()
		for ctx.Err() == nil {
			msg, err := i.consumer.ReadMessage(pollInterval)
			if err != nil {
				var kerr kafka.Error
				if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				i.logger.Warn("Consumer error", zap.Error(err))
				continue
			}
			var event model.RatingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				i.logger.Warn("Skipping malformed rating event", zap.Error(err))
				continue
			}
			select {
			case ch <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
