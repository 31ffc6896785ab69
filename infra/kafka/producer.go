// Package kafka holds the broker-backed sinks for fill reports: one on
// segmentio/kafka-go and one on IBM/sarama. Both satisfy
// broadcaster.Sink.
package kafka

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"
)

// Producer writes synchronously, waiting for all in-sync replicas.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string, writeTimeout time.Duration) (*Producer, error) {
	if err := checkTarget(brokers, topic); err != nil {
		return nil, err
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: writeTimeout,
		},
	}, nil
}

func (p *Producer) Send(
	ctx context.Context,
	key []byte,
	value []byte,
) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
	return errors.Wrapf(err, "kafka-go write to %s", p.writer.Topic)
}

func (p *Producer) Close() error {
	return errors.Wrap(p.writer.Close(), "close kafka-go writer")
}

func checkTarget(brokers []string, topic string) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		return errors.New("kafka: empty topic")
	}
	return nil
}
