package queue

import (
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// NewKafkaWriter returns a writer for topic that keys messages by hash so
// all events of one borrower land on the same partition.
func NewKafkaWriter(brokers []string, topic string) (*kafkago.Writer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers")
	}
	if topic == "" {
		return nil, errors.New("kafka: empty topic")
	}
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}, nil
}
