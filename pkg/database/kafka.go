package database

import (
	"fmt"
	"time"

	"video_stream_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry checks the topic is reachable on one of the brokers, then builds a Writer
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	var err error

	for attempt := 1; attempt <= max(k.RetryCount, 1); attempt++ {
		if err = pingKafka(k.Brokers, k.Topic); err == nil {
			logger.Log.Info("Kafka writer ready", zap.Strings("brokers", k.Brokers), zap.String("topic", k.Topic))
			return &kafka.Writer{
				Addr:                   kafka.TCP(k.Brokers...),
				Topic:                  k.Topic,
				Balancer:               &kafka.LeastBytes{},
				AllowAutoTopicCreation: true,
			}, nil
		}

		logger.Log.Warn("Kafka broker unreachable, retrying...",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(k.RetryInterval)
	}

	return nil, fmt.Errorf("kafka writer for topic %s after %d attempts: %w", k.Topic, k.RetryCount, err)
}

func pingKafka(brokers []string, topic string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	var err error
	for _, broker := range brokers {
		var conn *kafka.Conn
		conn, err = kafka.Dial("tcp", broker)
		if err != nil {
			continue
		}
		_, err = conn.ReadPartitions(topic)
		conn.Close()
		if err == nil {
			return nil
		}
	}
	return err
}
