package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaJobEventPublisher struct {
	w kafkaWriter
}

// NewKafkaJobEventPublisher job events keyed by job id
func NewKafkaJobEventPublisher(w *kafka.Writer) JobEventPublisher {
	return &kafkaJobEventPublisher{w: w}
}

func (p *kafkaJobEventPublisher) Publish(ctx context.Context, event domain.JobEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.JobID, err)
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.JobID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

func (p *kafkaJobEventPublisher) Close() error {
	return p.w.Close()
}

type logJobEventPublisher struct{}

// NewLogJobEventPublisher used when kafka is disabled, events only reach the log
func NewLogJobEventPublisher() JobEventPublisher {
	return logJobEventPublisher{}
}

func (logJobEventPublisher) Publish(ctx context.Context, event domain.JobEvent) error {
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.String("job_id", event.JobID),
		zap.String("video_id", event.VideoID),
		zap.String("group_id", event.GroupID),
		zap.Int("attempts", event.Attempts),
		zap.Int64("duration_ms", event.DurationMS),
	}
	if event.Type == domain.JobEventFailed {
		logger.Log.Error("job failed", append(fields, zap.String("error", event.Error))...)
		return nil
	}
	logger.Log.Info("job completed", append(fields, zap.Strings("qualities", event.Qualities))...)
	return nil
}

func (logJobEventPublisher) Close() error { return nil }
