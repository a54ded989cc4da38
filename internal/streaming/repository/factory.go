package repository

import (
	"context"
	"fmt"
	"time"

	"video_stream_service/pkg/config"
	"video_stream_service/pkg/database"
	"video_stream_service/pkg/logger"

	"go.uber.org/zap"
)

// OpenVideoRepo connects the configured metadata driver and migrates it
func OpenVideoRepo(ctx context.Context, cfg config.Streaming) (VideoRepo, func(), error) {
	var (
		repo    VideoRepo
		closeFn func()
	)

	switch cfg.Metadata.Driver {
	case "postgres":
		db, err := database.NewPGConnection(database.Connection{
			ConnectStr: fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
				cfg.PostgreSQL.Host, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database, cfg.PostgreSQL.Port),
			RetryCount:    cfg.PostgreSQL.RetryCount,
			RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		repo = NewVideoRepo(db)
		closeFn = func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
	case "mongo":
		uri := cfg.MongoDB.URI
		if uri == "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoDB.User, cfg.MongoDB.Password, cfg.MongoDB.Host, cfg.MongoDB.Port)
		}
		mdb, err := database.NewMongoDB(ctx, database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoDB.RetryCount,
			RetryInterval: time.Duration(cfg.MongoDB.RetryInterval) * time.Second,
		}, cfg.MongoDB.Database)
		if err != nil {
			return nil, nil, err
		}
		repo = NewMongoVideoRepo(mdb.Database)
		closeFn = func() {
			mdb.Close(context.Background())
		}
	default:
		return nil, nil, fmt.Errorf("unknown metadata driver %q", cfg.Metadata.Driver)
	}

	if err := repo.Migrate(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("migrate video store: %w", err)
	}
	logger.Log.Info("video store ready", zap.String("driver", cfg.Metadata.Driver))
	return repo, closeFn, nil
}

// OpenJobQueue connects the configured queue backend
func OpenJobQueue(ctx context.Context, cfg config.Streaming) (JobQueue, error) {
	pollTimeout := time.Duration(cfg.Queue.PollTimeout) * time.Millisecond

	switch cfg.Queue.Backend {
	case "redis":
		rdb, err := database.NewRedisClient(ctx, database.RedisConnection{
			Addr:          cfg.Redis.Addr,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.RedisDB,
			MasterName:    cfg.Redis.MasterName,
			SentinelAddrs: cfg.Redis.SentinelAddrs,
		})
		if err != nil {
			return nil, err
		}
		return NewRedisJobQueue(rdb, cfg.Queue.Name, pollTimeout), nil
	case "rabbitmq":
		retryInterval := time.Duration(cfg.RabbitMQ.RetryInterval) * time.Second
		conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
			ConnectStr:    fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.IP, cfg.RabbitMQ.Port),
			RetryCount:    cfg.RabbitMQ.RetryCount,
			RetryInterval: retryInterval,
		})
		if err != nil {
			return nil, err
		}
		ch, err := database.GetRabbitMQChannelWithRetry(conn, cfg.RabbitMQ.RetryCount, retryInterval)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return NewRabbitJobQueue(database.NewRabbitRepository(ch), cfg.Queue.Name, cfg.Queue.Workers, pollTimeout, func() error {
			ch.Close()
			return conn.Close()
		})
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}
}

// OpenJobEventPublisher kafka when enabled, log otherwise
func OpenJobEventPublisher(cfg config.Streaming) (JobEventPublisher, error) {
	if !cfg.KafKa.Enabled {
		return NewLogJobEventPublisher(), nil
	}
	w, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.KafKa.Brokers,
		Topic:         cfg.KafKa.Topic,
		RetryCount:    cfg.KafKa.RetryCount,
		RetryInterval: time.Duration(cfg.KafKa.RetryInterval) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return NewKafkaJobEventPublisher(w), nil
}

// OpenArtifactMirror nil when minio is disabled
func OpenArtifactMirror(cfg config.Streaming, contentType func(string) string) (*MinIOArtifactMirror, error) {
	if !cfg.MinIO.Enabled {
		return nil, nil
	}
	mc, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      fmt.Sprintf("%s:%d", cfg.MinIO.Host, cfg.MinIO.Port),
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.BucketName,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return NewMinIOArtifactMirror(mc, contentType), nil
}
