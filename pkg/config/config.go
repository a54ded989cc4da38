package config

// Streaming definition media_service / transcode_worker YAML structure
type Streaming struct {
	Port string `mapstructure:"port"`
	IP   string `mapstructure:"ip"`

	Storage    StorageConfig   `mapstructure:"storage"`
	Metadata   MetadataConfig  `mapstructure:"metadata"`
	MongoDB    DatabaseConfig  `mapstructure:"mongo"`
	PostgreSQL DatabaseConfig  `mapstructure:"pg"`
	Redis      RedisConfig     `mapstructure:"redis"`
	RabbitMQ   RabbitMQConfig  `mapstructure:"rabbitmq"`
	Queue      QueueConfig     `mapstructure:"queue"`
	KafKa      KafkaConfig     `mapstructure:"kafka"`
	MinIO      MinIOConfig     `mapstructure:"minio"`
	Transcode  TranscodeConfig `mapstructure:"transcode"`
}

// StorageConfig definition on-disk layout roots
type StorageConfig struct {
	VideoDir    string `mapstructure:"video_dir"`
	UploadDir   string `mapstructure:"upload_dir"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// MetadataConfig selects the metadata store driver ("mongo" or "postgres")
type MetadataConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	URI           string `mapstructure:"uri"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RedisConfig definition redis setting, sentinel is used when SentinelAddrs is set
type RedisConfig struct {
	Addr          string   `mapstructure:"addr"`
	Password      string   `mapstructure:"password"`
	RedisDB       int      `mapstructure:"redis_db"`
	MasterName    string   `mapstructure:"master_name"`
	SentinelAddrs []string `mapstructure:"sentinel_addrs"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	IP            string `mapstructure:"ip"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// QueueConfig definition the transcode job queue
type QueueConfig struct {
	Backend        string `mapstructure:"backend"`
	Name           string `mapstructure:"name"`
	Workers        int    `mapstructure:"workers"`
	MaxAttempts    int    `mapstructure:"max_attempts"`
	InitialBackoff int    `mapstructure:"initial_backoff_ms"`
	MaxBackoff     int    `mapstructure:"max_backoff_ms"`
	PollTimeout    int    `mapstructure:"poll_timeout_ms"`
}

// KafkaConfig definition job event topic
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// MinIOConfig definition artifact mirror bucket
type MinIOConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	BucketName    string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// TranscodeConfig definition encoder settings
type TranscodeConfig struct {
	FFmpegPath           string `mapstructure:"ffmpeg_path"`
	FFprobePath          string `mapstructure:"ffprobe_path"`
	RequireAllRenditions *bool  `mapstructure:"require_all_renditions"`
	HealthPort           string `mapstructure:"health_port"`
}

// SetDefaults fills the zero values left by the yaml file
func (s *Streaming) SetDefaults() {
	if s.Port == "" {
		s.Port = "4000"
	}
	if s.Storage.VideoDir == "" {
		s.Storage.VideoDir = "videos"
	}
	if s.Storage.UploadDir == "" {
		s.Storage.UploadDir = "uploads"
	}
	if s.Storage.MaxUploadMB <= 0 {
		s.Storage.MaxUploadMB = 100
	}
	if s.Metadata.Driver == "" {
		s.Metadata.Driver = "mongo"
	}
	if s.Queue.Backend == "" {
		s.Queue.Backend = "redis"
	}
	if s.Queue.Name == "" {
		s.Queue.Name = "video-encoding"
	}
	if s.Queue.Workers <= 0 {
		s.Queue.Workers = 2
	}
	if s.Queue.MaxAttempts <= 0 {
		s.Queue.MaxAttempts = 1
	}
	if s.Queue.InitialBackoff <= 0 {
		s.Queue.InitialBackoff = 1000
	}
	if s.Queue.MaxBackoff <= 0 {
		s.Queue.MaxBackoff = 60000
	}
	if s.Queue.PollTimeout <= 0 {
		s.Queue.PollTimeout = 2000
	}
	if s.Transcode.FFmpegPath == "" {
		s.Transcode.FFmpegPath = "ffmpeg"
	}
	if s.Transcode.FFprobePath == "" {
		s.Transcode.FFprobePath = "ffprobe"
	}
	if s.Transcode.RequireAllRenditions == nil {
		requireAll := true
		s.Transcode.RequireAllRenditions = &requireAll
	}
	if s.Transcode.HealthPort == "" {
		s.Transcode.HealthPort = "50051"
	}
	if s.KafKa.Topic == "" {
		s.KafKa.Topic = "video-encoding-events"
	}
}
