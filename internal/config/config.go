package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/texture-tool/internal/model"
)

// Config holds the main configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Defaults Defaults `mapstructure:"defaults"`
	Storage  Storage  `mapstructure:"storage"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Retry    Retry    `mapstructure:"retry"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort     string        `mapstructure:"http_port"`     // HTTP port to listen on
	QueueSize    int           `mapstructure:"queue_size"`    // Pending batches accepted before rejecting
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // Also used for reading headers
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // Maximum time to write a response
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`  // Keep-alive idle limit
}

// Defaults is the initial parameter state offered to clients.
type Defaults struct {
	Operation    string     `mapstructure:"operation"`
	Watermark    model.Rect `mapstructure:"watermark"`
	TargetSize   uint16     `mapstructure:"target_size"`
	OutputFolder string     `mapstructure:"output_folder"`
}

// Storage holds configuration for where outputs go besides the local disk.
type Storage struct {
	Mirror Mirror `mapstructure:"mirror"`
}

// Mirror holds the S3-compatible bucket that receives a copy of every output.
type Mirror struct {
	Enabled    bool   `mapstructure:"enabled"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	Prefix     string `mapstructure:"prefix"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Kafka holds configuration for the batch submission topic.
type Kafka struct {
	Enabled bool     `mapstructure:"enabled"`
	GroupID string   `mapstructure:"group_id"` // Consumer group ID
	Topic   string   `mapstructure:"topic"`    // Kafka topic name
	Brokers []string `mapstructure:"brokers"`  // List of Kafka broker addresses
}

// Retry defines retry policy configuration.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Params converts the defaults into a parameter state.
func (d Defaults) Params() (model.Params, error) {
	op, err := model.ParseOperation(d.Operation)
	if err != nil {
		return model.Params{}, fmt.Errorf("defaults: %w", err)
	}

	return model.Params{
		Operation:    op,
		Watermark:    d.Watermark,
		TargetSize:   d.TargetSize,
		OutputFolder: d.OutputFolder,
	}, nil
}

// setDefaults registers values used when the file omits a key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", ":8080")
	v.SetDefault("server.queue_size", 16)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("defaults.operation", model.DownSample.String())
	v.SetDefault("defaults.watermark.x", 91)
	v.SetDefault("defaults.watermark.y", 97)
	v.SetDefault("defaults.watermark.width", 8)
	v.SetDefault("defaults.watermark.height", 2)
	v.SetDefault("defaults.target_size", 512)

	v.SetDefault("kafka.topic", "texture-batches")
	v.SetDefault("kafka.group_id", "texture-tool")

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", time.Second)
	v.SetDefault("retry.backoff", 2.0)
}

// bindEnv binds secrets and deployment-specific values to environment variables.
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"storage.mirror.access_key": "MINIO_ACCESS_KEY",
		"storage.mirror.secret_key": "MINIO_SECRET_KEY",
		"kafka.brokers":             "KAFKA_BROKERS",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	return nil
}

// Load reads the configuration from the YAML file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if _, err := cfg.Defaults.Params(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads the configuration from the specified file path.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to load config")
	}

	return cfg
}
