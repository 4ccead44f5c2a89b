package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("luna16")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/luna16")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	var cfg Config

	// Training
	cfg.Training.Epochs = v.GetInt("training_epochs")
	cfg.Training.BatchSize = v.GetInt("training_batch_size")
	cfg.Training.LearningRate = v.GetFloat64("training_learning_rate")
	cfg.Training.Momentum = v.GetFloat64("training_momentum")
	cfg.Training.ValidationCadence = v.GetInt("training_validation_cadence")
	cfg.Training.Seed = v.GetInt64("training_seed")

	// Tracking
	cfg.Tracking.Dir = v.GetString("tracking_dir")
	cfg.Tracking.ModelsDir = v.GetString("tracking_models_dir")

	// MinIO
	cfg.MinIO.Enabled = v.GetBool("minio_enabled")
	cfg.MinIO.Endpoint = v.GetString("minio_endpoint")
	cfg.MinIO.AccessKey = v.GetString("minio_access_key")
	cfg.MinIO.SecretKey = v.GetString("minio_secret_key")
	cfg.MinIO.UseSSL = v.GetBool("minio_use_ssl")
	cfg.MinIO.Bucket = v.GetString("minio_bucket")

	// Metrics
	cfg.Metrics.Enabled = v.GetBool("metrics_enabled")
	cfg.Metrics.Addr = v.GetString("metrics_addr")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Training defaults
	v.SetDefault("training_epochs", 1)
	v.SetDefault("training_batch_size", 32)
	v.SetDefault("training_learning_rate", 0.001)
	v.SetDefault("training_momentum", 0.99)
	v.SetDefault("training_validation_cadence", 5)
	v.SetDefault("training_seed", 42)

	// Tracking defaults
	v.SetDefault("tracking_dir", "./runs")
	v.SetDefault("tracking_models_dir", "./models")

	// MinIO defaults
	v.SetDefault("minio_enabled", false)
	v.SetDefault("minio_endpoint", "localhost:9000")
	v.SetDefault("minio_access_key", "luna16")
	v.SetDefault("minio_secret_key", "luna16123")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("minio_bucket", "luna16-artifacts")

	// Metrics defaults
	v.SetDefault("metrics_enabled", false)
	v.SetDefault("metrics_addr", ":9090")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

func validate(cfg *Config) error {
	if cfg.Training.Epochs < 1 {
		return fmt.Errorf("training epochs must be at least 1")
	}
	if cfg.Training.BatchSize < 1 {
		return fmt.Errorf("training batch size must be at least 1")
	}
	if cfg.Training.ValidationCadence < 1 {
		return fmt.Errorf("validation cadence must be at least 1")
	}
	if cfg.MinIO.Enabled && cfg.MinIO.Endpoint == "" {
		return fmt.Errorf("minio endpoint is required when minio is enabled")
	}
	return nil
}
