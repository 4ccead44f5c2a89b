package config

// Config holds all configuration for the training pipeline
type Config struct {
	Training TrainingConfig
	Tracking TrackingConfig
	MinIO    MinIOConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// TrainingConfig holds defaults for the training loop
type TrainingConfig struct {
	Epochs            int     `mapstructure:"epochs"`
	BatchSize         int     `mapstructure:"batch_size"`
	LearningRate      float64 `mapstructure:"learning_rate"`
	Momentum          float64 `mapstructure:"momentum"`
	ValidationCadence int     `mapstructure:"validation_cadence"`
	Seed              int64   `mapstructure:"seed"`
}

// TrackingConfig holds local experiment-tracking paths
type TrackingConfig struct {
	Dir       string `mapstructure:"dir"`
	ModelsDir string `mapstructure:"models_dir"`
}

// MinIOConfig holds artifact object-storage configuration
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
