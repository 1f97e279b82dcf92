package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type Config struct {
	InstanceID       string        `mapstructure:"instance_id"`
	Leader           bool          `mapstructure:"leader"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	DebounceInterval time.Duration `mapstructure:"debounce_interval"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
	BatchCapacity    int           `mapstructure:"batch_capacity"`

	SourceRetries int           `mapstructure:"source_retries"`
	SourceBackoff time.Duration `mapstructure:"source_backoff"`
	Simulate      bool          `mapstructure:"simulate"`
	SimulateSeed  int64         `mapstructure:"simulate_seed"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	BroadcastTopic   string `mapstructure:"broadcast_topic"`
	SessionTimeoutMs int    `mapstructure:"kafka_session_timeout_ms"`

	OutputFile string `mapstructure:"output_file_path"`

	PostgresEnabled bool   `mapstructure:"postgres_enabled"`
	DatabaseURL     string `mapstructure:"database_url"`

	ArchiveEnabled     bool               `mapstructure:"archive_enabled"`
	ArchivePath        string             `mapstructure:"archive_path"`
	ArchiveDestination string             `mapstructure:"archive_destination"`
	CloudStorage       CloudStorageConfig `mapstructure:"cloud_storage"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("poll_interval", DefaultPollInterval.String())
	viper.SetDefault("debounce_interval", DefaultDebounceInterval.String())
	viper.SetDefault("cleanup_interval", DefaultCleanupInterval.String())
	viper.SetDefault("batch_capacity", DefaultBatchCapacity)
	viper.SetDefault("source_retries", DefaultSourceRetries)
	viper.SetDefault("source_backoff", DefaultSourceBackoff.String())
	viper.SetDefault("broadcast_topic", "expeditor_state")

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; flags and env cover the defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if config.BatchCapacity < MinBatchCapacity || config.BatchCapacity > MaxBatchCapacity {
		return nil, fmt.Errorf("batch_capacity must be between %d and %d, got %d",
			MinBatchCapacity, MaxBatchCapacity, config.BatchCapacity)
	}

	return &config, nil
}
