// Package config loads transfer client configuration from a YAML file with
// environment variable overrides, and renders it as client options.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/objstream/transfer"
	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/transfertypes"
)

// Config mirrors the YAML configuration file.
type Config struct {
	// Region is the object-store region
	Region string `yaml:"region"`

	// Endpoint is the object-store endpoint URL
	Endpoint string `yaml:"endpoint"`

	// Bucket is the destination bucket
	Bucket string `yaml:"bucket"`

	// AccessKeyID and SecretAccessKey are static credentials; when empty
	// the default credential chain applies
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`

	// ForcePathStyle enables path-style addressing
	ForcePathStyle bool `yaml:"force_path_style"`

	// PartSize is the multipart part size in bytes; zero picks per file
	PartSize int64 `yaml:"part_size"`

	// Concurrency is the upload worker pool size
	Concurrency int `yaml:"concurrency"`

	// MaxAttempts is the number of attempts per part
	MaxAttempts int `yaml:"max_attempts"`

	// RetryBaseDelay is the base delay for exponential backoff
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// ProgressInterval is the minimum gap between observer updates
	ProgressInterval time.Duration `yaml:"progress_interval"`

	// DownloadRetries is how many times staging is retried
	DownloadRetries int `yaml:"download_retries"`

	// PresignExpiry is the lifetime of minted retrieval URLs
	PresignExpiry time.Duration `yaml:"presign_expiry"`

	// StagingDir is where sources are spooled before upload
	StagingDir string `yaml:"staging_dir"`
}

// Load reads a YAML configuration file and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewError("config", err).WithMessage("cannot read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewError("config", err).WithMessage("cannot parse config file")
	}

	cfg.applyEnv()
	return &cfg, nil
}

// FromEnv builds a configuration from environment variables alone.
func FromEnv() *Config {
	var cfg Config
	cfg.applyEnv()
	return &cfg
}

// applyEnv overlays OBJSTREAM_* environment variables onto the config.
// Environment values win over file values.
func (c *Config) applyEnv() {
	setString(&c.Region, "OBJSTREAM_REGION")
	setString(&c.Endpoint, "OBJSTREAM_ENDPOINT")
	setString(&c.Bucket, "OBJSTREAM_BUCKET")
	setString(&c.AccessKeyID, "OBJSTREAM_ACCESS_KEY_ID")
	setString(&c.SecretAccessKey, "OBJSTREAM_SECRET_ACCESS_KEY")
	setString(&c.StagingDir, "OBJSTREAM_STAGING_DIR")
	setBool(&c.ForcePathStyle, "OBJSTREAM_FORCE_PATH_STYLE")
	setInt64(&c.PartSize, "OBJSTREAM_PART_SIZE")
	setInt(&c.Concurrency, "OBJSTREAM_CONCURRENCY")
	setInt(&c.MaxAttempts, "OBJSTREAM_MAX_ATTEMPTS")
	setInt(&c.DownloadRetries, "OBJSTREAM_DOWNLOAD_RETRIES")
	setDuration(&c.RetryBaseDelay, "OBJSTREAM_RETRY_BASE_DELAY")
	setDuration(&c.ProgressInterval, "OBJSTREAM_PROGRESS_INTERVAL")
	setDuration(&c.PresignExpiry, "OBJSTREAM_PRESIGN_EXPIRY")
}

// Options renders the configuration as client options, skipping zero values
// so client defaults apply.
func (c *Config) Options() []transfertypes.Option {
	var opts []transfertypes.Option

	if c.Region != "" {
		opts = append(opts, transfer.WithRegion(c.Region))
	}
	if c.Endpoint != "" {
		opts = append(opts, transfer.WithEndpoint(c.Endpoint))
	}
	if c.Bucket != "" {
		opts = append(opts, transfer.WithBucket(c.Bucket))
	}
	if c.AccessKeyID != "" {
		opts = append(opts, transfer.WithStaticCredentials(c.AccessKeyID, c.SecretAccessKey))
	}
	if c.ForcePathStyle {
		opts = append(opts, transfer.WithForcePathStyle(true))
	}
	if c.PartSize > 0 {
		opts = append(opts, transfer.WithPartSize(c.PartSize))
	}
	if c.Concurrency > 0 {
		opts = append(opts, transfer.WithConcurrency(c.Concurrency))
	}
	if c.MaxAttempts > 0 {
		opts = append(opts, transfer.WithMaxAttempts(c.MaxAttempts))
	}
	if c.RetryBaseDelay > 0 {
		opts = append(opts, transfer.WithRetryBaseDelay(c.RetryBaseDelay))
	}
	if c.ProgressInterval > 0 {
		opts = append(opts, transfer.WithProgressInterval(c.ProgressInterval))
	}
	if c.DownloadRetries > 0 {
		opts = append(opts, transfer.WithDownloadRetries(c.DownloadRetries))
	}
	if c.PresignExpiry > 0 {
		opts = append(opts, transfer.WithPresignExpiry(c.PresignExpiry))
	}
	if c.StagingDir != "" {
		opts = append(opts, transfer.WithStagingDir(c.StagingDir))
	}

	return opts
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
