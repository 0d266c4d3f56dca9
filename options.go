// Package transfer provides functional options for configuring client and
// per-transfer behavior. These options follow the functional options pattern
// for clean, composable configuration.
package transfer

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/objstream/transfer/transfertypes"
)

// WithRegion sets the region for object-store operations.
// If not specified, uses the default region from the credential chain.
func WithRegion(region string) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom object-store endpoint URL.
// This is required for S3-compatible services such as Wasabi or MinIO.
func WithEndpoint(endpoint string) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithBucket sets the destination bucket for all transfers on the client.
func WithBucket(bucket string) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Bucket = bucket
	}
}

// WithStaticCredentials sets an explicit key pair instead of the default
// credential chain. Use this for S3-compatible services with their own keys.
func WithStaticCredentials(accessKeyID, secretAccessKey string) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// Required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithPartSize sets the default multipart part size for transfers.
// Must be at least 5MB. When unset, the part size is chosen per file.
func WithPartSize(partSize int64) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithConcurrency sets the upload worker pool size.
// Default is 5 concurrent part uploads.
func WithConcurrency(concurrency int) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithMaxAttempts sets the number of attempts per part, first try included.
// Default is 3.
func WithMaxAttempts(maxAttempts int) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if maxAttempts > 0 {
			c.MaxAttempts = maxAttempts
		}
	}
}

// WithRetryBaseDelay sets the base delay for exponential backoff between
// part upload attempts. Default is 500ms.
func WithRetryBaseDelay(delay time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if delay > 0 {
			c.RetryBaseDelay = delay
		}
	}
}

// WithAttemptTimeout bounds a single part upload attempt. Default is 60s.
func WithAttemptTimeout(timeout time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if timeout > 0 {
			c.AttemptTimeout = timeout
		}
	}
}

// WithProgressInterval sets the minimum gap between observer updates.
// Default is 1.5s.
func WithProgressInterval(interval time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if interval > 0 {
			c.ProgressInterval = interval
		}
	}
}

// WithDownloadRetries sets how many times staging from the source is retried
// end to end after a recoverable failure. Default is 2.
func WithDownloadRetries(retries int) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if retries >= 0 {
			c.DownloadRetries = retries
		}
	}
}

// WithPresignExpiry sets the default lifetime of minted retrieval URLs.
// Values are clamped to [1h, 7d]. Default is 24h.
func WithPresignExpiry(expiry time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if expiry > 0 {
			c.PresignExpiry = expiry
		}
	}
}

// WithStagingDir sets the directory where sources are materialized before
// upload. Defaults to the OS temporary directory.
func WithStagingDir(dir string) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.StagingDir = dir
	}
}

// WithFilesystem sets the filesystem abstraction used for staging.
// Defaults to the OS filesystem. Tests can pass an in-memory filesystem.
func WithFilesystem(filesystem fs.Filesystem) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the structured logger for pipeline diagnostics.
// Defaults to the package-level default logger.
func WithLogger(logger *log.Logger) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithSessionStore sets the persistence backend for session metadata.
// When unset, session records are kept in memory only.
func WithSessionStore(store transfertypes.SessionStore) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Store = store
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// Per-transfer options.

// WithContentType sets the content type stored with the object.
// When unset, the type is sniffed from the staged bytes.
func WithContentType(contentType string) transfertypes.TransferOption {
	return func(c *transfertypes.TransferOptionConfig) {
		c.ContentType = contentType
	}
}

// WithTransferPartSize overrides the part size for one transfer.
func WithTransferPartSize(partSize int64) transfertypes.TransferOption {
	return func(c *transfertypes.TransferOptionConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithTransferConcurrency overrides the worker pool size for one transfer.
func WithTransferConcurrency(concurrency int) transfertypes.TransferOption {
	return func(c *transfertypes.TransferOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithObserver registers a progress observer for one transfer.
// The observer receives rate-limited snapshots for each stage.
func WithObserver(observer transfertypes.Observer) transfertypes.TransferOption {
	return func(c *transfertypes.TransferOptionConfig) {
		c.Observer = observer
	}
}

// WithURL requests a time-limited retrieval URL in the transfer result.
func WithURL() transfertypes.TransferOption {
	return func(c *transfertypes.TransferOptionConfig) {
		c.MintURL = true
	}
}

// WithURLExpiry requests a retrieval URL with an explicit lifetime,
// clamped to [1h, 7d].
func WithURLExpiry(expiry time.Duration) transfertypes.TransferOption {
	return func(c *transfertypes.TransferOptionConfig) {
		c.MintURL = true
		c.PresignExpiry = expiry
	}
}
