// Package transfer moves files from a remote source to an S3-compatible
// object store through a local staging area.
//
// A transfer stages the source to disk, splits the staged file into
// fixed-size chunks, uploads the chunks concurrently as multipart parts,
// and finalizes the object. Progress is reported to an optional observer
// at a bounded rate, and failed sessions are aborted so no partial object
// becomes visible.
package transfer

import (
	"context"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/internal/s3api"
	"github.com/objstream/transfer/internal/sink"
	"github.com/objstream/transfer/internal/staging"
	"github.com/objstream/transfer/metastore"
	"github.com/objstream/transfer/transfertypes"
)

// Client runs transfers against one destination bucket. It is safe for
// concurrent use; each Transfer call is an independent session.
type Client struct {
	// s3Client is the underlying object-store client
	s3Client s3api.S3API

	// presignClient mints time-limited retrieval URLs
	presignClient s3api.PresignAPI

	// cfg holds the resolved client configuration
	cfg transfertypes.ClientConfig

	// staging manages the local spool directory
	staging *staging.Area

	// store persists session metadata
	store transfertypes.SessionStore

	// logger receives pipeline diagnostics
	logger *log.Logger

	// mu protects lazy initialization of shared state
	mu sync.RWMutex
}

// New creates a transfer client with the provided options. Credentials come
// from the default chain unless WithStaticCredentials is given, which is the
// usual arrangement for S3-compatible endpoints.
//
// Example:
//
//	client, err := transfer.New(
//	    transfer.WithBucket("media"),
//	    transfer.WithEndpoint("https://s3.eu-central-1.wasabisys.com"),
//	    transfer.WithStaticCredentials(accessKey, secretKey),
//	)
func New(opts ...transfertypes.Option) (*Client, error) {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&clientCfg)
	}

	if clientCfg.Bucket == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("bucket is required")
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					clientCfg.AccessKeyID, clientCfg.SecretAccessKey, ""),
			))
		}
		cfg, err = config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	rawClient := s3.NewFromConfig(cfg, s3Opts...)
	return newClient(rawClient, s3.NewPresignClient(rawClient), clientCfg)
}

// NewWithClient creates a transfer client over an existing object-store
// client. This is primarily useful for testing with mocks; presigning is
// unavailable unless a presign client is also supplied via
// NewWithClients.
func NewWithClient(s3Client s3api.S3API, opts ...transfertypes.Option) (*Client, error) {
	return NewWithClients(s3Client, nil, opts...)
}

// NewWithClients creates a transfer client over existing object-store and
// presign clients.
func NewWithClients(
	s3Client s3api.S3API,
	presignClient s3api.PresignAPI,
	opts ...transfertypes.Option,
) (*Client, error) {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&clientCfg)
	}

	if clientCfg.Bucket == "" {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("bucket is required")
	}

	return newClient(s3Client, presignClient, clientCfg)
}

func newClient(
	s3Client s3api.S3API,
	presignClient s3api.PresignAPI,
	clientCfg transfertypes.ClientConfig,
) (*Client, error) {
	logger := clientCfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	stagingDir := clientCfg.StagingDir
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}

	area, err := staging.New(filesystem, stagingDir, logger)
	if err != nil {
		return nil, err
	}

	store := clientCfg.Store
	if store == nil {
		store = metastore.NewMemory()
	}

	return &Client{
		s3Client:      s3Client,
		presignClient: presignClient,
		cfg:           clientCfg,
		staging:       area,
		store:         store,
		logger:        logger,
	}, nil
}

// defaultClientConfig returns the baseline configuration before options.
func defaultClientConfig() transfertypes.ClientConfig {
	return transfertypes.ClientConfig{
		Concurrency:      transfertypes.DefaultConcurrency,
		MaxAttempts:      transfertypes.DefaultMaxAttempts,
		RetryBaseDelay:   transfertypes.DefaultRetryBaseDelay,
		AttemptTimeout:   transfertypes.DefaultAttemptTimeout,
		ProgressInterval: transfertypes.DefaultProgressInterval,
		DownloadRetries:  transfertypes.DefaultDownloadRetries,
		PresignExpiry:    transfertypes.DefaultPresignExpiry,
	}
}

// Bucket returns the destination bucket the client was configured with.
func (c *Client) Bucket() string {
	return c.cfg.Bucket
}

// Store returns the session metadata store.
func (c *Client) Store() transfertypes.SessionStore {
	return c.store
}

// newSink builds a multipart sink using the client's retry configuration.
func (c *Client) newSink() *sink.Sink {
	return sink.New(c.s3Client, sink.Config{
		Bucket:         c.cfg.Bucket,
		MaxAttempts:    c.cfg.MaxAttempts,
		RetryBaseDelay: c.cfg.RetryBaseDelay,
		AttemptTimeout: c.cfg.AttemptTimeout,
		Logger:         c.logger,
	})
}
