package transfer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objstream/transfer/internal/testutil"
	"github.com/objstream/transfer/transfertypes"
)

func newPresignClient(t *testing.T, presign *testutil.MockPresignClient) *Client {
	t.Helper()

	client, err := NewWithClients(&testutil.MockS3Client{}, presign,
		WithBucket("test-bucket"),
		WithFilesystem(billy.NewInMemoryFS()),
		WithStagingDir("/staging"),
		WithLogger(log.New(io.Discard)),
	)
	require.NoError(t, err)
	return client
}

func TestClient_PresignedURL(t *testing.T) {
	presign := &testutil.MockPresignClient{
		PresignGetObjectFunc: func(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
			assert.Equal(t, "test-bucket", aws.ToString(params.Bucket))
			assert.Equal(t, "videos/movie.mkv", aws.ToString(params.Key))
			return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/x"}, nil
		},
	}
	client := newPresignClient(t, presign)

	url, err := client.PresignedURL(context.Background(), "videos/movie.mkv", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/x", url)
}

func TestClient_PresignedURL_Unavailable(t *testing.T) {
	client, err := NewWithClient(&testutil.MockS3Client{},
		WithBucket("test-bucket"),
		WithFilesystem(billy.NewInMemoryFS()),
		WithStagingDir("/staging"),
		WithLogger(log.New(io.Discard)),
	)
	require.NoError(t, err)

	_, err = client.PresignedURL(context.Background(), "videos/movie.mkv", time.Hour)
	assert.Error(t, err)
}

func TestClient_PresignedURL_InvalidKey(t *testing.T) {
	client := newPresignClient(t, &testutil.MockPresignClient{})

	_, err := client.PresignedURL(context.Background(), "../secret", time.Hour)
	assert.Error(t, err)
}

func TestClampExpiry(t *testing.T) {
	tests := []struct {
		name     string
		expiry   time.Duration
		fallback time.Duration
		want     time.Duration
	}{
		{
			name:     "within bounds",
			expiry:   12 * time.Hour,
			fallback: 24 * time.Hour,
			want:     12 * time.Hour,
		},
		{
			name:     "zero uses fallback",
			expiry:   0,
			fallback: 48 * time.Hour,
			want:     48 * time.Hour,
		},
		{
			name:     "zero with zero fallback uses default",
			expiry:   0,
			fallback: 0,
			want:     transfertypes.DefaultPresignExpiry,
		},
		{
			name:     "below minimum clamps up",
			expiry:   10 * time.Minute,
			fallback: 0,
			want:     transfertypes.MinPresignExpiry,
		},
		{
			name:     "above maximum clamps down",
			expiry:   30 * 24 * time.Hour,
			fallback: 0,
			want:     transfertypes.MaxPresignExpiry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampExpiry(tt.expiry, tt.fallback))
		})
	}
}
