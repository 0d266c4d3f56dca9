package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/objstream/transfer/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{name: "valid simple", bucket: "my-bucket", wantErr: false},
		{name: "valid with dots", bucket: "my.bucket.name", wantErr: false},
		{name: "valid with numbers", bucket: "bucket123", wantErr: false},
		{name: "empty", bucket: "", wantErr: true},
		{name: "too short", bucket: "ab", wantErr: true},
		{name: "too long", bucket: strings.Repeat("a", 64), wantErr: true},
		{name: "uppercase", bucket: "MyBucket", wantErr: true},
		{name: "underscore", bucket: "my_bucket", wantErr: true},
		{name: "leading hyphen", bucket: "-bucket", wantErr: true},
		{name: "trailing dot", bucket: "bucket.", wantErr: true},
		{name: "adjacent dots", bucket: "my..bucket", wantErr: true},
		{name: "adjacent hyphens", bucket: "my--bucket", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				assert.True(t, errors.IsInvalidInput(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid simple", key: "movie.mkv", wantErr: false},
		{name: "valid nested", key: "videos/2024/movie.mkv", wantErr: false},
		{name: "valid with spaces", key: "my movie.mkv", wantErr: false},
		{name: "empty", key: "", wantErr: true},
		{name: "traversal", key: "../etc/passwd", wantErr: true},
		{name: "embedded traversal", key: "videos/../../etc/passwd", wantErr: true},
		{name: "absolute", key: "/etc/passwd", wantErr: true},
		{name: "too long", key: strings.Repeat("a", 1025), wantErr: true},
		{name: "control character", key: "movie\x00.mkv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePipeline(t *testing.T) {
	const mb = 1024 * 1024

	tests := []struct {
		name        string
		totalSize   int64
		partSize    int64
		concurrency int
		maxAttempts int
		wantErr     bool
	}{
		{
			name:        "valid",
			totalSize:   100 * mb,
			partSize:    8 * mb,
			concurrency: 5,
			maxAttempts: 3,
			wantErr:     false,
		},
		{
			name:        "empty file",
			totalSize:   0,
			partSize:    8 * mb,
			concurrency: 5,
			maxAttempts: 3,
			wantErr:     false,
		},
		{
			name:        "negative size",
			totalSize:   -1,
			partSize:    8 * mb,
			concurrency: 5,
			maxAttempts: 3,
			wantErr:     true,
		},
		{
			name:        "part too small",
			totalSize:   100 * mb,
			partSize:    mb,
			concurrency: 5,
			maxAttempts: 3,
			wantErr:     true,
		},
		{
			name:        "too many parts",
			totalSize:   100 * 1024 * mb,
			partSize:    5 * mb,
			concurrency: 5,
			maxAttempts: 3,
			wantErr:     true,
		},
		{
			name:        "zero concurrency",
			totalSize:   100 * mb,
			partSize:    8 * mb,
			concurrency: 0,
			maxAttempts: 3,
			wantErr:     true,
		},
		{
			name:        "zero attempts",
			totalSize:   100 * mb,
			partSize:    8 * mb,
			concurrency: 5,
			maxAttempts: 0,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePipeline(tt.totalSize, tt.partSize, tt.concurrency, tt.maxAttempts)
			if tt.wantErr {
				assert.True(t, errors.IsInvalidInput(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
