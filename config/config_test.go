package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
region: eu-central-1
endpoint: https://s3.eu-central-1.wasabisys.com
bucket: media
access_key_id: AKID
secret_access_key: SECRET
force_path_style: true
part_size: 16777216
concurrency: 8
max_attempts: 5
retry_base_delay: 250ms
progress_interval: 2s
download_retries: 3
presign_expiry: 48h
staging_dir: /var/spool/objstream
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", cfg.Region)
	assert.Equal(t, "https://s3.eu-central-1.wasabisys.com", cfg.Endpoint)
	assert.Equal(t, "media", cfg.Bucket)
	assert.Equal(t, "AKID", cfg.AccessKeyID)
	assert.True(t, cfg.ForcePathStyle)
	assert.Equal(t, int64(16777216), cfg.PartSize)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 2*time.Second, cfg.ProgressInterval)
	assert.Equal(t, 3, cfg.DownloadRetries)
	assert.Equal(t, 48*time.Hour, cfg.PresignExpiry)
	assert.Equal(t, "/var/spool/objstream", cfg.StagingDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/no/such/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "bucket: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
bucket: from-file
concurrency: 4
`)

	t.Setenv("OBJSTREAM_BUCKET", "from-env")
	t.Setenv("OBJSTREAM_CONCURRENCY", "12")
	t.Setenv("OBJSTREAM_PROGRESS_INTERVAL", "3s")
	t.Setenv("OBJSTREAM_FORCE_PATH_STYLE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Bucket)
	assert.Equal(t, 12, cfg.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.ProgressInterval)
	assert.True(t, cfg.ForcePathStyle)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("OBJSTREAM_BUCKET", "media")
	t.Setenv("OBJSTREAM_REGION", "us-east-1")

	cfg := FromEnv()

	assert.Equal(t, "media", cfg.Bucket)
	assert.Equal(t, "us-east-1", cfg.Region)
}

func TestConfig_Options(t *testing.T) {
	cfg := &Config{
		Bucket:      "media",
		Region:      "us-east-1",
		Concurrency: 8,
	}

	opts := cfg.Options()
	assert.Len(t, opts, 3)

	// Zero-value fields contribute no options.
	empty := &Config{}
	assert.Empty(t, empty.Options())
}
