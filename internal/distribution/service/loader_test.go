package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
)

const platformsYAML = `
platforms:
  - name: tiktok
    kind: native_upload
    endpoint: https://open.tiktokapis.test/v2/post/{open_id}/video
    max_attempts: 2
    initial_backoff: 5s
    max_backoff: 1m
    rate_per_minute: 6
    credentials:
      access_token: env:TIKTOK_TOKEN
      open_id: env:TIKTOK_OPEN_ID
    hashtags: [garden, organic]
  - name: instagram
    kind: url_reference
    endpoint: https://graph.test/{ig_user_id}/media
    publish_endpoint: https://graph.test/{ig_user_id}/media_publish
    max_caption: 2200
  - name: pinterest
    kind: link
    endpoint: https://api.pinterest.test/v5/pins
    enabled: false
`

func TestParse(t *testing.T) {
	platforms, err := Parse([]byte(platformsYAML))
	require.NoError(t, err)
	require.Len(t, platforms, 2)

	tiktok := platforms[0]
	assert.Equal(t, "tiktok", tiktok.Name)
	assert.Equal(t, distributionDomain.KindNativeUpload, tiktok.Kind)
	assert.Equal(t, 2, tiktok.MaxAttempts)
	assert.Equal(t, 5*time.Second, tiktok.InitialBackoff)
	assert.Equal(t, time.Minute, tiktok.MaxBackoff)
	assert.Equal(t, 6, tiktok.RatePerMinute)
	assert.Equal(t, "env:TIKTOK_TOKEN", tiktok.Credentials["access_token"])
	assert.Equal(t, []string{"garden", "organic"}, tiktok.Hashtags)

	instagram := platforms[1]
	assert.Equal(t, distributionDomain.DefaultMaxAttempts, instagram.MaxAttempts)
	assert.Equal(t, distributionDomain.DefaultInitialBackoff, instagram.InitialBackoff)
	assert.Equal(t, distributionDomain.DefaultTimeout, instagram.Timeout)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "platforms:\n  - name: x\n    kind: link\n    endpoint: https://x.test\n    colour: red\n"},
		{name: "unknown kind", yaml: "platforms:\n  - name: x\n    kind: fax\n    endpoint: https://x.test\n"},
		{name: "relative endpoint", yaml: "platforms:\n  - name: x\n    kind: link\n    endpoint: /tweets\n"},
		{name: "missing publish endpoint", yaml: "platforms:\n  - name: ig\n    kind: url_reference\n    endpoint: https://g.test/media\n"},
		{name: "too many attempts", yaml: "platforms:\n  - name: x\n    kind: link\n    endpoint: https://x.test\n    max_attempts: 50\n"},
		{name: "duplicate name", yaml: "platforms:\n  - name: x\n    kind: link\n    endpoint: https://x.test\n  - name: x\n    kind: link\n    endpoint: https://y.test\n"},
		{name: "blank hashtag", yaml: "platforms:\n  - name: x\n    kind: link\n    endpoint: https://x.test\n    hashtags: [' ']\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, distributionDomain.ErrInvalidPlatformConfig)
		})
	}
}

func TestParse_NothingEnabled(t *testing.T) {
	_, err := Parse([]byte("platforms:\n  - name: x\n    kind: link\n    endpoint: https://x.test\n    enabled: false\n"))
	assert.ErrorIs(t, err, distributionDomain.ErrNoPlatforms)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platforms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(platformsYAML), 0o600))

	platforms, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, platforms, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, distributionDomain.ErrNoPlatforms)
}
