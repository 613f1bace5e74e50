package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape returns the exposition text served by the provider.
func scrape(t *testing.T, provider *Provider) string {
	t.Helper()

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("reelcast_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	assert.Equal(t, "reelcast_test", provider.Namespace())
	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.Meter())
	assert.NotContains(t, scrape(t, provider), "go_goroutines")
}

func TestNewProvider_RuntimeCollectors(t *testing.T) {
	provider, err := NewProvider("reelcast_test", WithRuntimeCollectors())
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	assert.Contains(t, scrape(t, provider), "go_goroutines")
}

func TestNewProvider_DuplicateCollectorFails(t *testing.T) {
	_, err := NewProvider("reelcast_test", WithRuntimeCollectors(), WithRuntimeCollectors())
	assert.Error(t, err)
}

func TestProvider_ExportsInstruments(t *testing.T) {
	provider, err := NewProvider("reelcast_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	counter, err := provider.Meter().Int64Counter("reelcast_test_records_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	assert.Contains(t, scrape(t, provider), "reelcast_test_records_total")
}

func TestProvider_Shutdown(t *testing.T) {
	provider, err := NewProvider("reelcast_test")
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))

	empty := &Provider{}
	assert.NoError(t, empty.Shutdown(context.Background()))
}
