package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instrumentedRouter(t *testing.T) (*gin.Engine, *Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("reelcast_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "reelcast_test"))
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"running": false})
	})
	router.GET("/ledger/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})
	return router, provider
}

func serve(router http.Handler, path string) int {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestHTTPMetricsMiddleware_RecordsRequests(t *testing.T) {
	router, provider := instrumentedRouter(t)

	for range 3 {
		assert.Equal(t, http.StatusOK, serve(router, "/status"))
	}

	body := scrape(t, provider)
	assert.Contains(t, body, "reelcast_test_http_requests_total")
	assert.Contains(t, body, "reelcast_test_http_request_duration_seconds")
	assert.Contains(t, body, "reelcast_test_http_requests_in_flight")
	assert.Contains(t, body, `route="/status"`)
	assert.Contains(t, body, `status_code="200"`)
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	router, provider := instrumentedRouter(t)

	assert.Equal(t, http.StatusNotFound, serve(router, "/ledger/SKU-1"))
	assert.Equal(t, http.StatusNotFound, serve(router, "/ledger/SKU-2"))
	assert.Equal(t, http.StatusNotFound, serve(router, "/nowhere"))

	body := scrape(t, provider)
	assert.Contains(t, body, `route="/ledger/:id"`)
	assert.NotContains(t, body, "SKU-1")
	assert.Contains(t, body, `route="unmatched"`)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/ledger/:id", routeLabel("/ledger/:id"))
	assert.Equal(t, "/", routeLabel("/"))
	assert.Equal(t, unmatchedRoute, routeLabel(""))
}
