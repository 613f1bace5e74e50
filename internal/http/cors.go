package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// newCORSMiddleware lets browser dashboards read the status routes. It returns nil when
// CORS is disabled or no origin is configured. A "*" entry allows any origin.
func newCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := splitOrigins(allowOrigins)
	if len(origins) == 0 {
		logger.Warn("cors enabled without origins, not applied")
		return nil
	}

	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodHead},
		AllowHeaders:  []string{"Accept", "Content-Type"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        corsMaxAge,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	logger.Info("cors enabled", slog.Any("origins", origins))
	return cors.New(cfg)
}

// splitOrigins splits a comma-separated origin list, dropping blanks and trailing slashes.
func splitOrigins(value string) []string {
	var origins []string
	for part := range strings.SplitSeq(value, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
