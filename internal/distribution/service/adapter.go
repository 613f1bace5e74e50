// Package service provides the platform adapters that publish an asset, one per payload
// shape, and the loader for the platforms file.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
)

// Credential keys understood by every adapter. Other keys are only used for endpoint
// interpolation.
const (
	CredentialAccessToken = "access_token"
)

// maxErrorBody caps how much of an error response is copied into error messages.
const maxErrorBody = 512

// StatusError reports a non-2xx platform response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type postResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

func (p postResponse) id() string {
	if p.ID != "" {
		return p.ID
	}
	return p.PostID
}

// base holds what every adapter shares: identity, transport and the rate limiter.
type base struct {
	config  distributionDomain.PlatformConfig
	client  *http.Client
	limiter *rate.Limiter
}

func newBase(config distributionDomain.PlatformConfig, client *http.Client) base {
	if client == nil {
		client = http.DefaultClient
	}
	limit := rate.Inf
	if config.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(config.RatePerMinute))
	}
	return base{config: config, client: client, limiter: rate.NewLimiter(limit, 1)}
}

// Name returns the configured platform name.
func (b *base) Name() string {
	return b.config.Name
}

// wait blocks until the platform's rate limit admits one more request.
func (b *base) wait(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return distributionDomain.Retryable(fmt.Errorf("rate limit wait: %w", err))
	}
	return nil
}

// send executes req and decodes the post id from a 2xx JSON response. Errors are
// classified as retryable or terminal.
func (b *base) send(req *http.Request, creds map[string]string) (string, error) {
	req.Header.Set("Accept", "application/json")
	if token := creds[CredentialAccessToken]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classify(readStatusError(resp))
	}

	var out postResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", distributionDomain.Terminal(fmt.Errorf("failed to decode response: %w", err))
	}
	if out.id() == "" {
		return "", distributionDomain.Terminal(errors.New("response carries no post id"))
	}
	return out.id(), nil
}

func (b *base) postJSON(ctx context.Context, endpoint string, payload any, creds map[string]string) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", distributionDomain.Terminal(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, expand(endpoint, creds), bytes.NewReader(data))
	if err != nil {
		return "", distributionDomain.Terminal(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	return b.send(req, creds)
}

func readStatusError(resp *http.Response) *StatusError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
}

// classify marks throttling, server errors, timeouts and transport failures as retryable.
func classify(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if distributionDomain.RetryableStatus(statusErr.StatusCode) {
			return distributionDomain.Retryable(err)
		}
		return distributionDomain.Terminal(err)
	}

	switch {
	case errors.Is(err, context.Canceled):
		return distributionDomain.Terminal(err)
	case errors.Is(err, context.DeadlineExceeded):
		return distributionDomain.Retryable(err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return distributionDomain.Retryable(err)
	}
	return distributionDomain.Terminal(err)
}

// expand replaces {key} placeholders in endpoint with path-escaped credential values.
func expand(endpoint string, creds map[string]string) string {
	if !strings.Contains(endpoint, "{") {
		return endpoint
	}
	pairs := make([]string, 0, len(creds)*2)
	for key, value := range creds {
		pairs = append(pairs, "{"+key+"}", url.PathEscape(value))
	}
	return strings.NewReplacer(pairs...).Replace(endpoint)
}
