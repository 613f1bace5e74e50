package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPProber checks that an asset URL is reachable without downloading it.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates an HTTPProber. A nil client uses http.DefaultClient.
func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProber{client: client}
}

// Probe issues a HEAD request and falls back to a one-byte ranged GET when HEAD is
// rejected or fails.
func (p *HTTPProber) Probe(ctx context.Context, assetURL string) error {
	headErr := p.do(ctx, http.MethodHead, assetURL)
	if headErr == nil {
		return nil
	}

	if getErr := p.do(ctx, http.MethodGet, assetURL); getErr != nil {
		return fmt.Errorf("asset unreachable: head: %v; ranged get: %w", headErr, getErr)
	}
	return nil
}

func (p *HTTPProber) do(ctx context.Context, method, assetURL string) error {
	req, err := http.NewRequestWithContext(ctx, method, assetURL, nil)
	if err != nil {
		return err
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	switch {
	case method == http.MethodGet && (resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent):
		return nil
	case method == http.MethodHead && resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return &StatusError{StatusCode: resp.StatusCode}
	}
}
