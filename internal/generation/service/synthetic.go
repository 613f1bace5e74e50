package service

import (
	"context"
	"fmt"
	"strings"

	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// SyntheticAssetHost is the reserved host used for dry-run asset URLs.
const SyntheticAssetHost = "dry-run.invalid"

// SyntheticScript returns the record's own text without any network call.
type SyntheticScript struct{}

// Generate always reports the service as unavailable so the orchestrator uses its fallback.
func (SyntheticScript) Generate(context.Context, sourceDomain.ProductRecord, mapping.Parameters) (string, error) {
	return "", generationDomain.ErrScriptUnavailable
}

// SyntheticAssets renders instantly and never touches the network.
type SyntheticAssets struct{}

// Submit derives a deterministic job id from the record id.
func (SyntheticAssets) Submit(_ context.Context, request generationDomain.AssetRequest) (string, error) {
	return "dry-run-" + sanitize(request.RecordID), nil
}

// Poll reports every job ready with a synthetic URL.
func (SyntheticAssets) Poll(_ context.Context, jobID string) (generationDomain.JobStatus, error) {
	return generationDomain.JobStatus{
		JobID:    jobID,
		Status:   generationDomain.StatusReady,
		Raw:      string(generationDomain.StatusReady),
		AssetURL: fmt.Sprintf("https://%s/assets/%s.mp4", SyntheticAssetHost, jobID),
	}, nil
}

// SyntheticProber accepts every URL.
type SyntheticProber struct{}

// Probe always succeeds.
func (SyntheticProber) Probe(context.Context, string) error { return nil }

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, id)
}
