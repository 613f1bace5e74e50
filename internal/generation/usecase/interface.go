// Package usecase sequences script generation, asset submission, bounded polling and the
// reachability probe for one record.
package usecase

import (
	"context"
	"time"

	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// ScriptGenerator writes a voiceover script for a record.
type ScriptGenerator interface {
	Generate(ctx context.Context, record sourceDomain.ProductRecord, params mapping.Parameters) (string, error)
}

// AssetGenerator submits and polls long-running render jobs.
type AssetGenerator interface {
	Submit(ctx context.Context, request generationDomain.AssetRequest) (string, error)
	Poll(ctx context.Context, jobID string) (generationDomain.JobStatus, error)
}

// Prober checks that a finished asset URL is reachable.
type Prober interface {
	Probe(ctx context.Context, assetURL string) error
}

// GenerationUseCase defines the asset generation operations.
type GenerationUseCase interface {
	// Generate runs both stages and returns a ready, reachable asset or ErrGenerationTimeout /
	// ErrGenerationFailed.
	Generate(
		ctx context.Context,
		record sourceDomain.ProductRecord,
		params mapping.Parameters,
	) (*generationDomain.Result, error)
	// GenerateScript never fails for a record with a title or description; it degrades to
	// the record text when the script service is unavailable.
	GenerateScript(ctx context.Context, record sourceDomain.ProductRecord, params mapping.Parameters) (string, bool, error)
	GenerateAsset(ctx context.Context, request generationDomain.AssetRequest) (string, error)
	PollUntilReady(ctx context.Context, jobID string, timeout, interval time.Duration) (string, error)
}
