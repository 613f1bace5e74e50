package domain

import (
	"github.com/allisson/reelcast/internal/errors"
)

// Generation errors. Both skip the record without a ledger entry; the next cycle retries.
var (
	// ErrGenerationTimeout indicates polling exceeded the configured timeout.
	ErrGenerationTimeout = errors.Wrap(errors.ErrTimeout, "asset generation timed out")

	// ErrGenerationFailed indicates a terminal upstream failure, a rejected submission,
	// or a ready asset whose URL is unreachable.
	ErrGenerationFailed = errors.Wrap(errors.ErrFailed, "asset generation failed")

	// ErrScriptUnavailable indicates the script service is not configured or failed.
	// The orchestrator never returns it; it triggers the degraded fallback.
	ErrScriptUnavailable = errors.Wrap(errors.ErrUnavailable, "script generation unavailable")
)
