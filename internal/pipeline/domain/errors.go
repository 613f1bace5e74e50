package domain

import (
	apperrors "github.com/allisson/reelcast/internal/errors"
)

// Pipeline errors.
var (
	// ErrCycleInProgress indicates a cycle was started while another runs in this process.
	ErrCycleInProgress = apperrors.Wrap(apperrors.ErrConflict, "cycle already in progress")
)
