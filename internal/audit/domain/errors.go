package domain

import (
	apperrors "github.com/allisson/reelcast/internal/errors"
)

// Audit errors.
var (
	// ErrInvalidLevel indicates an unknown audit level name.
	ErrInvalidLevel = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid audit level")

	// ErrSignatureInvalid indicates a stored event does not match its signature.
	ErrSignatureInvalid = apperrors.Wrap(apperrors.ErrConflict, "audit event signature invalid")

	// ErrSigningKeyMissing indicates signing or verification without AUDIT_SIGNING_KEY.
	ErrSigningKeyMissing = apperrors.Wrap(apperrors.ErrInvalidInput, "audit signing key not configured")
)
