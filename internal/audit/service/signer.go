// Package service signs and verifies persisted audit events.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
)

// signingInfo is the HKDF info label, versioned so the canonical form can change.
const signingInfo = "reelcast-audit-event-signing-v1"

// EventSigner signs audit events and verifies stored signatures.
type EventSigner interface {
	Sign(event *auditDomain.Event) ([]byte, error)
	Verify(event *auditDomain.Event) error
}

type hmacSigner struct {
	key []byte
}

// NewEventSigner derives a 32-byte HMAC-SHA256 key from secret with HKDF-SHA256.
func NewEventSigner(secret []byte) (EventSigner, error) {
	if len(secret) == 0 {
		return nil, auditDomain.ErrSigningKeyMissing
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(signingInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	return &hmacSigner{key: key}, nil
}

// canonicalize encodes the signed fields as
// id || run_id || level || category || record_id || message || details || timestamp,
// with variable-length fields length-prefixed. Timestamps use millisecond precision,
// the coarsest precision among the supported databases.
func canonicalize(event *auditDomain.Event) ([]byte, error) {
	buf := make([]byte, 0, 512)
	buf = append(buf, event.ID[:]...)
	buf = append(buf, event.RunID[:]...)
	buf = appendLengthPrefixed(buf, []byte(event.Level))
	buf = appendLengthPrefixed(buf, []byte(event.Category))
	buf = appendLengthPrefixed(buf, []byte(event.RecordID))
	buf = appendLengthPrefixed(buf, []byte(event.Message))

	if len(event.Details) > 0 {
		details, err := json.Marshal(event.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
		buf = appendLengthPrefixed(buf, details)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(event.Timestamp.UnixMilli()))
	return buf, nil
}

func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign returns the HMAC-SHA256 signature of the event's canonical form.
func (s *hmacSigner) Sign(event *auditDomain.Event) ([]byte, error) {
	canonical, err := canonicalize(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify returns ErrSignatureInvalid when the event was altered after signing.
func (s *hmacSigner) Verify(event *auditDomain.Event) error {
	expected, err := s.Sign(event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}
	if !hmac.Equal(event.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}
