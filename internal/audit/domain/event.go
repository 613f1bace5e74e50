// Package domain defines audit events and the end-of-cycle summary built from them.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level is the severity or outcome of an audit event.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarn    Level = "WARN"
	LevelError   Level = "ERROR"
	LevelSkip    Level = "SKIP"
)

// Levels lists every level in display order.
var Levels = []Level{LevelInfo, LevelSuccess, LevelWarn, LevelError, LevelSkip}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(value string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(value)))
	for _, known := range Levels {
		if level == known {
			return level, nil
		}
	}
	return "", ErrInvalidLevel
}

// Event categories used by the pipeline.
const (
	CategoryCycle        = "cycle"
	CategorySource       = "source"
	CategoryLock         = "lock"
	CategoryLedger       = "ledger"
	CategoryMapping      = "mapping"
	CategoryGeneration   = "generation"
	CategoryDistribution = "distribution"
	CategoryWriteback    = "writeback"
	CategoryRecord       = "record"
)

// Event is one entry of the audit stream. Events are append-only.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	RunID     uuid.UUID      `json:"run_id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Category  string         `json:"category"`
	RecordID  string         `json:"record_id,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Signature []byte         `json:"-"`
}

// IsSigned reports whether the event carries a signature.
func (e *Event) IsSigned() bool {
	return len(e.Signature) > 0
}
