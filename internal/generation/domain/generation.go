package domain

import (
	"github.com/allisson/reelcast/internal/mapping"
)

// AssetRequest is what the asset-generation service renders.
type AssetRequest struct {
	RecordID   string
	Title      string
	ScriptText string
	Parameters mapping.Parameters
}

// JobStatus is one poll observation, already normalized.
type JobStatus struct {
	JobID    string
	Status   Status
	AssetURL string
	// Raw is the upstream status string as received.
	Raw   string
	Error string
}

// Result is the outcome of generation for one record in one cycle. It is discarded
// after writeback.
type Result struct {
	RecordID   string
	ScriptText string
	// ScriptDegraded is true when the script fell back to the record's own text.
	ScriptDegraded bool
	Parameters     mapping.Parameters
	JobID          string
	AssetURL       string
	Status         Status
}
