// Package domain defines asset-generation jobs, their normalized status vocabulary and
// the generation errors callers branch on.
package domain

import "strings"

// Status is the normalized state of an asset-generation job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRendering Status = "rendering"
	StatusReady     Status = "ready"
	StatusFailed    Status = "failed"
)

var upstreamStatuses = map[string]Status{
	"pending":     StatusPending,
	"queued":      StatusPending,
	"waiting":     StatusPending,
	"submitted":   StatusPending,
	"created":     StatusPending,
	"rendering":   StatusRendering,
	"processing":  StatusRendering,
	"in_progress": StatusRendering,
	"running":     StatusRendering,
	"generating":  StatusRendering,
	"ready":       StatusReady,
	"completed":   StatusReady,
	"complete":    StatusReady,
	"done":        StatusReady,
	"succeeded":   StatusReady,
	"success":     StatusReady,
	"finished":    StatusReady,
	"failed":      StatusFailed,
	"failure":     StatusFailed,
	"error":       StatusFailed,
	"errored":     StatusFailed,
	"cancelled":   StatusFailed,
	"canceled":    StatusFailed,
	"rejected":    StatusFailed,
}

// NormalizeStatus maps an upstream status string onto the normalized vocabulary.
// Unknown values are reported with ok=false and treated as still pending.
func NormalizeStatus(raw string) (status Status, ok bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if status, ok := upstreamStatuses[key]; ok {
		return status, true
	}
	return StatusPending, false
}

// Terminal reports whether no further polling can change the status.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}
