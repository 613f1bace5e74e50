// Package domain defines the tabular source records and the filtering diagnostics
// produced while turning source rows into pipeline candidates.
package domain

import "strings"

// ProductRecord is one normalized source row. It is immutable once read.
type ProductRecord struct {
	// RecordID is the stable identifier, unique within one source snapshot.
	RecordID string
	// RowNumber is the 1-based sheet row (header is row 1) used for writeback.
	RowNumber int
	Title     string
	// Description is the long-form product text.
	Description string
	// RawAttributes holds every cell keyed by its normalized column name.
	RawAttributes map[string]string
	// Ready is nil when the source carries no explicit readiness value for the row.
	Ready *bool
	// AlreadyDistributed reports the source-side "posted" flag.
	AlreadyDistributed bool
}

// Attribute returns the raw cell stored under the first present alias.
func (r ProductRecord) Attribute(aliases ...string) string {
	for _, alias := range aliases {
		if value, ok := r.RawAttributes[NormalizeColumn(alias)]; ok && value != "" {
			return value
		}
	}
	return ""
}

// NormalizeColumn lowercases a column name and collapses separators so
// "Product Title", "product_title" and " product-title " compare equal.
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer("_", " ", "-", " ", "\t", " ")
	return strings.Join(strings.Fields(replacer.Replace(name)), " ")
}

// FieldAliases lists, per logical field, the candidate column names in priority order.
type FieldAliases struct {
	ID          []string
	Title       []string
	Description []string
	Ready       []string
	Posted      []string
}

// DropReason explains why a row did not become a candidate.
type DropReason string

const (
	DropReasonNoID          DropReason = "noId"
	DropReasonAlreadyPosted DropReason = "alreadyPosted"
	DropReasonNotReady      DropReason = "notReady"
	DropReasonDuplicate     DropReason = "duplicateId"
)

// MaxDiagnosticSamples caps the number of dropped rows carried in a Diagnostic.
const MaxDiagnosticSamples = 3

// DroppedRow is a sample of a filtered row.
type DroppedRow struct {
	RowNumber int               `json:"row_number"`
	Reason    DropReason        `json:"reason"`
	Cells     map[string]string `json:"cells"`
}

// Diagnostic summarizes how a fetch was filtered.
type Diagnostic struct {
	TotalRows int                `json:"total_rows"`
	Kept      int                `json:"kept"`
	Dropped   map[DropReason]int `json:"dropped"`
	Samples   []DroppedRow       `json:"samples,omitempty"`
}

// NewDiagnostic creates an empty diagnostic.
func NewDiagnostic() *Diagnostic {
	return &Diagnostic{Dropped: make(map[DropReason]int)}
}

// Drop records a filtered row, keeping at most MaxDiagnosticSamples samples.
func (d *Diagnostic) Drop(row DroppedRow) {
	d.Dropped[row.Reason]++
	if len(d.Samples) < MaxDiagnosticSamples {
		d.Samples = append(d.Samples, row)
	}
}

// Empty reports whether the fetch produced no candidates.
func (d *Diagnostic) Empty() bool {
	return d.Kept == 0
}
