package domain

// ColumnRef addresses a writeback column by name or by fixed 1-based position.
type ColumnRef struct {
	Name     string `json:"name,omitempty"`
	Position int    `json:"position,omitempty"`
}

// WritebackColumns names the target columns for each enrichment value.
type WritebackColumns struct {
	AssetURL ColumnRef
	Mapping  ColumnRef
	Results  ColumnRef
	Posted   ColumnRef
}

// WritebackPayload carries the values persisted back to the source for one record.
type WritebackPayload struct {
	AssetURL string
	// Mapping is a short human-readable description of the chosen parameters.
	Mapping string
	// Results maps platform name to external id or error text.
	Results map[string]string
	// Posted reports whether the record counts as distributed.
	Posted bool
}

// CellUpdate is one cell write sent to the writeback endpoint.
type CellUpdate struct {
	RecordID string    `json:"record_id"`
	Row      int       `json:"row"`
	Column   ColumnRef `json:"column"`
	Value    string    `json:"value"`
}
