package models

import "time"

// SyncState classifies a reconciled device.
type SyncState string

const (
	// StateMatched means the device appears in both inventories.
	StateMatched SyncState = "matched"
	// StateOnlyProtection means the device appears only in the protection inventory.
	StateOnlyProtection SyncState = "only_protection"
	// StateOnlyMdm means the device appears only in the MDM inventory.
	StateOnlyMdm SyncState = "only_mdm"
)

// MatchKey identifies which identity field produced a match.
type MatchKey string

const (
	// MatchedOnDirectoryID means the directory device ID matched exactly.
	MatchedOnDirectoryID MatchKey = "directory_id"
	// MatchedOnSerial means the serial number matched exactly.
	MatchedOnSerial MatchKey = "serial"
	// MatchedOnHostname means the normalized hostname/device name matched.
	MatchedOnHostname MatchKey = "hostname"
	// MatchedOnNone means the device was not matched.
	MatchedOnNone MatchKey = "none"
)

// SyncDocument is the persisted, unified view of one reconciled device.
// Documents are created fresh every run and written via clear-then-bulk-upsert.
type SyncDocument struct {
	// SyncKey is the deterministic identifier for the reconciled record,
	// derived from the matched identity or the lone source record.
	SyncKey string `gorm:"column:sync_key;primaryKey;size:191" json:"syncKey"`

	// SyncState classifies the document.
	SyncState SyncState `gorm:"column:sync_state;size:32;index" json:"syncState"`

	// MatchedOn records which identity field produced the match, or none.
	MatchedOn MatchKey `gorm:"column:matched_on;size:32" json:"matchedOn"`

	// Protection embeds the protection record. Present for matched and
	// only_protection documents.
	Protection *ProtectionDevice `gorm:"column:protection;serializer:json" json:"protection,omitempty"`

	// Managed embeds the MDM record. Present for matched and only_mdm documents.
	Managed *ManagedDevice `gorm:"column:managed;serializer:json" json:"managed,omitempty"`

	// ReconciledAt is the run timestamp that produced this document.
	ReconciledAt time.Time `gorm:"column:reconciled_at" json:"reconciledAt"`
}

// TableName sets the SyncDocument table name.
func (SyncDocument) TableName() string {
	return "sync_documents"
}

// MetadataID is the fixed well-known key of the SyncMetadata singleton row.
const MetadataID = "sync-metadata"

// MaxLastErrors bounds the error list persisted on SyncMetadata.
const MaxLastErrors = 20

// RunStatus is the outcome of a reconciliation run.
type RunStatus string

const (
	// StatusSuccess means the run completed with zero failures.
	StatusSuccess RunStatus = "success"
	// StatusPartial means persistence had failures but the run completed.
	StatusPartial RunStatus = "partial"
	// StatusFailed means the run aborted before or during persistence setup.
	StatusFailed RunStatus = "failed"
)

// RunSnapshot is a compact summary of a finished run, kept on the metadata
// row so consecutive runs can be compared.
type RunSnapshot struct {
	RunID          string    `json:"runId"`
	Status         RunStatus `json:"status"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	Processed      int       `json:"processed"`
	Failed         int       `json:"failed"`
	Matched        int       `json:"matched"`
	OnlyProtection int       `json:"onlyProtection"`
	OnlyMdm        int       `json:"onlyMdm"`
	TotalCost      Cost      `json:"totalCost"`
}

// SyncMetadata is the singleton record describing the most recent run.
// It is written exactly once per run, at the end, even on failure.
type SyncMetadata struct {
	// ID is always MetadataID.
	ID string `gorm:"column:id;primaryKey;size:64" json:"id"`

	// RunID identifies the run that last wrote this record.
	RunID string `gorm:"column:run_id;size:64" json:"runId"`

	// StartedAt and FinishedAt bound the last run.
	StartedAt  time.Time `gorm:"column:started_at" json:"startedAt"`
	FinishedAt time.Time `gorm:"column:finished_at" json:"finishedAt"`

	// Status is the last run's outcome.
	Status RunStatus `gorm:"column:status;size:16" json:"status"`

	// Processed and Failed count documents written and documents that
	// could not be written.
	Processed int `gorm:"column:processed" json:"processed"`
	Failed    int `gorm:"column:failed" json:"failed"`

	// Per-state counts of the produced documents.
	Matched        int `gorm:"column:matched" json:"matched"`
	OnlyProtection int `gorm:"column:only_protection" json:"onlyProtection"`
	OnlyMdm        int `gorm:"column:only_mdm" json:"onlyMdm"`

	// TotalCost is the cumulative throughput-cost of the last run.
	TotalCost Cost `gorm:"column:total_cost" json:"totalCost"`

	// LastErrors holds up to MaxLastErrors error strings from the last run.
	LastErrors []string `gorm:"column:last_errors;serializer:json" json:"lastErrors,omitempty"`

	// PreviousRun is the snapshot of the run before this one.
	PreviousRun *RunSnapshot `gorm:"column:previous_run;serializer:json" json:"previousRun,omitempty"`
}

// TableName sets the SyncMetadata table name.
func (SyncMetadata) TableName() string {
	return "sync_metadata"
}

// Snapshot converts the metadata record into a RunSnapshot for trend keeping.
func (m *SyncMetadata) Snapshot() *RunSnapshot {
	if m == nil || m.RunID == "" {
		return nil
	}
	return &RunSnapshot{
		RunID:          m.RunID,
		Status:         m.Status,
		StartedAt:      m.StartedAt,
		FinishedAt:     m.FinishedAt,
		Processed:      m.Processed,
		Failed:         m.Failed,
		Matched:        m.Matched,
		OnlyProtection: m.OnlyProtection,
		OnlyMdm:        m.OnlyMdm,
		TotalCost:      m.TotalCost,
	}
}
