package models

import "time"

// BulkResult accumulates the outcome of a bulk upsert across all batches.
type BulkResult struct {
	// Success is the number of documents written.
	Success int `json:"success"`
	// Failure is the number of documents that could not be written.
	Failure int `json:"failure"`
	// Cost is the total throughput-cost charged for the writes.
	Cost Cost `json:"cost"`
	// Errors describes per-batch and per-item failures, bounded by the caller.
	Errors []string `json:"errors,omitempty"`
}

// Merge folds another BulkResult into this one.
func (r *BulkResult) Merge(other BulkResult) {
	r.Success += other.Success
	r.Failure += other.Failure
	r.Cost += other.Cost
	r.Errors = append(r.Errors, other.Errors...)
}

// Statistics summarizes what a run classified.
type Statistics struct {
	TotalProcessed int `json:"totalProcessed"`
	Matched        int `json:"matched"`
	OnlyProtection int `json:"onlyProtection"`
	OnlyMdm        int `json:"onlyMdm"`
	ErrorCount     int `json:"errorCount"`
}

// Percentages expresses the classification shares relative to the total
// classified device count.
type Percentages struct {
	Matched        float64 `json:"matched"`
	OnlyProtection float64 `json:"onlyProtection"`
	OnlyMdm        float64 `json:"onlyMdm"`
}

// PhaseTimings records per-phase wall-clock latency in milliseconds.
type PhaseTimings struct {
	FetchProtectionMs int64 `json:"fetchProtectionMs"`
	FetchMdmMs        int64 `json:"fetchMdmMs"`
	MatchingMs        int64 `json:"matchingMs"`
	ClearMs           int64 `json:"clearMs"`
	UpsertMs          int64 `json:"upsertMs"`
}

// Performance groups the run's latency figures.
type Performance struct {
	TotalExecutionTimeMs int64        `json:"totalExecutionTimeMs"`
	Phases               PhaseTimings `json:"phases"`
}

// CostBreakdown records per-phase throughput-cost.
type CostBreakdown struct {
	FetchProtection Cost `json:"fetchProtection"`
	FetchMdm        Cost `json:"fetchMdm"`
	Clear           Cost `json:"clear"`
	Upsert          Cost `json:"upsert"`
}

// ResourceUsage groups the run's cost figures.
type ResourceUsage struct {
	TotalCost Cost          `json:"totalCost"`
	Breakdown CostBreakdown `json:"breakdown"`
}

// RunResult is the structured outcome of one reconciliation run. It is the
// manual trigger's response payload and the archived report format.
type RunResult struct {
	RunID         string        `json:"runId"`
	Status        RunStatus     `json:"status"`
	StartedAt     time.Time     `json:"startedAt"`
	FinishedAt    time.Time     `json:"finishedAt"`
	Statistics    Statistics    `json:"statistics"`
	Percentages   Percentages   `json:"percentages"`
	Performance   Performance   `json:"performance"`
	ResourceUsage ResourceUsage `json:"resourceUsage"`
	Errors        []string      `json:"errors,omitempty"`
}
