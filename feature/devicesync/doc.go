// Package devicesync reconciles the endpoint-protection and MDM device
// inventories into a unified, persisted view.
//
// The feature owns the HTTP trigger and status endpoints, the interval
// scheduler, and the wiring of sources, matcher, store, and engine. The
// heavy lifting lives in the subpackages: source (inventory clients),
// matcher (identity classification), store (persistence), engine (run
// orchestration), and report (archived run reports).
package devicesync
