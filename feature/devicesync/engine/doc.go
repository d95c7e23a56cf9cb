// Package engine orchestrates a reconciliation run.
//
// A run moves through fetching both inventories concurrently, classifying
// them into sync documents, clearing the store, and persisting the new view.
// A source fetch failure aborts the run with zero writes; persistence
// failures degrade the run to partial. The singleton run metadata is written
// exactly once per run regardless of outcome, and the full report is
// archived when an Archiver is configured.
//
// Only one run executes at a time; a trigger during an active run gets
// ErrRunInProgress rather than queueing.
package engine
