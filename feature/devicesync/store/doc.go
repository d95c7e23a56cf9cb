// Package store persists the reconciled device view.
//
// SyncStore owns the two sync tables: sync_documents, keyed by the
// deterministic sync key, and sync_metadata, a singleton row describing the
// last run. All mutation goes through ClearAll and BulkUpsert; during a run
// the engine is the sole writer.
//
// # Bulk upsert and throttling
//
// BulkUpsert writes documents in fixed-size batches using insert-or-replace
// by key, so rewriting an unchanged inventory is idempotent. When the
// destination rejects writes with a saturation error (lock wait timeout,
// deadlock, connection exhaustion), the store falls back to per-item writes
// to isolate the failures. Throttled items are retried with iterative
// exponential backoff up to a bounded attempt count, but only while the
// throttled subset stays a minority of the batch; once the majority of a
// batch throttles, the remainder is reported failed instead of compounding
// load on a saturated store. A failed batch never stops later batches.
//
// # Cost accounting
//
// Every operation reports a throughput-cost figure derived from the rows it
// touched, letting the engine attribute cost per phase the same way a
// request-unit billed document store would.
package store
