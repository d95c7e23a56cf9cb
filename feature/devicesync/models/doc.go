// Package models defines the data model for device inventory reconciliation.
//
// Three groups of types live here:
//
//  1. Upstream snapshots: ProtectionDevice and ManagedDevice, the immutable
//     per-fetch records from the endpoint-protection and MDM platforms.
//     Identity fields that upstream may omit (directory device ID, serial
//     number) are pointers so absence is explicit.
//
//  2. Persisted documents: SyncDocument, the unified per-device record keyed
//     by a deterministic sync key, and SyncMetadata, the singleton row
//     describing the last run.
//
//  3. Run payloads: RunResult and its sub-structures, returned by the manual
//     trigger endpoint and archived per run.
package models
