// Package matcher classifies devices across the two inventories.
//
// The protection and MDM platforms share no common primary key, so matching
// is a multi-key heuristic join over hash indexes:
//
//  1. Both inventories are indexed by directory device ID, serial number,
//     and normalized (case-folded, trimmed) hostname/device name.
//  2. Each protection record attempts a match in priority order:
//     directory ID, then serial, then hostname. The first key whose buckets
//     hold exactly one record on each side wins.
//  3. Ambiguity rule: if either side's bucket for a key value holds more
//     than one record, that key value is skipped entirely. Recall is
//     traded for precision, because a security inventory must never pair
//     the wrong two machines.
//
// Records left unmatched on either side become single-source documents.
// The classification runs in O(N+M) and is deterministic for fixed inputs.
package matcher
