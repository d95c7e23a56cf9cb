package matcher

import (
	"sort"
	"strings"
	"time"

	"device-sync/feature/devicesync/models"
)

// Outcome is the result of classifying both inventories.
type Outcome struct {
	// Documents holds one SyncDocument per device, sorted by sync key.
	Documents []models.SyncDocument

	// Matched, OnlyProtection and OnlyMdm count documents per state.
	Matched        int
	OnlyProtection int
	OnlyMdm        int
}

// matchKeys is the fixed priority order for identity matching.
var matchKeys = []models.MatchKey{
	models.MatchedOnDirectoryID,
	models.MatchedOnSerial,
	models.MatchedOnHostname,
}

// index maps a key value to the positions of the records carrying it.
type index map[string][]int

// indexes holds one index per match key for one inventory side.
type indexes map[models.MatchKey]index

// Classify joins the two inventories and produces one document per device.
// reconciledAt stamps every produced document with the run timestamp.
func Classify(protection []models.ProtectionDevice, managed []models.ManagedDevice, reconciledAt time.Time) Outcome {
	protIdx := buildIndexes(len(protection), func(i int) keySet {
		return protectionKeys(&protection[i])
	})
	mdmIdx := buildIndexes(len(managed), func(i int) keySet {
		return managedKeys(&managed[i])
	})

	taken := make([]bool, len(managed))
	documents := make([]models.SyncDocument, 0, len(protection)+len(managed))

	var outcome Outcome

	for i := range protection {
		p := &protection[i]
		keys := protectionKeys(p)

		matchedOn := models.MatchedOnNone
		matchedIdx := -1

		for _, key := range matchKeys {
			value := keys[key]
			if value == "" {
				continue
			}

			// A key value is usable only when exactly one record on each
			// side carries it; anything else is ambiguous and skipped.
			if len(protIdx[key][value]) != 1 || len(mdmIdx[key][value]) != 1 {
				continue
			}

			candidate := mdmIdx[key][value][0]
			if taken[candidate] {
				// Already consumed through a different key; do not guess.
				continue
			}

			matchedOn = key
			matchedIdx = candidate
			break
		}

		if matchedIdx >= 0 {
			taken[matchedIdx] = true
			m := managed[matchedIdx]
			documents = append(documents, models.SyncDocument{
				SyncKey:      matchedSyncKey(p, matchedOn),
				SyncState:    models.StateMatched,
				MatchedOn:    matchedOn,
				Protection:   p,
				Managed:      &m,
				ReconciledAt: reconciledAt,
			})
			outcome.Matched++
			continue
		}

		documents = append(documents, models.SyncDocument{
			SyncKey:      "p:" + p.ID,
			SyncState:    models.StateOnlyProtection,
			MatchedOn:    models.MatchedOnNone,
			Protection:   p,
			ReconciledAt: reconciledAt,
		})
		outcome.OnlyProtection++
	}

	for i := range managed {
		if taken[i] {
			continue
		}
		m := managed[i]
		documents = append(documents, models.SyncDocument{
			SyncKey:      "m:" + m.ID,
			SyncState:    models.StateOnlyMdm,
			MatchedOn:    models.MatchedOnNone,
			Managed:      &m,
			ReconciledAt: reconciledAt,
		})
		outcome.OnlyMdm++
	}

	// Sort documents by key for deterministic output
	sort.Slice(documents, func(i, j int) bool {
		return documents[i].SyncKey < documents[j].SyncKey
	})

	outcome.Documents = documents
	return outcome
}

// keySet holds the usable identity values of one record.
type keySet map[models.MatchKey]string

func protectionKeys(p *models.ProtectionDevice) keySet {
	keys := keySet{}
	if p.DirectoryDeviceID != nil {
		keys[models.MatchedOnDirectoryID] = strings.TrimSpace(*p.DirectoryDeviceID)
	}
	if p.SerialNumber != nil {
		keys[models.MatchedOnSerial] = strings.TrimSpace(*p.SerialNumber)
	}
	keys[models.MatchedOnHostname] = NormalizeName(p.Hostname)
	return keys
}

func managedKeys(m *models.ManagedDevice) keySet {
	keys := keySet{}
	if m.DirectoryDeviceID != nil {
		keys[models.MatchedOnDirectoryID] = strings.TrimSpace(*m.DirectoryDeviceID)
	}
	if m.SerialNumber != nil {
		keys[models.MatchedOnSerial] = strings.TrimSpace(*m.SerialNumber)
	}
	keys[models.MatchedOnHostname] = NormalizeName(m.DeviceName)
	return keys
}

// buildIndexes builds the per-key hash indexes for one inventory side.
func buildIndexes(n int, keysOf func(int) keySet) indexes {
	idx := indexes{}
	for _, key := range matchKeys {
		idx[key] = index{}
	}

	for i := 0; i < n; i++ {
		for key, value := range keysOf(i) {
			if value == "" {
				continue
			}
			idx[key][value] = append(idx[key][value], i)
		}
	}

	return idx
}

// matchedSyncKey derives the document key for a matched pair. The directory
// device ID is used only when it produced the match: uniqueness on both
// sides is then guaranteed by the index rule, so the key cannot collide.
// A directory ID that merely happens to be present may be duplicated
// (pairs matched by serial or hostname instead), and trusting it would let
// two pairs derive the same key. Those pairs key on the protection-internal
// ID, which exists for every match.
func matchedSyncKey(p *models.ProtectionDevice, matchedOn models.MatchKey) string {
	if matchedOn == models.MatchedOnDirectoryID {
		return "d:" + strings.TrimSpace(*p.DirectoryDeviceID)
	}
	return "p:" + p.ID
}

// NormalizeName case-folds and trims a hostname or device name so the two
// platforms' casing conventions do not defeat the join.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
