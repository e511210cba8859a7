// Package merge reconciles divergent copies of a dataset.
//
// Records are identified by a per-dataset stable key rather than their
// generated id, because the same entity may be created independently on two
// clients. The same StableKey function backs both the local store's write-path
// de-duplication and Merge; they must never diverge.
package merge

import (
	"github.com/aeworks/ops-api/internal/domain"
)

// StableKey returns the identity of record within dataset. Numeric and bool
// identity fields count as present and are stringified. It is total: a record
// with none of the identity fields yields "".
func StableKey(dataset string, record domain.Record) string {
	switch dataset {
	case domain.DatasetUsers:
		return firstNonEmpty(record, "email", "username", domain.FieldID)
	case domain.DatasetProjects:
		return firstNonEmpty(record, domain.FieldProjectCode, domain.FieldID)
	case domain.DatasetClients:
		return firstNonEmpty(record, "name", domain.FieldID)
	default:
		return record.ID()
	}
}

func firstNonEmpty(record domain.Record, fields ...string) string {
	for _, f := range fields {
		if s := record.Key(f); s != "" {
			return s
		}
	}
	return ""
}

// Merge combines local and remote copies of one dataset, last write wins per
// record. The result is seeded from remote; a local record replaces the entry
// with the same stable key only when its updatedAt is strictly later, so ties
// and records without timestamps (domain.EpochZero) keep the remote side.
//
// Output order is remote order followed by local-only records in local order.
func Merge(dataset string, local, remote []domain.Record) []domain.Record {
	m := newOrderedMap(len(remote) + len(local))
	for _, r := range remote {
		m.set(StableKey(dataset, r), r)
	}

	for _, l := range local {
		key := StableKey(dataset, l)
		existing, ok := m.get(key)
		if !ok || l.UpdatedAt().After(existing.UpdatedAt()) {
			m.set(key, l)
		}
	}

	return m.values()
}

// Dedupe collapses records sharing a stable key, keeping the most recently
// updated one at the position of the key's first occurrence. On equal
// timestamps the later record in the input wins.
func Dedupe(dataset string, records []domain.Record) []domain.Record {
	m := newOrderedMap(len(records))
	for _, r := range records {
		key := StableKey(dataset, r)
		existing, ok := m.get(key)
		if !ok || !existing.UpdatedAt().After(r.UpdatedAt()) {
			m.set(key, r)
		}
	}
	return m.values()
}

type orderedMap struct {
	keys  []string
	items map[string]domain.Record
}

func newOrderedMap(capacity int) *orderedMap {
	return &orderedMap{
		keys:  make([]string, 0, capacity),
		items: make(map[string]domain.Record, capacity),
	}
}

func (m *orderedMap) get(key string) (domain.Record, bool) {
	r, ok := m.items[key]
	return r, ok
}

func (m *orderedMap) set(key string, r domain.Record) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = r
}

func (m *orderedMap) values() []domain.Record {
	out := make([]domain.Record, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.items[k])
	}
	return out
}
