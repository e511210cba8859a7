package vault

import (
	"encoding/json"
	"fmt"

	"github.com/aeworks/ops-api/internal/domain"
)

// MetaKey is the top-level key of the document metadata.
const MetaKey = "_meta"

// DocumentMeta is the "_meta" object of the master document.
type DocumentMeta struct {
	LastPush string `json:"lastPush,omitempty"`
	PushedBy string `json:"pushedBy,omitempty"`
}

// Document is the master document: one array per dataset plus metadata.
// Keys this build does not know are carried through untouched.
type Document struct {
	Datasets map[string][]domain.Record
	Meta     DocumentMeta
	extra    map[string]json.RawMessage
}

// NewDocument returns an empty shell with every dataset present.
func NewDocument() *Document {
	d := &Document{Datasets: make(map[string][]domain.Record, len(domain.Datasets))}
	for _, name := range domain.Datasets {
		d.Datasets[name] = []domain.Record{}
	}
	return d
}

// Dataset returns the records of name, empty when absent.
func (d *Document) Dataset(name string) []domain.Record {
	if r, ok := d.Datasets[name]; ok && r != nil {
		return r
	}
	return []domain.Record{}
}

func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(domain.Datasets)+len(d.extra)+1)
	for k, v := range d.extra {
		out[k] = v
	}
	for _, name := range domain.Datasets {
		out[name] = d.Dataset(name)
	}
	out[MetaKey] = d.Meta
	return json.Marshal(out)
}

// UnmarshalJSON accepts any object. A dataset value that is not an array of
// objects reads as empty rather than failing the whole document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("master document is not a JSON object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("master document is empty")
	}

	d.Datasets = make(map[string][]domain.Record, len(domain.Datasets))
	d.extra = make(map[string]json.RawMessage)
	d.Meta = DocumentMeta{}

	for key, value := range raw {
		switch {
		case key == MetaKey:
			_ = json.Unmarshal(value, &d.Meta)
		case domain.IsSyncedDataset(key):
			var records []domain.Record
			if err := json.Unmarshal(value, &records); err != nil {
				records = nil
			}
			d.Datasets[key] = compact(records)
		default:
			d.extra[key] = value
		}
	}
	for _, name := range domain.Datasets {
		if _, ok := d.Datasets[name]; !ok {
			d.Datasets[name] = []domain.Record{}
		}
	}
	return nil
}

func compact(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
