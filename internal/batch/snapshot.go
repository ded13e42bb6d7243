// internal/batch/snapshot.go
package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/inventorykit/replenish/internal/domain"
	"github.com/inventorykit/replenish/internal/seasonal"
)

// Snapshot is the JSON document a run reads: the item population plus
// any seasonal profiles they reference.
type Snapshot struct {
	Items    []domain.Item       `json:"items"`
	Profiles []*seasonal.Profile `json:"profiles,omitempty"`
}

// Output is the JSON document a run writes.
type Output struct {
	Summary Summary      `json:"summary"`
	Results []ItemResult `json:"results"`
}

// LoadSnapshot reads and validates a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if len(snap.Items) == 0 {
		return nil, fmt.Errorf("snapshot %s has no items", path)
	}
	return &snap, nil
}

// ProfileMap indexes a snapshot's profiles by ID.
func (s *Snapshot) ProfileMap() map[string]*seasonal.Profile {
	m := make(map[string]*seasonal.Profile, len(s.Profiles))
	for _, p := range s.Profiles {
		m[p.ID] = p
	}
	return m
}

// WriteOutput writes run results as indented JSON, to stdout when path
// is empty.
func WriteOutput(path string, out Output) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
