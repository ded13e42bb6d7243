package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventorykit/replenish/internal/domain"
	"github.com/inventorykit/replenish/internal/seasonal"
)

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	snap := Snapshot{
		Items: []domain.Item{
			{SKU: "SKU-1", Location: "STORE-1", Forecast: domain.ItemForecast{Base: 100}},
		},
		Profiles: []*seasonal.Profile{
			seasonal.NewProfile("p1", []float64{1, 1, 1}),
		},
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "SKU-1", loaded.Items[0].SKU)

	profiles := loaded.ProfileMap()
	require.Contains(t, profiles, "p1")
	assert.InDelta(t, 1.0, profiles["p1"].IndexFor(2), 1e-9)
}

func TestLoadSnapshot_Errors(t *testing.T) {
	_, err := LoadSnapshot("/nonexistent/snapshot.json")
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	_, err = LoadSnapshot(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"items":[]}`), 0644))
	_, err = LoadSnapshot(empty)
	assert.ErrorContains(t, err, "no items")
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	out := Output{
		Summary: Summary{Processed: 2, Updated: 1},
		Results: []ItemResult{{SKU: "SKU-1"}, {SKU: "SKU-2"}},
	}
	require.NoError(t, WriteOutput(path, out))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Output
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.Summary.Processed)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "SKU-2", decoded.Results[1].SKU)
}
