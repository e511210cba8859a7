package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestReadSeed(t *testing.T) {
	path := writeSeed(t, `
framingMaterials:
  - group: RHS
    name: RHS 50x50x3
    rate: 180
    surfaceAreaFactor: 0.2
finishMaterials:
  - name: Zinc primer
    price: 95.5
    coverage: 8
`)

	datasets, err := readSeed(path)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	framing := domain.FramingCatalog(datasets[domain.DatasetFramingMaterials])
	require.Len(t, framing, 1)
	assert.Equal(t, "RHS 50x50x3", framing[0].Name)
	assert.Equal(t, 180.0, framing[0].Rate)

	finishes := domain.FinishesCatalog(datasets[domain.DatasetFinishMaterials])
	assert.Equal(t, 95.5, finishes[0].Price)
}

func TestReadSeed_Errors(t *testing.T) {
	_, err := readSeed(writeSeed(t, "systemMeta:\n  - accessToken: x\n"))
	assert.Error(t, err, "local-only slot")

	_, err = readSeed(writeSeed(t, "projects: [unclosed"))
	assert.Error(t, err)

	_, err = readSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResultError(t *testing.T) {
	assert.NoError(t, resultError(domain.SyncResult{Success: true}))
	assert.EqualError(t, resultError(domain.SyncResult{Message: "Cloud authorization required"}), "Cloud authorization required")
}
