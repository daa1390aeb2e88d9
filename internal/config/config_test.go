package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Batch.DefaultPayer = "Aetna"
	cfg.Batch.MaxFiles = 10

	path := filepath.Join(t.TempDir(), "phil.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Paths.InputDir, got.Paths.InputDir)
	assert.Equal(t, cfg.Paths.MappingFile, got.Paths.MappingFile)
	assert.Equal(t, "Aetna", got.Batch.DefaultPayer)
	assert.Equal(t, 10, got.Batch.MaxFiles)
	assert.Equal(t, cfg.Classify.ServicePairs, got.Classify.ServicePairs)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "input", cfg.Paths.InputDir)
	assert.Equal(t, "output", cfg.Paths.OutputDir)
	assert.Equal(t, "Proliance Mapping.xlsx", cfg.Paths.MappingFile)
	assert.Equal(t, "logs", cfg.Paths.LogDir)
	assert.Equal(t, 0, cfg.Batch.MaxFiles)
	assert.Len(t, cfg.Classify.ServicePairs, 5)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phil.yaml")
	err := Save(path, Default())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "input_dir: input")
	assert.Contains(t, contents, "mapping_file: Proliance Mapping.xlsx")
	assert.Contains(t, contents, "service_pairs:")
}

func TestPairsTable(t *testing.T) {
	cfg := &Config{Classify: ClassifyConfig{
		ServicePairs: [][]string{
			{"99202", "99212"},
			{"bad"},
			{"", "99213"},
		},
	}}

	pairs := cfg.PairsTable()
	require.Len(t, pairs, 1, "malformed entries are dropped")
	assert.Equal(t, [2]string{"99202", "99212"}, pairs[0])
}
