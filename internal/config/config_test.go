package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: release
database:
  host: db.local
  port: 3306
study:
  dataset_path: data/alcie_study_dataset.json
  rating_min: 1
  rating_max: 5
  require_preference: true
storage:
  type: minio
  minio_bucket: alcie-test
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, "data/alcie_study_dataset.json", cfg.Study.DatasetPath)
	assert.Equal(t, 1, cfg.Study.RatingMin)
	assert.Equal(t, 5, cfg.Study.RatingMax)
	assert.True(t, cfg.Study.RequirePreference)
	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Equal(t, "alcie-test", cfg.Storage.MinioBucket)
}

func TestLoadConfigDefaultsRatingScale(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Study.RatingMin)
	assert.Equal(t, 5, cfg.Study.RatingMax)
}

func TestLoadConfigRejectsInvalidScale(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
study:
  rating_min: 5
  rating_max: 1
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
