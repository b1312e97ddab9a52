package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aisd/internal/structures"
	"aisd/internal/testutil"
)

func TestNewStoreProvider_SQLite(t *testing.T) {
	logger := &testutil.MockLogger{}
	conf := &structures.Config{Storage: structures.StorageConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "data", "ais.db"),
	}}

	s, err := NewStoreProvider(conf, logger)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 1, logger.Count("info", "Opened sqlite store"))
}

func TestNewStoreProvider_UnsupportedDriver(t *testing.T) {
	conf := &structures.Config{Storage: structures.StorageConfig{Driver: "mysql"}}

	_, err := NewStoreProvider(conf, &testutil.MockLogger{})
	assert.ErrorContains(t, err, "unsupported storage driver")
}
