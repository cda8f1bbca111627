package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "indices.db")
	require.NoError(t, os.WriteFile(db, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(db+"-wal", []byte("abc"), 0o644))

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"single file", []string{db}, 5},
		{"database with sidecars", sqliteFiles(db), 8},
		{"missing and empty skipped", []string{"", filepath.Join(dir, "nope"), db}, 5},
		{"nothing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DiskUsageBytes(dir)
	assert.Error(t, err)
}
