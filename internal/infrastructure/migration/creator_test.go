package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carbonlink/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add audit index", "add_audit_index"},
		{"Add-Audit-Index", "add_audit_index"},
		{"add__audit__index", "add_audit_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init", "initial schema")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_init.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "add audit index", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	up, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add audit index")

	down, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	list, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_add_audit_index"}, list)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations_MissingDir(t *testing.T) {
	list, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range ups {
		names[e.Name()] = true
	}
	assert.True(t, names["000001_init.up.sql"])
	assert.True(t, names["000001_init.down.sql"])
}
