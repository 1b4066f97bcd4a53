package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_create_simulation_results.up.sql",
		"000001_create_simulation_results.down.sql",
		"000012_add_index.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000099_dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := LatestVersion(dir); got != 12 {
		t.Errorf("Expected latest version 12, got %d", got)
	}
}

func TestLatestVersionMissingDir(t *testing.T) {
	if got := LatestVersion(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("Expected 0 for a missing dir, got %d", got)
	}
}

func TestShippedMigrations(t *testing.T) {
	if got := LatestVersion("../../migrations"); got != 2 {
		t.Errorf("Expected shipped migrations to reach version 2, got %d", got)
	}
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	if err := RunMigrations("", "migrations"); err == nil {
		t.Error("Expected an error for an empty database URL")
	}
}
