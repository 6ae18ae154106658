package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestInitCreatesSchema(t *testing.T) {
	d, err := Init(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer d.Close()

	for _, table := range []string{"scripts", "aggregates"} {
		var name string
		err := d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestInitIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	d, err := Init(path)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	d.Close()

	d, err = Init(path)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	d.Close()
}

func TestPruneScripts(t *testing.T) {
	d, err := Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer d.Close()

	insert := `INSERT INTO scripts (id, repo, pr_number, template_type, audience, target_seconds, total_seconds, quality, payload, created_at)
		VALUES (?, 'acme/proxy', 1, 'summary', 'engineering', 90, 88, 0.8, X'00', ?)`

	old := time.Now().Add(-48 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	fresh := time.Now().UTC().Format("2006-01-02 15:04:05")
	if _, err := d.Exec(insert, "old", old); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Exec(insert, "fresh", fresh); err != nil {
		t.Fatal(err)
	}

	if err := d.PruneScripts(24 * time.Hour); err != nil {
		t.Fatalf("PruneScripts: %v", err)
	}

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM scripts").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (old row pruned)", count)
	}
	var id string
	if err := d.QueryRow("SELECT id FROM scripts").Scan(&id); err != nil {
		t.Fatal(err)
	}
	if id != "fresh" {
		t.Errorf("surviving id = %q", id)
	}
}
