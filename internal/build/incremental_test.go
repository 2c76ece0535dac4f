package build

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	return p
}

func TestIncremental_SnapshotAndDiff(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.wj", "fn a() {}")
	b := writeTempFile(t, dir, "b.wj", "fn b() {}")
	c := filepath.Join(dir, "c.wj")
	paths := []string{a, b, c}

	snap1, err := SnapshotFiles(paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap1) != 2 {
		t.Fatalf("expected missing file to be omitted, got %d entries", len(snap1))
	}

	// Rewrite with identical bytes.
	writeTempFile(t, dir, "a.wj", "fn a() {}")
	snap2, err := SnapshotFiles(paths)
	if err != nil {
		t.Fatal(err)
	}
	if changed, removed := Diff(snap1, snap2); len(changed) != 0 || len(removed) != 0 {
		t.Fatalf("expected no changes, got changed=%v removed=%v", changed, removed)
	}

	// Modify, add and remove.
	writeTempFile(t, dir, "a.wj", "fn a() { 1 }")
	writeTempFile(t, dir, "c.wj", "fn c() {}")
	if err := os.Remove(b); err != nil {
		t.Fatal(err)
	}
	snap3, err := SnapshotFiles(paths)
	if err != nil {
		t.Fatal(err)
	}
	changed, removed := Diff(snap2, snap3)
	if len(changed) != 2 || changed[0] != a || changed[1] != c {
		t.Fatalf("expected a and c changed, got %v", changed)
	}
	if len(removed) != 1 || removed[0] != b {
		t.Fatalf("expected b removed, got %v", removed)
	}
}
