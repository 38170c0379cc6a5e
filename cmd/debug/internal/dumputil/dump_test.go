package dumputil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bundle.db")

	if err := WriteOutput(in, "", "-dump.txt", []byte("one"), false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	err := WriteOutput(in, "", "-dump.txt", []byte("two"), false)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("WriteOutput() error = %v, want already exists", err)
	}
	if err := WriteOutput(in, "", "-dump.txt", []byte("two"), true); err != nil {
		t.Fatalf("WriteOutput(overwrite) error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "bundle-dump.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Errorf("output = %q, want %q", got, "two")
	}
}

func TestWriteOutput_OutDir(t *testing.T) {
	in := filepath.Join(t.TempDir(), "bundle.db")
	out := t.TempDir()
	if err := WriteOutput(in, out, ".txt", []byte("x"), false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "bundle.txt")); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestIsSQLite(t *testing.T) {
	if !IsSQLite([]byte("SQLite format 3\x00 and the rest")) {
		t.Error("IsSQLite(header) = false, want true")
	}
	if IsSQLite([]byte("%PDF-1.7")) {
		t.Error("IsSQLite(pdf) = true, want false")
	}
}
