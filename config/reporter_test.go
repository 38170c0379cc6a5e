package config

import (
	"archive/zip"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(dir, "stored.txt")
	if err := os.WriteFile(stored, []byte("final"), 0644); err != nil {
		t.Fatal(err)
	}
	copied := filepath.Join(dir, "bundle.db")
	if err := os.WriteFile(copied, []byte("before"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "evidence")
	if err := os.MkdirAll(filepath.Join(sub, "tab1"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "tab1", "a.pdf"), []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("log", stored)
	r.Store("missing", filepath.Join(dir, "nope"))
	r.StoreData("index.txt", []byte("Tab 1"))
	if err := r.StoreCopy("db", copied); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	if err := r.StoreCopy("db", copied); err != nil {
		t.Fatalf("StoreCopy() of same name error = %v", err)
	}
	if err := r.StoreCopy("evidence", sub); err != nil {
		t.Fatalf("StoreCopy() of directory error = %v", err)
	}
	temps := slices.Clone(r.temps)

	// copy is a snapshot
	if err := os.WriteFile(copied, []byte("after"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stored, []byte("final!"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["log"] != "final!" {
		t.Errorf("log = %q, want content at close time", files["log"])
	}
	if files["db"] != "before" {
		t.Errorf("db = %q, want snapshot", files["db"])
	}
	if files["index.txt"] != "Tab 1" {
		t.Errorf("index.txt = %q", files["index.txt"])
	}
	if files["evidence/tab1/a.pdf"] != "%PDF" {
		t.Errorf("directory copy missing, archive has %v", slices.Sorted(maps.Keys(files)))
	}
	if !strings.Contains(files["MANIFEST"], "missing") {
		t.Errorf("MANIFEST does not list all entries:\n%s", files["MANIFEST"])
	}
	versioned := 0
	for name := range files {
		if strings.HasPrefix(name, "db-") {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("repeated copy stored %d times under versioned name, want 1", versioned)
	}

	for _, d := range temps {
		if _, err := os.Stat(d); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s was not removed", d)
		}
	}
}

func TestReport_OverwritePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("x", []byte("1"))
	defer func() {
		if recover() == nil {
			t.Error("StoreData() of existing name did not panic")
		}
	}()
	r.StoreData("x", []byte("2"))
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() of nil report = %q", r.Name())
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
