package archive

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"golang.org/x/text/encoding/ianaindex"
)

type zipFile struct {
	name    string
	content string
	legacy  bool
}

func makeZip(t *testing.T, files ...zipFile) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evidence.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, zf := range files {
		hdr := &zip.FileHeader{Name: zf.name, Method: zip.Deflate, NonUTF8: zf.legacy}
		if strings.HasSuffix(zf.name, "/") {
			hdr.SetMode(os.ModeDir | 0755)
		}
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", zf.name, err)
		}
		if _, err := fw.Write([]byte(zf.content)); err != nil {
			t.Fatalf("Failed to write %s: %v", zf.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return path
}

func names(t *testing.T, path string, match func(string) bool) []string {
	t.Helper()
	var out []string
	err := Walk(path, nil, match, func(archive string, e Entry) error {
		if archive != path {
			t.Errorf("archive = %s, want %s", archive, path)
		}
		out = append(out, e.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return out
}

func TestWalk_NaturalOrder(t *testing.T) {
	path := makeZip(t,
		zipFile{name: "Tab 10/letter.pdf"},
		zipFile{name: "Tab 2/"},
		zipFile{name: "Tab 2/statement.pdf"},
		zipFile{name: "Tab 1/claim.pdf"},
		zipFile{name: "notes.txt"},
	)

	got := names(t, path, nil)
	want := []string{"Tab 1/claim.pdf", "Tab 2/statement.pdf", "Tab 10/letter.pdf", "notes.txt"}
	if !slices.Equal(got, want) {
		t.Errorf("Walk() visited %v, want %v", got, want)
	}

	pdfOnly := func(name string) bool { return strings.HasSuffix(strings.ToLower(name), ".pdf") }
	if got := names(t, path, pdfOnly); len(got) != 3 {
		t.Errorf("Walk() with filter visited %v", got)
	}
}

func TestWalk_Content(t *testing.T) {
	path := makeZip(t, zipFile{name: "a.pdf", content: "%PDF-1.7"})

	err := Walk(path, nil, nil, func(_ string, e Entry) error {
		rc, err := e.File.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		if string(data) != "%PDF-1.7" {
			t.Errorf("content = %q", data)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestWalk_LegacyNames(t *testing.T) {
	// "Ä.pdf" in code page 437
	path := makeZip(t, zipFile{name: "\x8e.pdf", legacy: true})

	cp, err := ianaindex.IANA.Encoding("IBM437")
	if err != nil {
		t.Fatalf("Encoding() error = %v", err)
	}
	var got []string
	err = Walk(path, cp, nil, func(_ string, e Entry) error {
		got = append(got, e.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if !slices.Equal(got, []string{"Ä.pdf"}) {
		t.Errorf("Walk() names = %q, want [Ä.pdf]", got)
	}

	if raw := names(t, path, nil); raw[0] != "\x8e.pdf" {
		t.Errorf("name without code page = %q, want raw bytes", raw[0])
	}
}

func TestWalk_Stops(t *testing.T) {
	path := makeZip(t, zipFile{name: "1.pdf"}, zipFile{name: "2.pdf"}, zipFile{name: "3.pdf"})

	stop := errors.New("stop walking")
	visited := 0
	err := Walk(path, nil, nil, func(string, Entry) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want %v", err, stop)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2", visited)
	}
}

func TestWalk_Errors(t *testing.T) {
	noop := func(string, Entry) error { return nil }

	if err := Walk("/nonexistent/file.zip", nil, nil, noop); err == nil {
		t.Error("Expected error for nonexistent file")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.zip")
	if err := os.WriteFile(invalid, []byte("not a zip file"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(invalid, nil, nil, noop); err == nil {
		t.Error("Expected error for invalid zip file")
	}

	for _, name := range []string{"../escape.pdf", "/abs.pdf", `..\win.pdf`, "a/../../b.pdf"} {
		path := makeZip(t, zipFile{name: "ok.pdf"}, zipFile{name: name})
		if err := Walk(path, nil, nil, noop); err == nil {
			t.Errorf("Walk() accepted unsafe entry %q", name)
		}
	}
}
