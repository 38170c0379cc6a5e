package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap/zaptest"

	"cbundle/common"
	"cbundle/index"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Memory, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func mustCase(t *testing.T, db *DB, name string) Case {
	t.Helper()

	c, err := db.CreateCase(name, common.CaseTypeBundle)
	if err != nil {
		t.Fatalf("CreateCase(%q) error = %v", name, err)
	}
	return c
}

func mustFile(t *testing.T, db *DB, caseID, path string) File {
	t.Helper()

	f, err := db.CreateFile(File{CaseID: caseID, Path: path, OriginalName: path})
	if err != nil {
		t.Fatalf("CreateFile(%q) error = %v", path, err)
	}
	return f
}

func TestCases(t *testing.T) {
	db := openTestDB(t)

	c := mustCase(t, db, "Smith v Jones")
	if len(c.ID) == 0 {
		t.Fatal("CreateCase() returned empty id")
	}

	got, err := db.GetCase(c.ID)
	if err != nil {
		t.Fatalf("GetCase() error = %v", err)
	}
	if got.Name != "Smith v Jones" || got.Type != common.CaseTypeBundle {
		t.Errorf("GetCase() = %+v", got)
	}

	got.ContentJSON = `{"court":"High Court"}`
	got.Name = "Smith v Jones (No 2)"
	if err := db.UpdateCase(got); err != nil {
		t.Fatalf("UpdateCase() error = %v", err)
	}
	list, err := db.ListCases()
	if err != nil {
		t.Fatalf("ListCases() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "Smith v Jones (No 2)" || list[0].ContentJSON != `{"court":"High Court"}` {
		t.Errorf("ListCases() = %+v", list)
	}

	if err := db.DeleteCase(c.ID); err != nil {
		t.Fatalf("DeleteCase() error = %v", err)
	}
	if _, err := db.GetCase(c.ID); !errors.Is(err, index.ErrNotFound) {
		t.Errorf("GetCase() after delete error = %v, want not found", err)
	}
	if err := db.DeleteCase(c.ID); !errors.Is(err, index.ErrNotFound) {
		t.Errorf("DeleteCase() twice error = %v, want not found", err)
	}
}

func TestCreateCase_Invalid(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.CreateCase("", common.CaseTypeBundle); !errors.Is(err, index.ErrValidation) {
		t.Errorf("CreateCase(empty name) error = %v, want validation error", err)
	}
	if _, err := db.CreateCase("x", common.CaseType("deposition")); !errors.Is(err, index.ErrValidation) {
		t.Errorf("CreateCase(bad type) error = %v, want validation error", err)
	}
}

func TestFiles(t *testing.T) {
	db := openTestDB(t)
	c := mustCase(t, db, "case")

	f := mustFile(t, db, c.ID, "/evidence/exhibit-1.pdf")
	if f.PageCount != 0 {
		t.Errorf("new file PageCount = %d, want 0", f.PageCount)
	}

	if err := db.UpdateFile(f.ID, 12, 4096, `{"title":"Exhibit"}`); err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}
	got, err := db.GetFile(f.ID)
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if got.PageCount != 12 || got.Size != 4096 || got.MetadataJSON != `{"title":"Exhibit"}` {
		t.Errorf("GetFile() = %+v", got)
	}

	if _, err := db.CreateFile(File{CaseID: "missing", Path: "/x.pdf"}); !errors.Is(err, index.ErrValidation) {
		t.Errorf("CreateFile(unknown case) error = %v, want validation error", err)
	}
	if err := db.UpdateFile("missing", 1, 0, ""); !errors.Is(err, index.ErrNotFound) {
		t.Errorf("UpdateFile(missing) error = %v, want not found", err)
	}

	mustFile(t, db, c.ID, "/evidence/exhibit-2.pdf")
	files, err := db.ListFiles(c.ID)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ListFiles() returned %d files, want 2", len(files))
	}

	if err := db.DeleteFile(f.ID); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if _, err := db.GetFile(f.ID); !errors.Is(err, index.ErrNotFound) {
		t.Errorf("GetFile() after delete error = %v, want not found", err)
	}
}

func TestEntries_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	c := mustCase(t, db, "case")
	f := mustFile(t, db, c.ID, "/evidence/a.pdf")

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []index.IndexEntry{
		{ID: "cover", CaseID: c.ID, SequenceOrder: 0, RowType: common.RowTypeCoverPage, Content: "<h1>Bundle</h1>", PageCount: 1, CreatedAt: created},
		{ID: "tab", CaseID: c.ID, SequenceOrder: 1, RowType: common.RowTypeSectionBreak, SectionLabel: "Pleadings", PageCount: 1, CreatedAt: created},
		{ID: "doc", CaseID: c.ID, SequenceOrder: 5, RowType: common.RowTypeEvidenceFile, FileID: f.ID, Label: "Claim form", PageCount: 7, CreatedAt: created},
	}
	if err := db.SaveEntries(c.ID, entries, map[string]bool{"doc": true}); err != nil {
		t.Fatalf("SaveEntries() error = %v", err)
	}

	got, late, err := db.ListEntries(c.ID)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("ListEntries() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]bool{"doc": true}, late); diff != "" {
		t.Errorf("ListEntries() late mismatch (-want +got):\n%s", diff)
	}

	// saving replaces whole sequence
	if err := db.SaveEntries(c.ID, entries[:1], nil); err != nil {
		t.Fatalf("SaveEntries() error = %v", err)
	}
	got, late, err = db.ListEntries(c.ID)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(got) != 1 || len(late) != 0 {
		t.Errorf("ListEntries() = %d entries, %d late, want 1 and 0", len(got), len(late))
	}
}

func TestSaveEntries_Atomic(t *testing.T) {
	db := openTestDB(t)
	c := mustCase(t, db, "case")

	good := []index.IndexEntry{
		{ID: "a", CaseID: c.ID, SequenceOrder: 0, RowType: common.RowTypeDivider, PageCount: 1},
	}
	if err := db.SaveEntries(c.ID, good, nil); err != nil {
		t.Fatalf("SaveEntries() error = %v", err)
	}

	tests := []struct {
		name    string
		entries []index.IndexEntry
	}{
		{"duplicate order", []index.IndexEntry{
			{ID: "b", CaseID: c.ID, SequenceOrder: 0, RowType: common.RowTypeDivider, PageCount: 1},
			{ID: "c", CaseID: c.ID, SequenceOrder: 0, RowType: common.RowTypeDivider, PageCount: 1},
		}},
		{"zero pages", []index.IndexEntry{
			{ID: "b", CaseID: c.ID, SequenceOrder: 0, RowType: common.RowTypeDivider, PageCount: 0},
		}},
		{"unknown file", []index.IndexEntry{
			{ID: "b", CaseID: c.ID, SequenceOrder: 0, RowType: common.RowTypeEvidenceFile, FileID: "nope", PageCount: 1},
		}},
		{"foreign case", []index.IndexEntry{
			{ID: "b", CaseID: "other", SequenceOrder: 0, RowType: common.RowTypeDivider, PageCount: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.SaveEntries(c.ID, tt.entries, nil); !errors.Is(err, index.ErrValidation) {
				t.Errorf("SaveEntries() error = %v, want validation error", err)
			}
			got, _, err := db.ListEntries(c.ID)
			if err != nil {
				t.Fatalf("ListEntries() error = %v", err)
			}
			if diff := cmp.Diff(good, got, cmpopts.IgnoreFields(index.IndexEntry{}, "CreatedAt")); diff != "" {
				t.Errorf("sequence changed after failed save (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeleteCase_Cascades(t *testing.T) {
	db := openTestDB(t)
	c := mustCase(t, db, "case")
	f := mustFile(t, db, c.ID, "/a.pdf")

	entries := []index.IndexEntry{
		{ID: "doc", CaseID: c.ID, SequenceOrder: 0, RowType: common.RowTypeEvidenceFile, FileID: f.ID, PageCount: 3},
	}
	if err := db.SaveEntries(c.ID, entries, nil); err != nil {
		t.Fatalf("SaveEntries() error = %v", err)
	}
	if err := db.DeleteCase(c.ID); err != nil {
		t.Fatalf("DeleteCase() error = %v", err)
	}
	if _, err := db.GetFile(f.ID); !errors.Is(err, index.ErrNotFound) {
		t.Errorf("GetFile() after case delete error = %v, want not found", err)
	}
	got, _, err := db.ListEntries(c.ID)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListEntries() after case delete = %d entries, want 0", len(got))
	}
}

func TestClosed(t *testing.T) {
	db, err := Open(Memory, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := db.ListCases(); err == nil {
		t.Error("ListCases() on closed database succeeded")
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
