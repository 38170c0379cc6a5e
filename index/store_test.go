package index

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"

	"cbundle/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(zaptest.NewLogger(t))
}

func mustInsert(t *testing.T, s *Store, e IndexEntry) IndexEntry {
	t.Helper()
	got, err := s.Insert(e)
	if err != nil {
		t.Fatalf("Insert(%q) error = %v", e.ID, err)
	}
	return got
}

func ids(entries []IndexEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func evidence(id string, pages int) IndexEntry {
	return IndexEntry{ID: id, CaseID: "case", RowType: common.RowTypeEvidenceFile, FileID: "file-" + id, PageCount: pages}
}

func TestStore_InsertDefaults(t *testing.T) {
	s := newTestStore(t)

	e := mustInsert(t, s, IndexEntry{CaseID: "case", RowType: common.RowTypeCoverPage})
	if len(e.ID) == 0 {
		t.Error("Insert() did not generate id")
	}
	if e.PageCount != 1 {
		t.Errorf("Insert() page count = %d, want 1", e.PageCount)
	}
	if e.CreatedAt.IsZero() {
		t.Error("Insert() did not set creation time")
	}

	second := mustInsert(t, s, IndexEntry{CaseID: "case", RowType: common.RowTypeDivider})
	if second.SequenceOrder <= e.SequenceOrder {
		t.Errorf("second entry sequence %d is not after first %d", second.SequenceOrder, e.SequenceOrder)
	}
}

func TestStore_InsertValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry IndexEntry
	}{
		{"no case", IndexEntry{RowType: common.RowTypeCoverPage}},
		{"bad row type", IndexEntry{CaseID: "case", RowType: "poster"}},
		{"evidence without file", IndexEntry{CaseID: "case", RowType: common.RowTypeEvidenceFile}},
		{"negative pages", IndexEntry{CaseID: "case", RowType: common.RowTypeCoverPage, PageCount: -2}},
		{"long section break", IndexEntry{CaseID: "case", RowType: common.RowTypeSectionBreak, PageCount: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			_, err := s.Insert(tt.entry)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Insert() error = %v, want validation error", err)
			}
			if s.Len() != 0 {
				t.Errorf("store has %d entries after failed insert", s.Len())
			}
		})
	}

	t.Run("duplicate id", func(t *testing.T) {
		s := newTestStore(t)
		mustInsert(t, s, evidence("A", 1))
		if _, err := s.Insert(evidence("A", 2)); !errors.Is(err, ErrValidation) {
			t.Fatalf("Insert() error = %v, want validation error", err)
		}
	})
}

func TestStore_InsertAt(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"A", "B", "C"} {
		mustInsert(t, s, evidence(id, 1))
	}

	// sequence is 0,1,2 - no gap, tail must shift
	if _, err := s.InsertAt(evidence("X", 1), 1); err != nil {
		t.Fatalf("InsertAt() error = %v", err)
	}
	if got, want := ids(s.List("case")), []string{"A", "X", "B", "C"}; !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	if _, err := s.InsertAt(evidence("F", 1), 0); err != nil {
		t.Fatalf("InsertAt() error = %v", err)
	}
	if _, err := s.InsertAt(evidence("L", 1), 5); err != nil {
		t.Fatalf("InsertAt() error = %v", err)
	}
	if got, want := ids(s.List("case")), []string{"F", "A", "X", "B", "C", "L"}; !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	list := s.List("case")
	for i := 1; i < len(list); i++ {
		if list[i-1].SequenceOrder >= list[i].SequenceOrder {
			t.Errorf("sequence order not strictly increasing at %d: %d >= %d", i, list[i-1].SequenceOrder, list[i].SequenceOrder)
		}
	}

	if _, err := s.InsertAt(evidence("Z", 1), 42); !errors.Is(err, ErrValidation) {
		t.Errorf("InsertAt() out of range error = %v, want validation error", err)
	}
}

func TestStore_InsertAtUsesGap(t *testing.T) {
	s := newTestStore(t)
	if err := s.Load("case", []IndexEntry{
		{ID: "A", SequenceOrder: 0, RowType: common.RowTypeCoverPage, PageCount: 1},
		{ID: "B", SequenceOrder: 10, RowType: common.RowTypeCoverPage, PageCount: 1},
	}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	x, err := s.InsertAt(IndexEntry{ID: "X", CaseID: "case", RowType: common.RowTypeDivider}, 1)
	if err != nil {
		t.Fatalf("InsertAt() error = %v", err)
	}
	if x.SequenceOrder != 5 {
		t.Errorf("InsertAt() sequence = %d, want 5", x.SequenceOrder)
	}
	b, _ := s.Get("B")
	if b.SequenceOrder != 10 {
		t.Errorf("neighbour moved to %d, want 10", b.SequenceOrder)
	}
	if len(changes) != 1 || !slices.Equal(changes[0].IDs, []string{"X"}) {
		t.Errorf("changes = %+v, want single insert of X", changes)
	}
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"A", "B", "C"} {
		mustInsert(t, s, evidence(id, 2))
	}

	if err := s.Remove("B"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	ranged, total := s.Ranges("case")
	if total != 4 {
		t.Errorf("total after remove = %d, want 4", total)
	}
	if ranged[1].ID != "C" || ranged[1].PageStart != 3 {
		t.Errorf("C not renumbered after remove: %+v", ranged[1])
	}

	var nf *NotFoundError
	if err := s.Remove("B"); !errors.As(err, &nf) || nf.ID != "B" {
		t.Errorf("Remove() of missing entry error = %v, want not found", err)
	}
}

func TestStore_ReorderScenario(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, evidence("A", 2))
	mustInsert(t, s, evidence("B", 1))
	mustInsert(t, s, evidence("C", 3))

	list, err := s.Reorder("case", []string{"C", "A", "B"})
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if got := ids(list); !slices.Equal(got, []string{"C", "A", "B"}) {
		t.Errorf("Reorder() = %v", got)
	}

	ranged, total := s.Ranges("case")
	want := []span{{"C", 1, 3}, {"A", 4, 5}, {"B", 6, 6}}
	if got := spans(ranged); !slices.Equal(got, want) {
		t.Errorf("ranges after reorder = %v, want %v", got, want)
	}
	if total != 6 {
		t.Errorf("total = %d, want 6", total)
	}
}

func TestStore_ReorderRejectsNonPermutation(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"A", "B", "C"} {
		mustInsert(t, s, evidence(id, 1))
	}
	mustInsert(t, s, IndexEntry{ID: "other", CaseID: "case2", RowType: common.RowTypeDivider})

	notified := 0
	s.Subscribe(func(Change) { notified++ })

	tests := []struct {
		name    string
		ids     []string
		wantErr error
	}{
		{"strict subset", []string{"C", "A"}, ErrValidation},
		{"duplicate", []string{"A", "A", "B"}, ErrValidation},
		{"foreign entry", []string{"A", "B", "other"}, ErrValidation},
		{"unknown entry", []string{"A", "B", "nope"}, ErrNotFound},
		{"superset", []string{"A", "B", "C", "A"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Reorder("case", tt.ids)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Reorder(%v) error = %v, want %v", tt.ids, err, tt.wantErr)
			}
			if got := ids(s.List("case")); !slices.Equal(got, []string{"A", "B", "C"}) {
				t.Errorf("order changed after rejected reorder: %v", got)
			}
		})
	}
	if notified != 0 {
		t.Errorf("rejected reorders emitted %d notifications", notified)
	}
}

func TestStore_UpdatePageCount(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, evidence("A", 1))
	mustInsert(t, s, IndexEntry{ID: "S", CaseID: "case", RowType: common.RowTypeSectionBreak, SectionLabel: "Tab A"})

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	if err := s.UpdatePageCount("A", 4); err != nil {
		t.Fatalf("UpdatePageCount() error = %v", err)
	}
	if err := s.UpdatePageCount("A", 4); err != nil {
		t.Fatalf("UpdatePageCount() same value error = %v", err)
	}
	if len(changes) != 1 || changes[0].Kind != ChangePageCount {
		t.Errorf("changes = %+v, want one page count change", changes)
	}

	for _, n := range []int{0, -1} {
		if err := s.UpdatePageCount("A", n); !errors.Is(err, ErrValidation) {
			t.Errorf("UpdatePageCount(%d) error = %v, want validation error", n, err)
		}
	}
	if err := s.UpdatePageCount("S", 2); !errors.Is(err, ErrValidation) {
		t.Errorf("UpdatePageCount() on section break error = %v, want validation error", err)
	}
	if err := s.UpdatePageCount("missing", 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePageCount() on missing entry error = %v, want not found", err)
	}

	a, _ := s.Get("A")
	if a.PageCount != 4 {
		t.Errorf("page count = %d, want 4", a.PageCount)
	}
}

func TestStore_UpdateContentAndLabel(t *testing.T) {
	s := newTestStore(t)
	cover := mustInsert(t, s, IndexEntry{ID: "cover", CaseID: "case", RowType: common.RowTypeCoverPage})
	mustInsert(t, s, evidence("A", 3))
	mustInsert(t, s, IndexEntry{ID: "S", CaseID: "case", RowType: common.RowTypeSectionBreak})

	if err := s.UpdateContent("cover", `{"type":"doc"}`); err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}
	if err := s.UpdateContent("A", "x"); !errors.Is(err, ErrValidation) {
		t.Errorf("UpdateContent() on evidence error = %v, want validation error", err)
	}
	if err := s.UpdateLabel("S", "Tab B"); err != nil {
		t.Fatalf("UpdateLabel() error = %v", err)
	}

	got, _ := s.Get("cover")
	if got.Content != `{"type":"doc"}` || got.SequenceOrder != cover.SequenceOrder {
		t.Errorf("content update changed entry unexpectedly: %+v", got)
	}
	sec, _ := s.Get("S")
	if sec.SectionLabel != "Tab B" {
		t.Errorf("section label = %q, want %q", sec.SectionLabel, "Tab B")
	}
}

func TestStore_Load(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, evidence("old", 1))

	err := s.Load("case", []IndexEntry{
		{ID: "A", SequenceOrder: 3, RowType: common.RowTypeCoverPage, PageCount: 2},
		{ID: "B", SequenceOrder: 3, RowType: common.RowTypeDivider, PageCount: 1},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Load() with duplicate sequence error = %v, want validation error", err)
	}
	if got := ids(s.List("case")); !slices.Equal(got, []string{"old"}) {
		t.Errorf("failed load changed store: %v", got)
	}

	err = s.Load("case", []IndexEntry{
		{ID: "B", SequenceOrder: 9, RowType: common.RowTypeDivider, PageCount: 1},
		{ID: "A", SequenceOrder: 3, RowType: common.RowTypeCoverPage, PageCount: 2},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := ids(s.List("case")); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("List() after load = %v", got)
	}
	if _, err := s.Get("old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("entry from previous load still present, error = %v", err)
	}

	err = s.Load("case", []IndexEntry{{ID: "Z", SequenceOrder: 1, RowType: common.RowTypeCoverPage, PageCount: 0}})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Load() with zero page count error = %v, want validation error", err)
	}
}

func TestStore_CasesAreIndependent(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, IndexEntry{ID: "b1", CaseID: "b", RowType: common.RowTypeDivider, PageCount: 1})
	mustInsert(t, s, IndexEntry{ID: "a1", CaseID: "a", RowType: common.RowTypeDivider, PageCount: 5})
	mustInsert(t, s, IndexEntry{ID: "a2", CaseID: "a", RowType: common.RowTypeDivider, PageCount: 1})

	if got := s.Cases(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Cases() = %v", got)
	}
	if _, total := s.Ranges("b"); total != 1 {
		t.Errorf("case b total = %d, want 1", total)
	}
	if _, total := s.Ranges("a"); total != 6 {
		t.Errorf("case a total = %d, want 6", total)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	s := newTestStore(t)
	count := 0
	cancel := s.Subscribe(func(Change) { count++ })
	mustInsert(t, s, evidence("A", 1))
	cancel()
	mustInsert(t, s, evidence("B", 1))
	if count != 1 {
		t.Errorf("listener called %d times, want 1", count)
	}
}
