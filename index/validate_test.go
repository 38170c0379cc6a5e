package index

import (
	"testing"
)

func TestValidatePagination(t *testing.T) {
	good := []TOCEntry{
		{Label: "Tab 1", StartPage: 2, EndPage: 6, PageCount: 5},
		{Label: "Tab 2", StartPage: 7, EndPage: 9, PageCount: 3},
	}

	tests := []struct {
		name        string
		rows        []TOCEntry
		tocPages    int
		actualTotal int
		wantKinds   []string
		wantWarn    int
	}{
		{name: "valid", rows: good, tocPages: 1, actualTotal: 9},
		{name: "valid without total", rows: good, tocPages: 1},
		{name: "empty", tocPages: 1, actualTotal: 1},
		{
			name:      "toc overlap",
			rows:      []TOCEntry{{Label: "Tab 1", StartPage: 1, EndPage: 5, PageCount: 5}},
			tocPages:  1,
			wantKinds: []string{ProblemTOCOverlap},
		},
		{
			name: "gap",
			rows: []TOCEntry{
				{Label: "Tab 1", StartPage: 1, EndPage: 5, PageCount: 5},
				{Label: "Tab 2", StartPage: 8, EndPage: 9, PageCount: 2},
			},
			wantKinds: []string{ProblemPaginationGap},
		},
		{
			name:      "count mismatch",
			rows:      []TOCEntry{{Label: "Tab 1", StartPage: 1, EndPage: 4, PageCount: 5}},
			wantKinds: []string{ProblemPageCountMismatch},
		},
		{
			name:        "total mismatch",
			rows:        good,
			tocPages:    1,
			actualTotal: 12,
			wantKinds:   []string{ProblemTotalMismatch},
		},
		{
			name:     "long tab",
			rows:     []TOCEntry{{Label: "Tab 1", StartPage: 1, EndPage: 150, PageCount: 150}},
			wantWarn: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpt := ValidatePagination(tt.rows, tt.tocPages, tt.actualTotal, 0)
			if len(rpt.Problems) != len(tt.wantKinds) {
				t.Fatalf("ValidatePagination() problems = %+v, want kinds %v", rpt.Problems, tt.wantKinds)
			}
			for i, k := range tt.wantKinds {
				if rpt.Problems[i].Kind != k {
					t.Errorf("problem %d kind = %q, want %q", i, rpt.Problems[i].Kind, k)
				}
			}
			if len(rpt.Warnings) != tt.wantWarn {
				t.Errorf("ValidatePagination() warnings = %v, want %d", rpt.Warnings, tt.wantWarn)
			}
			if rpt.Valid() != (len(tt.wantKinds) == 0) {
				t.Errorf("Valid() = %v", rpt.Valid())
			}
		})
	}
}

func TestValidatePagination_BuiltTOC(t *testing.T) {
	ranged, total := ComputePageRanges([]IndexEntry{doc("A", 0, 4), brk("S", 1, "Tab"), doc("B", 2, 2)})
	rows, err := BuildTOC(ranged, TOCOptions{TOCPages: 2})
	if err != nil {
		t.Fatalf("BuildTOC() error = %v", err)
	}
	rpt := ValidatePagination(rows, 2, total+2, 0)
	if !rpt.Valid() {
		t.Errorf("generated table of contents is not valid: %+v", rpt.Problems)
	}
}
