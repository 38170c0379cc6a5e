package index

import (
	"fmt"
)

// Kinds of pagination problems reported by ValidatePagination.
const (
	ProblemTOCOverlap        = "toc_overlap"
	ProblemPaginationGap     = "pagination_gap"
	ProblemPageCountMismatch = "page_count_mismatch"
	ProblemTotalMismatch     = "total_page_mismatch"
)

// DefaultLongTabPages is the tab length after which splitting is suggested.
const DefaultLongTabPages = 100

// PaginationProblem describes single inconsistency in table of contents.
type PaginationProblem struct {
	Kind     string
	Message  string
	Page     int
	Expected int
	Actual   int
}

// PaginationReport is the result of ValidatePagination.
type PaginationReport struct {
	Problems []PaginationProblem
	Warnings []string
}

// Valid reports whether no problems were found, warnings do not count.
func (r *PaginationReport) Valid() bool {
	return len(r.Problems) == 0
}

// ValidatePagination checks table of contents rows for continuous numbering
// and consistent page counts. When actualTotal is positive it is compared
// with the last page of the table (for example page count of a compiled
// bundle). tocPages is the number of pages reserved for the table itself,
// longTab is the warning threshold (0 means DefaultLongTabPages).
func ValidatePagination(rows []TOCEntry, tocPages, actualTotal, longTab int) PaginationReport {
	var rpt PaginationReport
	if longTab <= 0 {
		longTab = DefaultLongTabPages
	}

	expected := tocPages + 1
	for i, row := range rows {
		if i == 0 && tocPages > 0 && row.StartPage <= tocPages {
			rpt.Problems = append(rpt.Problems, PaginationProblem{
				Kind:     ProblemTOCOverlap,
				Message:  fmt.Sprintf("first tab starts on page %d, but table of contents needs %d page(s)", row.StartPage, tocPages),
				Page:     row.StartPage,
				Expected: tocPages + 1,
				Actual:   row.StartPage,
			})
		} else if row.StartPage != expected {
			rpt.Problems = append(rpt.Problems, PaginationProblem{
				Kind:     ProblemPaginationGap,
				Message:  fmt.Sprintf("pagination gap: expected page %d, found page %d", expected, row.StartPage),
				Page:     expected,
				Expected: expected,
				Actual:   row.StartPage,
			})
		}

		calculatedEnd := row.StartPage + row.PageCount - 1
		if calculatedEnd != row.EndPage {
			rpt.Problems = append(rpt.Problems, PaginationProblem{
				Kind:     ProblemPageCountMismatch,
				Message:  fmt.Sprintf("%s page count mismatch: %d pages should end at %d, but marked as %d", row.Label, row.PageCount, calculatedEnd, row.EndPage),
				Page:     row.StartPage,
				Expected: calculatedEnd,
				Actual:   row.EndPage,
			})
		}
		if row.PageCount > longTab {
			rpt.Warnings = append(rpt.Warnings, fmt.Sprintf("%s has %d pages - consider splitting for easier navigation", row.Label, row.PageCount))
		}
		expected = row.EndPage + 1
	}

	if actualTotal > 0 {
		total := tocPages
		if len(rows) > 0 {
			total = rows[len(rows)-1].EndPage
		}
		if total != actualTotal {
			rpt.Problems = append(rpt.Problems, PaginationProblem{
				Kind:     ProblemTotalMismatch,
				Message:  fmt.Sprintf("table of contents indicates %d total pages, but document has %d pages", total, actualTotal),
				Expected: total,
				Actual:   actualTotal,
			})
		}
	}
	return rpt
}
