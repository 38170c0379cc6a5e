package index

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"cbundle/common"
)

const (
	// DefaultLabelTemplate produces "Tab 3", "Tab 3A"...
	DefaultLabelTemplate = "Tab {{ .Number }}{{ .Suffix }}"
	// DefaultTOCEntriesPerPage is how many rows fit on a table of contents
	// page with standard formatting.
	DefaultTOCEntriesPerPage = 25
)

// PageLabel is a printed page number, suffix is set for late inserted pages
// numbered after the preceding page (45A, 45B).
type PageLabel struct {
	Base   int
	Suffix rune
}

// NewSubPageLabel returns label for index-th page inserted after base, index
// 0 is 'A'. Suffixes saturate at 'Z'.
func NewSubPageLabel(base, index int) PageLabel {
	return PageLabel{Base: base, Suffix: rune('A' + min(max(index, 0), 25))}
}

func (l PageLabel) String() string {
	if l.Suffix == 0 {
		return strconv.Itoa(l.Base)
	}
	return strconv.Itoa(l.Base) + string(l.Suffix)
}

// LabelPages returns printed label for every global page of ranged sequence.
// In repaginate mode labels are simply 1..total. In subnumber mode pages of
// late entries do not advance numbering, they are labelled after the last
// regular page preceding them, so pages which were already served keep their
// numbers.
func LabelPages(ranged []IndexEntry, mode common.LateInsertMode, late map[string]bool, offset int) []PageLabel {
	var labels []PageLabel
	number, sub := offset, 0
	for _, e := range ranged {
		isLate := mode == common.LateInsertModeSubnumber && late[e.ID]
		for range e.PageCount {
			if isLate {
				labels = append(labels, NewSubPageLabel(number, sub))
				sub++
				continue
			}
			number++
			sub = 0
			labels = append(labels, PageLabel{Base: number})
		}
	}
	return labels
}

// TOCEntry is one row (tab) of the table of contents.
type TOCEntry struct {
	Label       string   `json:"label" yaml:"label"`
	Description string   `json:"description" yaml:"description"`
	StartPage   int      `json:"start_page" yaml:"start_page"`
	EndPage     int      `json:"end_page" yaml:"end_page"`
	PageCount   int      `json:"page_count" yaml:"page_count"`
	StartLabel  string   `json:"start_label" yaml:"start_label"`
	EndLabel    string   `json:"end_label" yaml:"end_label"`
	Late        bool     `json:"late,omitempty" yaml:"late,omitempty"`
	EntryIDs    []string `json:"entries" yaml:"entries"`
}

// TOCOptions controls table of contents preview.
type TOCOptions struct {
	// text/template with sprig functions, .Number and .Suffix are available
	LabelTemplate string
	// pages occupied by the table itself, documents start after them
	TOCPages int
	Mode     common.LateInsertMode
	// ids of entries added after the bundle was served
	Late map[string]bool
}

type labelValues struct {
	Number      int
	Suffix      string
	Description string
}

// EstimateTOCPages returns number of pages table of contents needs for rows,
// never less than one.
func EstimateTOCPages(rows, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultTOCEntriesPerPage
	}
	return max(1, (rows+perPage-1)/perPage)
}

// TOCRows returns number of rows BuildTOC produces for groups, useful to
// estimate table size before building it.
func TOCRows(groups []SectionGroup) int {
	n := 0
	for i := range groups {
		if groups[i].Root {
			n += len(groups[i].Entries)
			continue
		}
		n++
	}
	return n
}

// BuildTOC produces table of contents rows from a ranged sequence: every
// section is a tab, documents preceding the first section are tabs of their
// own. Page numbers are shifted by opts.TOCPages.
func BuildTOC(ranged []IndexEntry, opts TOCOptions) ([]TOCEntry, error) {
	if len(opts.LabelTemplate) == 0 {
		opts.LabelTemplate = DefaultLabelTemplate
	}
	tmpl, err := template.New("label").Funcs(sprig.FuncMap()).Parse(opts.LabelTemplate)
	if err != nil {
		return nil, fmt.Errorf("unable to parse label template: %w", err)
	}

	labels := LabelPages(ranged, opts.Mode, opts.Late, opts.TOCPages)
	groups := GroupBySections(ranged)

	var rows []TOCEntry
	addRow := func(entries []IndexEntry, description string) {
		first, last := entries[0], entries[len(entries)-1]
		row := TOCEntry{
			Description: description,
			StartPage:   first.PageStart + opts.TOCPages,
			EndPage:     last.PageEnd + opts.TOCPages,
			StartLabel:  labels[first.PageStart-1].String(),
			EndLabel:    labels[last.PageEnd-1].String(),
			Late:        opts.Mode == common.LateInsertModeSubnumber && opts.Late[first.ID],
		}
		row.PageCount = row.EndPage - row.StartPage + 1
		for _, e := range entries {
			row.EntryIDs = append(row.EntryIDs, e.ID)
		}
		rows = append(rows, row)
	}
	for i := range groups {
		g := &groups[i]
		if g.Root {
			for j := range g.Entries {
				addRow(g.Entries[j:j+1], g.Entries[j].Description())
			}
			continue
		}
		addRow(g.Entries, g.Label)
	}

	number, sub := 0, 0
	buf := new(bytes.Buffer)
	for i := range rows {
		v := labelValues{Description: rows[i].Description}
		if rows[i].Late && number > 0 {
			v.Number, v.Suffix = number, string(rune('A'+min(sub, 25)))
			sub++
		} else {
			number++
			sub = 0
			v.Number = number
		}
		buf.Reset()
		if err := tmpl.Execute(buf, v); err != nil {
			return nil, fmt.Errorf("unable to expand label template for row %d: %w", i+1, err)
		}
		rows[i].Label = buf.String()
	}
	return rows, nil
}
