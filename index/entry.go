// Package index holds the bundle sequence: the entry store, page range
// calculation and derived views (sections, table of contents, validation).
// Everything derived here is a pure function over a snapshot of entries.
package index

import (
	"time"

	"cbundle/common"
)

// IndexEntry is one row in the bundle sequence.
type IndexEntry struct {
	ID            string         `json:"id" yaml:"id"`
	CaseID        string         `json:"case_id" yaml:"case_id"`
	SequenceOrder int64          `json:"sequence_order" yaml:"sequence_order"`
	RowType       common.RowType `json:"row_type" yaml:"row_type"`
	FileID        string         `json:"file_id,omitempty" yaml:"file_id,omitempty"`
	Content       string         `json:"content,omitempty" yaml:"content,omitempty"`
	SectionLabel  string         `json:"section_label,omitempty" yaml:"section_label,omitempty"`
	Label         string         `json:"label,omitempty" yaml:"label,omitempty"`
	PageCount     int            `json:"page_count" yaml:"page_count"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`

	// Derived, valid only on values returned by ComputePageRanges.
	PageStart int `json:"page_start,omitempty" yaml:"page_start,omitempty"`
	PageEnd   int `json:"page_end,omitempty" yaml:"page_end,omitempty"`
}

// IsSectionBreak reports whether entry opens a new section.
func (e *IndexEntry) IsSectionBreak() bool {
	return e.RowType == common.RowTypeSectionBreak
}

// Description returns text to show for the entry in listings.
func (e *IndexEntry) Description() string {
	switch {
	case len(e.Label) > 0:
		return e.Label
	case e.IsSectionBreak():
		return e.SectionLabel
	case e.RowType == common.RowTypeEvidenceFile:
		return e.FileID
	}
	return e.RowType.String()
}

// validate checks entry fields which do not depend on the rest of the
// sequence.
func (e *IndexEntry) validate(op string) error {
	if len(e.ID) == 0 {
		return validationErr(op, "entry id is empty")
	}
	if len(e.CaseID) == 0 {
		return validationErr(op, "entry %q has no case id", e.ID)
	}
	if !e.RowType.IsValid() {
		return validationErr(op, "entry %q has unknown row type %q", e.ID, e.RowType)
	}
	if e.RowType == common.RowTypeEvidenceFile && len(e.FileID) == 0 {
		return validationErr(op, "evidence entry %q has no file id", e.ID)
	}
	if e.PageCount < 1 {
		return validationErr(op, "entry %q has page count %d, must be positive", e.ID, e.PageCount)
	}
	if e.IsSectionBreak() && e.PageCount != 1 {
		return validationErr(op, "section break %q must occupy exactly one page, got %d", e.ID, e.PageCount)
	}
	return nil
}
