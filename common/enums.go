// Package common keeps enumerations shared by the engine, persistence and
// configuration so none of them has to import the others.
package common

//go:generate go tool go-enum --marshal --names --nocase --mustparse

// Kind of a row in the bundle sequence.
// ENUM(evidence-file, cover-page, divider, section-break, component-reference)
type RowType string

// Editable rows have their page count derived from measured content.
func (x RowType) Editable() bool {
	return x == RowTypeCoverPage || x == RowTypeDivider
}

// Kind of a case. Only bundles are paginated, affidavits are kept for
// compatibility with existing databases.
// ENUM(affidavit, bundle)
type CaseType string

// Format of text stamped on bundle pages: "Page X of Y", "Page X" or "X".
// ENUM(pageOfTotal, page, number)
type StampFormat int

// How documents added after a bundle was served are numbered. With
// subnumber inserted pages are numbered 45A, 45B...
// ENUM(repaginate, subnumber)
type LateInsertMode int
