package storage

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"cbundle/common"
	"cbundle/index"
)

const entryColumns = `id, case_id, sequence_order, row_type, file_id, content, section_label, label_override, page_count, late, created_at`

// ListEntries returns persisted bundle sequence of a case ordered by
// sequence order together with the set of entries inserted after the bundle
// was served.
func (db *DB) ListEntries(caseID string) ([]index.IndexEntry, map[string]bool, error) {
	var (
		out  []index.IndexEntry
		late = make(map[string]bool)
	)
	err := db.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT `+entryColumns+` FROM entries WHERE case_id = ? ORDER BY sequence_order`,
			&sqlitex.ExecOptions{Args: []any{caseID}, ResultFunc: func(stmt *sqlite.Stmt) error {
				rt, err := common.ParseRowType(stmt.ColumnText(3))
				if err != nil {
					return err
				}
				e := index.IndexEntry{
					ID:            stmt.ColumnText(0),
					CaseID:        stmt.ColumnText(1),
					SequenceOrder: stmt.ColumnInt64(2),
					RowType:       rt,
					FileID:        stmt.ColumnText(4),
					Content:       stmt.ColumnText(5),
					SectionLabel:  stmt.ColumnText(6),
					Label:         stmt.ColumnText(7),
					PageCount:     stmt.ColumnInt(8),
					CreatedAt:     parseTime(stmt.ColumnText(10)),
				}
				if stmt.ColumnInt(9) != 0 {
					late[e.ID] = true
				}
				out = append(out, e)
				return nil
			}})
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to list entries of case %q: %w", caseID, err)
	}
	return out, late, nil
}

// SaveEntries replaces persisted sequence of a case with entries in a single
// transaction. Nothing is changed when any entry is rejected.
func (db *DB) SaveEntries(caseID string, entries []index.IndexEntry, late map[string]bool) error {
	const op = "save entries"

	err := db.do(func(conn *sqlite.Conn) (err error) {
		defer sqlitex.Save(conn)(&err)

		if err := sqlitex.Execute(conn, `DELETE FROM entries WHERE case_id = ?`, &sqlitex.ExecOptions{Args: []any{caseID}}); err != nil {
			return err
		}
		for i := range entries {
			e := &entries[i]
			if e.CaseID != caseID {
				return &index.ValidationError{Op: op, Reason: fmt.Sprintf("entry %q belongs to case %q, not %q", e.ID, e.CaseID, caseID)}
			}
			created := e.CreatedAt
			if created.IsZero() {
				created = db.now()
			}
			isLate := 0
			if late[e.ID] {
				isLate = 1
			}
			err := sqlitex.Execute(conn, `INSERT INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				&sqlitex.ExecOptions{Args: []any{
					e.ID, caseID, e.SequenceOrder, string(e.RowType), nullable(e.FileID), nullable(e.Content),
					nullable(e.SectionLabel), nullable(e.Label), e.PageCount, isLate, formatTime(created),
				}})
			if err != nil {
				return err
			}
		}
		return sqlitex.Execute(conn, `UPDATE cases SET updated_at = ? WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{db.stamp(), caseID}})
	})
	return constraintErr(op, err)
}
