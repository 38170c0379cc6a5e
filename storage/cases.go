package storage

import (
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"cbundle/common"
	"cbundle/index"
)

// Case is a matter bundles are prepared for.
type Case struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Type        common.CaseType `json:"caseType" yaml:"case_type"`
	ContentJSON string          `json:"contentJson,omitempty" yaml:"content_json,omitempty"`
	CreatedAt   time.Time       `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" yaml:"updated_at"`
}

const caseColumns = `id, name, case_type, content_json, created_at, updated_at`

func scanCase(stmt *sqlite.Stmt) (Case, error) {
	ct, err := common.ParseCaseType(stmt.ColumnText(2))
	if err != nil {
		return Case{}, err
	}
	return Case{
		ID:          stmt.ColumnText(0),
		Name:        stmt.ColumnText(1),
		Type:        ct,
		ContentJSON: stmt.ColumnText(3),
		CreatedAt:   parseTime(stmt.ColumnText(4)),
		UpdatedAt:   parseTime(stmt.ColumnText(5)),
	}, nil
}

// CreateCase adds new case.
func (db *DB) CreateCase(name string, ct common.CaseType) (Case, error) {
	const op = "create case"

	if len(name) == 0 {
		return Case{}, &index.ValidationError{Op: op, Reason: "case name is empty"}
	}
	ct, err := common.ParseCaseType(string(ct))
	if err != nil {
		return Case{}, &index.ValidationError{Op: op, Reason: err.Error()}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Case{}, err
	}

	now := db.stamp()
	err = db.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT INTO cases (`+caseColumns+`) VALUES (?, ?, ?, NULL, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{id.String(), name, string(ct), now, now}})
	})
	if err != nil {
		return Case{}, constraintErr(op, err)
	}
	return Case{ID: id.String(), Name: name, Type: ct, CreatedAt: parseTime(now), UpdatedAt: parseTime(now)}, nil
}

// ListCases returns all cases, most recently updated first.
func (db *DB) ListCases() ([]Case, error) {
	var out []Case
	err := db.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT `+caseColumns+` FROM cases ORDER BY updated_at DESC, id`,
			&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
				c, err := scanCase(stmt)
				if err != nil {
					return err
				}
				out = append(out, c)
				return nil
			}})
	})
	return out, err
}

// GetCase returns case by id or NotFoundError.
func (db *DB) GetCase(id string) (Case, error) {
	var (
		c     Case
		found bool
	)
	err := db.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT `+caseColumns+` FROM cases WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{id}, ResultFunc: func(stmt *sqlite.Stmt) (err error) {
				c, err = scanCase(stmt)
				found = true
				return err
			}})
	})
	if err != nil {
		return Case{}, err
	}
	if !found {
		return Case{}, &index.NotFoundError{Kind: "case", ID: id}
	}
	return c, nil
}

// UpdateCase changes name and content of the case.
func (db *DB) UpdateCase(c Case) error {
	return db.exec("update case", "case", c.ID,
		`UPDATE cases SET name = ?, content_json = ?, updated_at = ? WHERE id = ?`,
		c.Name, nullable(c.ContentJSON), db.stamp(), c.ID)
}

// TouchCase marks case as updated now.
func (db *DB) TouchCase(id string) error {
	return db.exec("touch case", "case", id, `UPDATE cases SET updated_at = ? WHERE id = ?`, db.stamp(), id)
}

// DeleteCase removes case with all its files and entries.
func (db *DB) DeleteCase(id string) error {
	return db.exec("delete case", "case", id, `DELETE FROM cases WHERE id = ?`, id)
}

// exec runs single modifying statement and reports NotFoundError when it did
// not touch any row.
func (db *DB) exec(op, kind, id, query string, args ...any) error {
	var changes int
	err := db.do(func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
			return err
		}
		changes = conn.Changes()
		return nil
	})
	if err != nil {
		return constraintErr(op, err)
	}
	if changes == 0 {
		return &index.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
