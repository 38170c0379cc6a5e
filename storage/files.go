package storage

import (
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"cbundle/index"
)

// File is an evidence document attached to a case. PageCount is 0 until the
// document is inspected.
type File struct {
	ID           string    `json:"id" yaml:"id"`
	CaseID       string    `json:"caseId" yaml:"case_id"`
	Path         string    `json:"path" yaml:"path"`
	OriginalName string    `json:"originalName" yaml:"original_name"`
	PageCount    int       `json:"pageCount,omitempty" yaml:"page_count,omitempty"`
	Size         int64     `json:"fileSize,omitempty" yaml:"file_size,omitempty"`
	MetadataJSON string    `json:"metadataJson,omitempty" yaml:"metadata_json,omitempty"`
	CreatedAt    time.Time `json:"createdAt" yaml:"created_at"`
}

const fileColumns = `id, case_id, path, original_name, page_count, file_size, metadata_json, created_at`

func scanFile(stmt *sqlite.Stmt) File {
	f := File{
		ID:           stmt.ColumnText(0),
		CaseID:       stmt.ColumnText(1),
		Path:         stmt.ColumnText(2),
		OriginalName: stmt.ColumnText(3),
		Size:         stmt.ColumnInt64(5),
		MetadataJSON: stmt.ColumnText(6),
		CreatedAt:    parseTime(stmt.ColumnText(7)),
	}
	if stmt.ColumnType(4) != sqlite.TypeNull {
		f.PageCount = stmt.ColumnInt(4)
	}
	return f
}

func pageCountArg(n int) any {
	if n <= 0 {
		return nil
	}
	return n
}

// CreateFile attaches file to existing case. ID and creation time are
// assigned when empty.
func (db *DB) CreateFile(f File) (File, error) {
	const op = "create file"

	if len(f.CaseID) == 0 || len(f.Path) == 0 {
		return File{}, &index.ValidationError{Op: op, Reason: "file requires case id and path"}
	}
	if len(f.ID) == 0 {
		id, err := uuid.NewV7()
		if err != nil {
			return File{}, err
		}
		f.ID = id.String()
	}
	now := db.stamp()
	f.CreatedAt = parseTime(now)

	err := db.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT INTO files (`+fileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{f.ID, f.CaseID, f.Path, f.OriginalName, pageCountArg(f.PageCount), f.Size, nullable(f.MetadataJSON), now}})
	})
	if err != nil {
		return File{}, constraintErr(op, err)
	}
	return f, nil
}

// ListFiles returns files of a case in order they were added.
func (db *DB) ListFiles(caseID string) ([]File, error) {
	var out []File
	err := db.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT `+fileColumns+` FROM files WHERE case_id = ? ORDER BY created_at, id`,
			&sqlitex.ExecOptions{Args: []any{caseID}, ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, scanFile(stmt))
				return nil
			}})
	})
	return out, err
}

// GetFile returns file by id or NotFoundError.
func (db *DB) GetFile(id string) (File, error) {
	var (
		f     File
		found bool
	)
	err := db.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT `+fileColumns+` FROM files WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{id}, ResultFunc: func(stmt *sqlite.Stmt) error {
				f, found = scanFile(stmt), true
				return nil
			}})
	})
	if err != nil {
		return File{}, err
	}
	if !found {
		return File{}, &index.NotFoundError{Kind: "file", ID: id}
	}
	return f, nil
}

// UpdateFile stores inspection results: page count, size and metadata.
func (db *DB) UpdateFile(id string, pageCount int, size int64, metadataJSON string) error {
	return db.exec("update file", "file", id,
		`UPDATE files SET page_count = ?, file_size = ?, metadata_json = ? WHERE id = ?`,
		pageCountArg(pageCount), size, nullable(metadataJSON), id)
}

// DeleteFile removes file and every entry referencing it.
func (db *DB) DeleteFile(id string) error {
	return db.exec("delete file", "file", id, `DELETE FROM files WHERE id = ?`, id)
}
