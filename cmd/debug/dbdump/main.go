// dbdump reads a cbundle database and writes its raw content as an indented
// tree: every case with its files and entries in sequence order, followed by
// the page ranges computed from the stored page counts.
//
// Database is loaded into memory before reading, so a file held open by a
// running cbundle (or a copy stored in a debug report) can be inspected
// safely. Rows the application would reject (orphan entries, sequence
// duplicates, missing page counts) are reported rather than skipped.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"cbundle/cmd/debug/internal/dumputil"
	"cbundle/common"
	"cbundle/index"
	"cbundle/utils/debug"
)

func main() {
	overwrite := flag.Bool("overwrite", false, "overwrite existing output")
	caseID := flag.String("case", "", "dump only case with this id")
	stdout := flag.Bool("stdout", false, "write dump to standard output instead of <file>-dump.txt")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: dbdump [-case id] [-stdout] [-overwrite] <file.db> [outdir]\n\n")
		fmt.Fprintf(os.Stderr, "Dumps cases, files and entries of a cbundle database.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	defer func(startedAt time.Time) {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", time.Since(startedAt))
	}(time.Now())

	inPath := flag.Arg(0)
	outDir := ""
	if flag.NArg() == 2 {
		outDir = flag.Arg(1)
	}

	b, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", inPath, err)
		os.Exit(1)
	}
	if !dumputil.IsSQLite(b) {
		fmt.Fprintf(os.Stderr, "%s is not a SQLite database\n", inPath)
		os.Exit(1)
	}

	conn, err := sqlite.OpenConn(":memory:", sqlite.OpenReadWrite, sqlite.OpenMemory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open sqlite: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := conn.Deserialize("main", b); err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", inPath, err)
		os.Exit(1)
	}

	tw := debug.NewTreeWriter()
	if err := dumpDatabase(conn, tw, *caseID); err != nil {
		fmt.Fprintf(os.Stderr, "dump: %v\n", err)
		os.Exit(1)
	}

	if *stdout {
		os.Stdout.Write(tw.Bytes())
		return
	}
	if err := dumputil.WriteOutput(inPath, outDir, "-dump.txt", tw.Bytes(), *overwrite); err != nil {
		fmt.Fprintf(os.Stderr, "write dump: %v\n", err)
		os.Exit(1)
	}
}

type caseRow struct {
	id, name, kind, updated string
}

func dumpDatabase(conn *sqlite.Conn, tw *debug.TreeWriter, only string) error {
	var version int
	err := sqlitex.ExecuteTransient(conn, `PRAGMA user_version`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	tw.Line(0, "schema version %d", version)

	var cases []caseRow
	err = sqlitex.Execute(conn, `SELECT id, name, case_type, updated_at FROM cases ORDER BY created_at`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			cases = append(cases, caseRow{stmt.ColumnText(0), stmt.ColumnText(1), stmt.ColumnText(2), stmt.ColumnText(3)})
			return nil
		}})
	if err != nil {
		return fmt.Errorf("read cases: %w", err)
	}

	for _, c := range cases {
		if len(only) > 0 && c.id != only {
			continue
		}
		tw.Line(0, "case %q (%s) %s updated %s", c.name, c.kind, c.id, c.updated)
		if err := dumpFiles(conn, tw, c.id); err != nil {
			return err
		}
		if err := dumpEntries(conn, tw, c.id); err != nil {
			return err
		}
	}

	var orphans int
	err = sqlitex.Execute(conn, `SELECT COUNT(*) FROM entries e WHERE e.file_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM files f WHERE f.id = e.file_id)`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			orphans = stmt.ColumnInt(0)
			return nil
		}})
	if err != nil {
		return fmt.Errorf("count orphan entries: %w", err)
	}
	if orphans > 0 {
		tw.Line(0, "WARNING: %d entries reference missing files", orphans)
	}
	return nil
}

func dumpFiles(conn *sqlite.Conn, tw *debug.TreeWriter, caseID string) error {
	tw.Line(1, "files")
	return sqlitex.Execute(conn, `SELECT id, original_name, path, page_count, file_size FROM files WHERE case_id = ? ORDER BY created_at`,
		&sqlitex.ExecOptions{
			Args: []any{caseID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				pages := "?"
				if stmt.ColumnType(3) != sqlite.TypeNull {
					pages = fmt.Sprint(stmt.ColumnInt(3))
				}
				tw.Line(2, "%s %q pages=%s size=%d", stmt.ColumnText(0), stmt.ColumnText(1), pages, stmt.ColumnInt64(4))
				tw.TextBlock(3, "path", stmt.ColumnText(2))
				return nil
			},
		})
}

func dumpEntries(conn *sqlite.Conn, tw *debug.TreeWriter, caseID string) error {
	var (
		entries []index.IndexEntry
		late    = make(map[string]bool)
		seen    = make(map[int64]string)
	)
	tw.Line(1, "entries")
	err := sqlitex.Execute(conn, `SELECT id, sequence_order, row_type, file_id, content, section_label, label_override, page_count, late
FROM entries WHERE case_id = ? ORDER BY sequence_order, id`,
		&sqlitex.ExecOptions{
			Args: []any{caseID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				e := index.IndexEntry{
					ID:            stmt.ColumnText(0),
					CaseID:        caseID,
					SequenceOrder: stmt.ColumnInt64(1),
					RowType:       common.RowType(stmt.ColumnText(2)),
					FileID:        stmt.ColumnText(3),
					Content:       stmt.ColumnText(4),
					SectionLabel:  stmt.ColumnText(5),
					Label:         stmt.ColumnText(6),
					PageCount:     stmt.ColumnInt(7),
				}
				if stmt.ColumnInt(8) != 0 {
					late[e.ID] = true
				}
				flags := ""
				if late[e.ID] {
					flags = " late"
				}
				if prev, ok := seen[e.SequenceOrder]; ok {
					flags += " DUPLICATE-ORDER(" + prev + ")"
				}
				seen[e.SequenceOrder] = e.ID
				tw.Line(2, "#%d %s %s pages=%d%s", e.SequenceOrder, e.RowType, e.ID, e.PageCount, flags)
				if len(e.FileID) > 0 {
					tw.Line(3, "file %s", e.FileID)
				}
				if len(e.SectionLabel) > 0 {
					tw.TextBlock(3, "section", e.SectionLabel)
				}
				if len(e.Label) > 0 {
					tw.TextBlock(3, "label", e.Label)
				}
				if len(e.Content) > 0 {
					tw.TextBlock(3, "content", e.Content)
				}
				entries = append(entries, e)
				return nil
			},
		})
	if err != nil {
		return fmt.Errorf("read entries of case %s: %w", caseID, err)
	}

	ranged, total := index.ComputePageRanges(entries)
	tw.Line(1, "ranges (%d pages)", total)
	labels := index.LabelPages(ranged, common.LateInsertModeSubnumber, late, 0)
	for _, e := range ranged {
		if e.PageStart < 1 || e.PageEnd < e.PageStart || e.PageEnd > len(labels) {
			tw.Range(2, e.Description(), e.PageStart, e.PageEnd)
			continue
		}
		tw.Line(2, "%s [%d-%d] printed %s-%s", e.Description(), e.PageStart, e.PageEnd,
			labels[e.PageStart-1], labels[e.PageEnd-1])
	}
	return nil
}
