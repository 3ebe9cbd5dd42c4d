// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

func quoteIdent(s string) string {
	return `"` + strings.Replace(s, `"`, `""`, -1) + `"`
}

// ExportSQLite writes the tables of one analysis and their join to a
// fresh sqlite database at path.  Table i is stored as deployment_i,
// the join as cross_examination and the deployment names in
// deployments.
func ExportSQLite(ctx context.Context, path string, names []string, j *Joined) error {
	if e := os.Remove(path); e != nil && !os.IsNotExist(e) {
		return e
	}
	db, e := sql.Open("sqlite", path)
	if e != nil {
		return e
	}
	defer db.Close()
	tx, e := db.BeginTx(ctx, nil)
	if e != nil {
		return e
	}
	defer tx.Rollback()
	if _, e := tx.ExecContext(ctx, `CREATE TABLE deployments (idx INTEGER PRIMARY KEY, name TEXT NOT NULL)`); e != nil {
		return e
	}
	for i, nm := range names {
		if _, e := tx.ExecContext(ctx, `INSERT INTO deployments (idx, name) VALUES (?, ?)`, i, nm); e != nil {
			return e
		}
	}
	for i, t := range j.Tables {
		hdr := append([]string{KeyColumn}, t.Header()...)
		if e := sqlTable(ctx, tx, fmt.Sprintf("deployment_%d", i), hdr, t.Matrix()); e != nil {
			return e
		}
	}
	hdr := append([]string{KeyColumn}, j.Header()...)
	rows := make([][]string, 0, j.Len())
	for _, k := range j.Keys {
		row := []string{k}
		for _, t := range j.Tables {
			for _, f := range t.Header() {
				row = append(row, t.Cell(k, f))
			}
		}
		rows = append(rows, row)
	}
	if e := sqlTable(ctx, tx, "cross_examination", hdr, rows); e != nil {
		return e
	}
	return tx.Commit()
}

func sqlTable(ctx context.Context, tx *sql.Tx, name string, hdr []string, rows [][]string) error {
	cols := make([]string, len(hdr))
	marks := make([]string, len(hdr))
	for i, h := range hdr {
		cols[i] = quoteIdent(h) + " TEXT"
		marks[i] = "?"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
	if _, e := tx.ExecContext(ctx, ddl); e != nil {
		return fmt.Errorf("creating %s: %w", name, e)
	}
	stmt, e := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), strings.Join(marks, ", ")))
	if e != nil {
		return e
	}
	defer stmt.Close()
	args := make([]any, len(hdr))
	for _, row := range rows {
		for i := range args {
			args[i] = row[i]
		}
		if _, e := stmt.ExecContext(ctx, args...); e != nil {
			return fmt.Errorf("inserting into %s: %w", name, e)
		}
	}
	return nil
}
