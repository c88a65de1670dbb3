// Package output tabulates a run: spreadsheet or CSV on disk, and a short
// summary table on the console.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/v0xg/resultfetch/internal/result"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet results are written to
const SheetName = "Results"

// Write tabulates the run at path, choosing the format from the extension
// (.xlsx or .csv). It returns the number of data rows written.
func Write(run result.Run, path string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeXLSX(run, path)
	case ".csv":
		return writeCSV(run, path)
	default:
		return 0, fmt.Errorf("unsupported output format %q (use .xlsx or .csv)", filepath.Ext(path))
	}
}

// Rows lays the run out as a header row followed by one row per record.
// Missing fields are empty cells.
func Rows(run result.Run) [][]string {
	cols := run.Columns()
	rows := make([][]string, 0, len(run)+1)
	rows = append(rows, cols)
	for _, rec := range run {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i], _ = rec.Get(c)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeXLSX(run result.Run, path string) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	rows := Rows(run)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return 0, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(rows[0]) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return 0, fmt.Errorf("header style: %w", err)
		}
		if err := f.SetRowStyle(SheetName, 1, 1, style); err != nil {
			return 0, fmt.Errorf("header style: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save %s: %w", path, err)
	}
	return len(run), nil
}

func writeCSV(run result.Run, path string) (int, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	w := csv.NewWriter(out)
	if err := w.WriteAll(Rows(run)); err != nil {
		out.Close()
		return 0, fmt.Errorf("write csv: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	return len(run), nil
}

// Summary prints the leading columns of every record as a console table
func Summary(run result.Run, w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	header := table.Row{}
	for _, k := range result.Leading {
		header = append(header, k)
	}
	t.AppendHeader(header)

	for _, rec := range run {
		row := table.Row{}
		for _, k := range result.Leading {
			v, _ := rec.Get(k)
			row = append(row, v)
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"total", len(run), "", "failed", run.Failures()})
	t.Render()
}
