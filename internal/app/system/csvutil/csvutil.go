// internal/app/system/csvutil/csvutil.go

// Package csvutil writes collection exports as CSV.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// MaxRows caps one export.
const MaxRows = 20000

// ContentType is the response type of an export.
const ContentType = "text/csv; charset=utf-8"

// utf8BOM lets spreadsheet tools detect UTF-8 (accented names).
const utf8BOM = "\ufeff"

// Write writes header and rows to w as CSV with a UTF-8 byte order mark.
// Every cell goes through Sanitize. At most MaxRows rows are written;
// the number written is returned.
func Write(w io.Writer, header []string, rows [][]string) (int, error) {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	n := 0
	for _, row := range rows {
		if n == MaxRows {
			break
		}
		clean := make([]string, len(row))
		for i, cell := range row {
			clean[i] = Sanitize(cell)
		}
		if err := cw.Write(clean); err != nil {
			return n, fmt.Errorf("write row %d: %w", n+1, err)
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

// Sanitize neutralises cells a spreadsheet would evaluate as a formula.
func Sanitize(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + cell
	}
	return cell
}

// Filename builds the attachment name for an export, e.g.
// "communityhub-users-2025-01-31.csv".
func Filename(kind, date string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	return "communityhub-" + kind + "-" + date + ".csv"
}
