// Package export renders stored reports as a spreadsheet-friendly CSV:
// UTF-8 with a BOM so Excel picks the right encoding, ';' as the delimiter
// for ru-RU locales, and every cell quoted.
package export

import (
	"bytes"
	"strings"
	"time"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Filename names the export document for the day it was produced.
func Filename(date time.Time) string {
	return "all_reports_" + date.Format("2006-01-02") + ".csv"
}

// CSV renders the header row and data rows as one document. Embedded line
// breaks are flattened to spaces so each report stays on one sheet row.
func CSV(headers []string, rows [][]string) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	writeRow(&buf, headers)
	for _, row := range rows {
		writeRow(&buf, row)
	}

	return buf.Bytes()
}

func writeRow(buf *bytes.Buffer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			buf.WriteByte(';')
		}
		buf.WriteByte('"')
		buf.WriteString(escapeCell(cell))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}

func escapeCell(cell string) string {
	cell = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(cell)
	return strings.ReplaceAll(cell, `"`, `""`)
}
