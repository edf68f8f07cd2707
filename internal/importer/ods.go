package importer

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/dialname/internal/models"
)

// odsContentPath is the path to the main content inside an .ods zip.
const odsContentPath = "content.xml"

// maxRepeatedCells caps table:number-columns-repeated, which spreadsheets use
// to pad rows out to thousands of empty cells.
const maxRepeatedCells = 32

var (
	odsTable  = regexp.MustCompile(`(?s)<table:table(?:\s[^>]*)?>(.*?)</table:table>`)
	odsRow    = regexp.MustCompile(`(?s)<table:table-row\b[^>]*>(.*?)</table:table-row>`)
	odsCell   = regexp.MustCompile(`(?s)<table:(?:covered-)?table-cell\b([^>]*?)(?:/>|>(.*?)</table:(?:covered-)?table-cell>)`)
	odsRepeat = regexp.MustCompile(`table:number-columns-repeated="(\d+)"`)
	odsTextP  = regexp.MustCompile(`(?s)<text:p[^>]*>(.*?)</text:p>`)
	odsTag    = regexp.MustCompile(`<[^>]+>`)
)

// importODS reads every table of an OpenDocument spreadsheet. Like Excel,
// each table may have its own header row.
func importODS(content []byte) ([]*models.ContactInput, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open ODS: not a zip: %w", err)
	}
	var contentXML []byte
	for _, f := range zr.File {
		if f.Name != odsContentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open ODS: open %s: %w", f.Name, err)
		}
		contentXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("open ODS: read %s: %w", f.Name, err)
		}
		break
	}
	if contentXML == nil {
		return nil, fmt.Errorf("open ODS: %s not found", odsContentPath)
	}

	var out []*models.ContactInput
	for _, table := range odsTable.FindAllStringSubmatch(string(contentXML), -1) {
		out = append(out, rowsToContacts(odsRows(table[1]))...)
	}
	return out, nil
}

func odsRows(tableXML string) [][]string {
	var rows [][]string
	for _, row := range odsRow.FindAllStringSubmatch(tableXML, -1) {
		var cells []string
		for _, cell := range odsCell.FindAllStringSubmatch(row[1], -1) {
			repeat := 1
			if m := odsRepeat.FindStringSubmatch(cell[1]); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > 1 {
					repeat = min(n, maxRepeatedCells)
				}
			}
			text := odsCellText(cell[2])
			for i := 0; i < repeat; i++ {
				cells = append(cells, text)
			}
		}
		rows = append(rows, cells)
	}
	return rows
}

func odsCellText(cellXML string) string {
	var parts []string
	for _, p := range odsTextP.FindAllStringSubmatch(cellXML, -1) {
		parts = append(parts, html.UnescapeString(odsTag.ReplaceAllString(p[1], "")))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
