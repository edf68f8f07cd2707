package importer

import (
	"strings"

	"github.com/hyperjump/dialname/internal/models"
)

type column int

const (
	colNone column = iota
	colName
	colFirst
	colLast
	colNumber
	colType
	colLabel
)

var headerAliases = map[string]column{
	"name":         colName,
	"display name": colName,
	"full name":    colName,
	"contact":      colName,
	"first name":   colFirst,
	"given name":   colFirst,
	"last name":    colLast,
	"family name":  colLast,
	"surname":      colLast,
	"number":       colNumber,
	"phone":        colNumber,
	"phone number": colNumber,
	"telephone":    colNumber,
	"tel":          colNumber,
	"mobile":       colNumber,
	"type":         colType,
	"phone type":   colType,
	"kind":         colType,
	"label":        colLabel,
	"custom label": colLabel,
}

func headerKey(cell string) string {
	cell = strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(cell))
	return strings.Join(strings.Fields(cell), " ")
}

// parseHeader maps header cells to columns. It reports false when the row
// does not look like a header, i.e. has no name and number columns.
func parseHeader(row []string) ([]column, bool) {
	cols := make([]column, len(row))
	var hasName, hasNumber bool
	for i, cell := range row {
		c := headerAliases[headerKey(cell)]
		cols[i] = c
		switch c {
		case colName, colFirst, colLast:
			hasName = true
		case colNumber:
			hasNumber = true
		}
	}
	return cols, hasName && hasNumber
}

// positional is the column layout used when a table has no header row.
var positional = []column{colName, colNumber, colType, colLabel}

// rowsToContacts converts table rows to contacts. The first row is used as a
// header when it names a name and a number column; otherwise columns are
// read as name, number, type, label.
func rowsToContacts(rows [][]string) []*models.ContactInput {
	if len(rows) == 0 {
		return nil
	}
	cols, ok := parseHeader(rows[0])
	if ok {
		rows = rows[1:]
	} else {
		cols = positional
	}

	out := make([]*models.ContactInput, 0, len(rows))
	for _, row := range rows {
		var c models.ContactInput
		var first, last string
		for i, cell := range row {
			if i >= len(cols) {
				break
			}
			cell = strings.TrimSpace(cell)
			switch cols[i] {
			case colName:
				c.DisplayName = cell
			case colFirst:
				first = cell
			case colLast:
				last = cell
			case colNumber:
				if c.Number == "" {
					c.Number = cell
				}
			case colType:
				c.Type = cell
			case colLabel:
				c.Label = cell
			}
		}
		if c.DisplayName == "" {
			c.DisplayName = strings.TrimSpace(first + " " + last)
		}
		out = append(out, &c)
	}
	return out
}
