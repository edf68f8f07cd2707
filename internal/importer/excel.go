package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/dialname/internal/models"
)

// importExcel reads every sheet; each sheet may have its own header row.
func importExcel(content []byte) ([]*models.ContactInput, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var out []*models.ContactInput
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		out = append(out, rowsToContacts(rows)...)
	}
	return out, nil
}
