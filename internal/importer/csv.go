package importer

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/hyperjump/dialname/internal/models"
)

func importCSV(content string) ([]*models.ContactInput, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return rowsToContacts(rows), nil
}
