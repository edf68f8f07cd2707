// Package e2e provides end-to-end tests; this file writes contact files for supported types.
package e2e

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/dialname/internal/models"
)

// SupportedFileExtensions is the list of contact file extensions used in E2E file-based tests.
var SupportedFileExtensions = []string{".csv", ".xlsx", ".ods", ".yaml", ".vcf"}

// WriteContactsFile returns the bytes of a contact file of the given extension holding contacts.
func WriteContactsFile(ext string, contacts []E2EContact) ([]byte, error) {
	switch ext {
	case ".csv":
		return contactsCSV(contacts)
	case ".xlsx":
		return contactsXlsx(contacts)
	case ".ods":
		return contactsOds(contacts)
	case ".yaml", ".yml":
		return contactsYAML(contacts)
	case ".vcf":
		return contactsVCard(contacts)
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
}

func contactsCSV(contacts []E2EContact) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Name", "Phone", "Type"})
	for _, c := range contacts {
		_ = w.Write([]string{c.Name, c.Number, c.Type})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func contactsXlsx(contacts []E2EContact) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Phone", "Type"}); err != nil {
		return nil, err
	}
	for i, c := range contacts {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{c.Name, c.Number, c.Type}); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func odsRow(cells ...string) string {
	var b strings.Builder
	b.WriteString("<table:table-row>")
	for _, c := range cells {
		b.WriteString(`<table:table-cell office:value-type="string"><text:p>`)
		b.WriteString(html.EscapeString(c))
		b.WriteString("</text:p></table:table-cell>")
	}
	b.WriteString("</table:table-row>")
	return b.String()
}

func contactsOds(contacts []E2EContact) ([]byte, error) {
	var rows strings.Builder
	rows.WriteString(odsRow("Name", "Phone", "Type"))
	for _, c := range contacts {
		rows.WriteString(odsRow(c.Name, c.Number, c.Type))
	}
	contentXML := `<office:document-content><office:body><office:spreadsheet><table:table table:name="Contacts">` +
		rows.String() + `</table:table></office:spreadsheet></office:body></office:document-content>`
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("content.xml")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write([]byte(contentXML)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func contactsYAML(contacts []E2EContact) ([]byte, error) {
	doc := struct {
		Contacts []models.ContactInput `yaml:"contacts"`
	}{}
	for _, c := range contacts {
		doc.Contacts = append(doc.Contacts, models.ContactInput{DisplayName: c.Name, Number: c.Number, Type: c.Type})
	}
	return yaml.Marshal(doc)
}

var vcardTelTypes = map[string]string{"mobile": "CELL", "home": "HOME", "work": "WORK"}

// contactsVCard writes one card per contact name with all of its numbers.
func contactsVCard(contacts []E2EContact) ([]byte, error) {
	var buf bytes.Buffer
	enc := vcard.NewEncoder(&buf)
	for i := 0; i < len(contacts); {
		name := contacts[i].Name
		card := make(vcard.Card)
		card.SetValue(vcard.FieldVersion, "3.0")
		card.SetValue(vcard.FieldFormattedName, name)
		for ; i < len(contacts) && contacts[i].Name == name; i++ {
			card.Add(vcard.FieldTelephone, &vcard.Field{
				Value:  contacts[i].Number,
				Params: vcard.Params{vcard.ParamType: {vcardTelTypes[contacts[i].Type]}},
			})
		}
		if err := enc.Encode(card); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
