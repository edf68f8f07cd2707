// Package importer reads contact files (CSV, Excel, OpenDocument, YAML and
// vCard) into contact inputs ready for indexing.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/dialname/internal/models"
)

// Importer reads contacts from files.
type Importer struct{}

// NewImporter returns a new Importer.
func NewImporter() *Importer {
	return &Importer{}
}

// SupportedExtensions lists the file extensions Import understands.
func SupportedExtensions() []string {
	return []string{".csv", ".xlsx", ".ods", ".yaml", ".yml", ".vcf"}
}

// Supported reports whether path has an extension Import understands.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// Import reads the file at path and returns its contacts. Entries without a
// name or a number are dropped.
func (im *Importer) Import(path string) ([]*models.ContactInput, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return im.ImportBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ImportBytes parses content according to ext, which includes the leading dot.
func (im *Importer) ImportBytes(content []byte, ext string) ([]*models.ContactInput, error) {
	var (
		out []*models.ContactInput
		err error
	)
	switch ext {
	case ".csv":
		out, err = importCSV(cleanText(content))
	case ".xlsx":
		out, err = importExcel(content)
	case ".ods":
		out, err = importODS(content)
	case ".yaml", ".yml":
		out, err = importYAML(content)
	case ".vcf":
		out, err = importVCard(cleanText(content))
	default:
		return nil, fmt.Errorf("unsupported contact file type %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return compact(out), nil
}

// cleanText strips a UTF-8 byte order mark and replaces invalid sequences.
func cleanText(content []byte) string {
	s := strings.TrimPrefix(string(content), "\ufeff")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\ufffd")
	}
	return s
}

func compact(in []*models.ContactInput) []*models.ContactInput {
	out := make([]*models.ContactInput, 0, len(in))
	for _, c := range in {
		if c == nil {
			continue
		}
		c.DisplayName = strings.Join(strings.Fields(c.DisplayName), " ")
		c.Number = strings.TrimSpace(c.Number)
		c.Type = strings.TrimSpace(c.Type)
		c.Label = strings.TrimSpace(c.Label)
		if c.DisplayName == "" || c.Number == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
