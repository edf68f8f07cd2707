// Package cli provides output formatting for the dialname command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/dialname/internal/contacts"
	"github.com/hyperjump/dialname/internal/indexer"
	"github.com/hyperjump/dialname/internal/models"
	"github.com/hyperjump/dialname/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result, for scripts and shells.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// Column widths for contact tables.
const (
	nameWidth   = 28
	numberWidth = 18
	labelWidth  = 10
)

// ParseFormat validates an output format name. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, m := range response.Matches {
			fmt.Fprintf(w, "%.2f\t%s\t%s\n", m.Score, m.Name, m.PrimaryNumber())
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d matches for %q in %dms\n", response.Total, response.Query, response.QueryTime)
	if response.AlternateQuery != "" {
		fmt.Fprintf(w, "(also tried %q)\n", response.AlternateQuery)
	}
	fmt.Fprintln(w)
	for i, m := range response.Matches {
		fmt.Fprintf(w, "%d. %s  [%.2f]\n", i+1, m.Name, m.Score)
		for _, n := range m.PhoneNumbers {
			label := n.Label
			if label == "" {
				label = "-"
			}
			fmt.Fprintf(w, "     %s %s\n", utils.FitColumn(label, labelWidth), contacts.FormatNumber(n.Number))
		}
	}
	if len(response.Matches) == 0 && len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(response.Suggestions, ", "))
	}
}

// WriteLookup writes a reverse lookup result.
func WriteLookup(w io.Writer, response *models.LookupResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		fmt.Fprintln(w, response.DisplayName)
		return nil
	default:
		if response.Found {
			fmt.Fprintf(w, "%s: %s\n", contacts.FormatNumber(response.Number), response.Name)
		} else {
			fmt.Fprintf(w, "%s: no contact\n", contacts.FormatNumber(response.Number))
		}
		return nil
	}
}

// WriteContacts writes a contact table.
func WriteContacts(w io.Writer, list []*models.ContactRecord, total int64, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if list == nil {
			list = []*models.ContactRecord{}
		}
		return writeJSON(w, map[string]interface{}{"contacts": list, "total": total})
	case OutputCompact:
		for _, c := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.DisplayName, c.Number)
		}
		return nil
	default:
		fmt.Fprintf(w, "%s %s %s %s\n",
			utils.FitColumn("NAME", nameWidth), utils.FitColumn("NUMBER", numberWidth),
			utils.FitColumn("TYPE", labelWidth), "ID")
		for _, c := range list {
			label := contacts.TypeLabel(contacts.PhoneType(c.Type), c.Label)
			fmt.Fprintf(w, "%s %s %s %s\n",
				utils.FitColumn(c.DisplayName, nameWidth),
				utils.FitColumn(contacts.FormatNumber(c.Number), numberWidth),
				utils.FitColumn(label, labelWidth),
				c.ID)
		}
		fmt.Fprintf(w, "\n%d of %d contacts\n", len(list), total)
		return nil
	}
}

// WriteImportResults summarizes imported files.
func WriteImportResults(w io.Writer, results []indexer.ImportResult, format OutputFormat) error {
	if format == OutputJSON {
		if results == nil {
			results = []indexer.ImportResult{}
		}
		return writeJSON(w, results)
	}
	var imported, invalid, skipped int
	for _, r := range results {
		if r.Skipped {
			skipped++
		} else {
			imported += r.Contacts
		}
		invalid += r.Invalid
		if format == OutputCompact {
			fmt.Fprintf(w, "%s\t%d\t%d\t%t\n", r.Path, r.Contacts, r.Invalid, r.Skipped)
		}
	}
	if format != OutputCompact {
		fmt.Fprintf(w, "Imported %d contacts from %d files (%d unchanged files skipped, %d invalid rows)\n",
			imported, len(results)-skipped, skipped, invalid)
	}
	return nil
}

// Truncate truncates s to maxLen characters and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	return utils.Truncate(s, maxLen)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
