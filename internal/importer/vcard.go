package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime/quotedprintable"
	"strings"

	"github.com/emersion/go-vcard"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/hyperjump/dialname/internal/models"
)

// fieldABLabel is the Apple custom label attached to a grouped TEL.
const fieldABLabel = "X-ABLABEL"

// splitContentLine splits a raw content line at the first colon outside a
// quoted parameter value.
func splitContentLine(line string) (head, value string, ok bool) {
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ':':
			if !quoted {
				return line[:i], line[i+1:], true
			}
		}
	}
	return "", "", false
}

// decodeCharset converts b from the named charset to UTF-8. Unknown charsets
// pass through unchanged.
func decodeCharset(b []byte, charset string) string {
	if charset == "" {
		return string(b)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(b)
	}
	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// legacyLine rewrites a vCard 2.1 content line into the 3.0 form: bare
// parameters become TYPE=..., and a QUOTED-PRINTABLE value is decoded using
// its CHARSET.
func legacyLine(line string) string {
	head, value, ok := splitContentLine(line)
	if !ok {
		return line
	}
	parts := strings.Split(head, ";")
	kept := parts[:1]
	var qp bool
	var charset string
	for _, param := range parts[1:] {
		key, val, found := strings.Cut(param, "=")
		switch {
		case !found:
			if strings.EqualFold(param, "QUOTED-PRINTABLE") {
				qp = true
				continue
			}
			kept = append(kept, "TYPE="+param)
		case strings.EqualFold(key, "ENCODING") && strings.EqualFold(val, "QUOTED-PRINTABLE"):
			qp = true
		case strings.EqualFold(key, "CHARSET"):
			charset = strings.Trim(val, `"`)
		default:
			kept = append(kept, param)
		}
	}
	if qp {
		decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(value)))
		if err == nil {
			value = decodeCharset(decoded, charset)
		}
		value = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\n`).Replace(value)
	} else if charset != "" {
		value = decodeCharset([]byte(value), charset)
	}
	return strings.Join(kept, ";") + ":" + value
}

// isQuotedPrintable reports whether a content line head declares QP encoding.
func isQuotedPrintable(line string) bool {
	head, _, ok := splitContentLine(line)
	return ok && strings.Contains(strings.ToUpper(head), "QUOTED-PRINTABLE")
}

// prepareVCard unfolds content lines, joins quoted-printable soft line breaks
// and rewrites vCard 2.1 lines so the decoder sees plain 3.0 cards.
func prepareVCard(content string) string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	softBreak := false
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		n := len(lines)
		switch {
		case softBreak && n > 0:
			lines[n-1] = strings.TrimSuffix(lines[n-1], "=") + line
		case (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && n > 0:
			lines[n-1] += line[1:]
		case strings.TrimSpace(line) == "":
			softBreak = false
			continue
		default:
			lines = append(lines, line)
		}
		last := lines[len(lines)-1]
		softBreak = strings.HasSuffix(last, "=") && isQuotedPrintable(last)
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(legacyLine(line))
		b.WriteString("\r\n")
	}
	return b.String()
}

// splitStructured splits a structured value such as N on semicolons that are
// not escaped.
func splitStructured(value string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\\' && i+1 < len(value) {
			cur.WriteByte(c)
			cur.WriteByte(value[i+1])
			i++
			continue
		}
		if c == ';' {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	return append(out, cur.String())
}

var textUnescaper = strings.NewReplacer(`\;`, ";", `\,`, ",", `\n`, " ", `\N`, " ", `\\`, `\`, "\n", " ")

func unescapeText(s string) string {
	return strings.TrimSpace(textUnescaper.Replace(s))
}

// cardName returns FN, or "Given Family" from N when FN is absent.
func cardName(card vcard.Card) string {
	if fn := unescapeText(card.Value(vcard.FieldFormattedName)); fn != "" {
		return fn
	}
	n := card.Get(vcard.FieldName)
	if n == nil {
		return ""
	}
	// N:Family;Given;Additional;Prefix;Suffix
	parts := splitStructured(n.Value)
	family := unescapeText(parts[0])
	var given string
	if len(parts) > 1 {
		given = unescapeText(parts[1])
	}
	return strings.TrimSpace(given + " " + family)
}

// telType maps vCard TEL types to an import type label.
func telType(types []string) string {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		for _, v := range strings.Split(strings.Trim(t, `"`), ",") {
			set[strings.ToLower(strings.TrimSpace(v))] = true
		}
	}
	switch {
	case set["fax"] && set["home"]:
		return "home fax"
	case set["fax"]:
		return "work fax"
	case set["cell"]:
		return "mobile"
	case set["pager"]:
		return "pager"
	case set["main"]:
		return "main"
	case set["work"]:
		return "work"
	case set["home"]:
		return "home"
	case set["other"]:
		return "other"
	}
	return ""
}

// cardContacts returns one input per TEL of card. An Apple-style X-ABLABEL in
// the same group as a TEL replaces its type.
func cardContacts(card vcard.Card) []*models.ContactInput {
	name := cardName(card)
	labels := make(map[string]string)
	for _, f := range card[fieldABLabel] {
		if f.Group == "" {
			continue
		}
		label := strings.TrimSuffix(strings.TrimPrefix(unescapeText(f.Value), "_$!<"), ">!$_")
		labels[strings.ToLower(f.Group)] = label
	}

	var out []*models.ContactInput
	for _, f := range card[vcard.FieldTelephone] {
		c := &models.ContactInput{
			DisplayName: name,
			Number:      strings.TrimPrefix(unescapeText(f.Value), "tel:"),
			Type:        telType(f.Params.Types()),
		}
		if l, ok := labels[strings.ToLower(f.Group)]; ok && f.Group != "" {
			c.Type = l
		}
		out = append(out, c)
	}
	return out
}

// importVCard reads every card in content.
func importVCard(content string) ([]*models.ContactInput, error) {
	var out []*models.ContactInput
	dec := vcard.NewDecoder(strings.NewReader(prepareVCard(content)))
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse vCard: %w", err)
		}
		out = append(out, cardContacts(card)...)
	}
	return out, nil
}
