package utils

import (
	"regexp"
	"strings"
)

// urlPattern matches bare domains and URLs. The top-level label must be
// letters so numbers like "3.14" are left alone.
var urlPattern = regexp.MustCompile(`(?i)(https?://)?([\w-]+\.)+[a-z]{2,}(/\S*)?`)

// spokenDomains are read by name alone.
var spokenDomains = map[string]string{
	"gmail.com":   "gmail",
	"yahoo.com":   "yahoo",
	"outlook.com": "outlook",
}

// NormalizeForSpeech rewrites text so a speech synthesizer reads it naturally.
// URLs collapse to their registered domain ("developers.google.com/x" becomes
// "google dot com URL").
func NormalizeForSpeech(text string) string {
	return urlPattern.ReplaceAllStringFunc(text, spokenURL)
}

func spokenURL(url string) string {
	rest := url
	lower := strings.ToLower(rest)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			rest = rest[len(scheme):]
			break
		}
	}
	hasWWW := strings.HasPrefix(strings.ToLower(rest), "www.")
	if hasWWW {
		rest = rest[len("www."):]
	}

	domain, path, hasSlash := strings.Cut(rest, "/")
	hasPath := hasSlash && path != ""
	labels := strings.Split(domain, ".")
	hasSubdomain := len(labels) > 2 && !hasWWW
	isComplex := hasPath || hasSubdomain || strings.ContainsAny(path, "?#")

	registered := domain
	if len(labels) >= 2 {
		registered = labels[len(labels)-2] + "." + labels[len(labels)-1]
	}
	registered = strings.ToLower(registered)

	spoken, ok := spokenDomains[registered]
	if !ok {
		spoken = strings.ReplaceAll(registered, ".", " dot ")
	}
	if isComplex {
		return spoken + " URL"
	}
	return spoken
}
