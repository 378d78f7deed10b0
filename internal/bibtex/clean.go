// Package bibtex normalizes scraped publications and reads and writes the
// bibliography file they end up in.
package bibtex

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)

// Clean prepares free text for a braced BibTeX value: braces are dropped and
// whitespace runs collapse to a single space. Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.NewReplacer("{", "", "}", "").Replace(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// FormatAuthorName turns "Farnaz Heidar-Zadeh" into "Heidar-Zadeh, Farnaz".
// Single-word names are returned as they are.
func FormatAuthorName(name string) string {
	name = strings.TrimSpace(strings.NewReplacer("*", "", "†", "").Replace(name))
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	last := parts[len(parts)-1]
	return last + ", " + strings.Join(parts[:len(parts)-1], " ")
}

var andRe = regexp.MustCompile(`(?i)\s+and\s+`)

// FormatAuthors converts Scholar's author line into BibTeX's "A and B" form.
// The list is split on commas when there are any, otherwise on "and".
func FormatAuthors(raw string) string {
	raw = Clean(raw)
	if raw == "" {
		return ""
	}

	var names []string
	if strings.Contains(raw, ",") {
		names = strings.Split(raw, ",")
	} else {
		names = andRe.Split(raw, -1)
	}

	formatted := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || strings.Trim(name, ".…") == "" {
			continue
		}
		if f := FormatAuthorName(name); f != "" {
			formatted = append(formatted, f)
		}
	}
	return strings.Join(formatted, " and ")
}

// keyWords returns the first n words of title with everything but letters,
// digits and spaces removed.
func keyWords(title string, n int) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, title)
	words := strings.Fields(stripped)
	if len(words) > n {
		words = words[:n]
	}
	return words
}
