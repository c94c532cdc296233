// Package bibtex liest .bib-Dateien und bringt Einträge in eine kanonische Textform.
package bibtex

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	nbib "github.com/nickng/bibtex"
	"golang.org/x/text/unicode/norm"
)

// ErrNotSingle wird von ParseSingle geliefert, wenn die Datei nicht genau einen Eintrag enthält.
var ErrNotSingle = errors.New("bib file must contain exactly one entry")

// Entry ist ein geparster Bibliographie-Eintrag.
type Entry struct {
	Key     string
	Title   string
	Authors []string
	// Text ist der Eintrag als BibTeX mit author und title zuerst, dann alphabetisch.
	Text string
}

// Parse liest alle Einträge aus r in Dateireihenfolge.
func Parse(r io.Reader) ([]Entry, error) {
	parsed, err := nbib.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bibtex: %w", err)
	}
	entries := make([]Entry, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		entries = append(entries, convert(e))
	}
	return entries, nil
}

// ParseSingle liest eine Datei mit genau einem Eintrag.
func ParseSingle(r io.Reader) (Entry, error) {
	entries, err := Parse(r)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) != 1 {
		return Entry{}, fmt.Errorf("%w: found %d", ErrNotSingle, len(entries))
	}
	return entries[0], nil
}

func convert(e *nbib.BibEntry) Entry {
	fields := make(map[string]string, len(e.Fields))
	for name, value := range e.Fields {
		if value == nil {
			continue
		}
		fields[strings.ToLower(name)] = strings.TrimSpace(value.String())
	}
	return Entry{
		Key:     e.CiteName,
		Title:   collapse(stripBraces(fields["title"])),
		Authors: Authors(fields["author"]),
		Text:    render(strings.ToLower(e.Type), e.CiteName, fields),
	}
}

func render(typ, key string, fields map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s", typ, key)
	write := func(name string) {
		if v := fields[name]; v != "" {
			fmt.Fprintf(&b, ",\n  %s = {%s}", name, v)
		}
	}
	write("author")
	write("title")
	rest := make([]string, 0, len(fields))
	for name := range fields {
		if name != "author" && name != "title" {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		write(name)
	}
	b.WriteString("\n}\n")
	return b.String()
}

// Authors zerlegt ein author-Feld an " and " (außerhalb von Klammern)
// und liefert jeden Namen als "Nachname, Vorname" mit nur dem ersten Vornamen.
func Authors(field string) []string {
	var out []string
	for _, part := range splitTopLevel(field, " and ") {
		if name := FormatName(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// FormatName akzeptiert "Nachname, Vornamen" oder "Vornamen Nachname".
func FormatName(name string) string {
	name = collapse(stripBraces(norm.NFC.String(name)))
	if name == "" {
		return ""
	}
	var family, given string
	if i := strings.Index(name, ","); i >= 0 {
		family = strings.TrimSpace(name[:i])
		given = strings.TrimSpace(name[i+1:])
	} else {
		parts := strings.Fields(name)
		family = parts[len(parts)-1]
		given = strings.Join(parts[:len(parts)-1], " ")
	}
	if first := strings.Fields(given); len(first) > 0 {
		return family + ", " + first[0]
	}
	return family
}

func splitTopLevel(s, sep string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && strings.HasPrefix(s[i:], sep) {
				parts = append(parts, s[start:i])
				start = i + len(sep)
				i += len(sep) - 1
			}
		}
	}
	return append(parts, s[start:])
}

func stripBraces(s string) string {
	return strings.NewReplacer("{", "", "}", "").Replace(s)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
