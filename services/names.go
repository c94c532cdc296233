package services

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AuthorSeparator verbindet mehrere Autorennamen in Suchergebnissen.
const AuthorSeparator = " and "

// NormalizeName bringt einen Namen in NFC-Form und fasst Leerraum zusammen,
// damit "Lee,  Ann" und "Lee, Ann" als derselbe Autor gelten.
func NormalizeName(name string) string {
	normalized, _, err := transform.String(norm.NFC, name)
	if err != nil {
		normalized = name
	}
	return strings.Join(strings.Fields(normalized), " ")
}

// JoinAuthors verbindet Namen in gegebener Reihenfolge mit " and ".
func JoinAuthors(names []string) string {
	return strings.Join(names, AuthorSeparator)
}

// SplitAuthors zerlegt eine Autorenliste aus der Eingabe.
// Enthält sie ";" oder " and ", wird daran getrennt, sonst am Komma.
// So bleiben Namen der Form "Nachname, Vorname" erhalten, solange sie mit ";" oder " and " getrennt sind.
func SplitAuthors(list string) []string {
	var parts []string
	switch {
	case strings.Contains(list, ";"):
		parts = strings.Split(list, ";")
	case strings.Contains(list, AuthorSeparator):
		parts = strings.Split(list, AuthorSeparator)
	default:
		parts = strings.Split(list, ",")
	}
	var names []string
	for _, p := range parts {
		if n := NormalizeName(p); n != "" {
			names = append(names, n)
		}
	}
	return names
}
