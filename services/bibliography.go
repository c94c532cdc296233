package services

import (
	"fmt"
	"strings"

	"paper-sorts/models"
)

// FormatReference renders a record as a compact one-line reference.
func FormatReference(rec models.PaperRecord) string {
	authors := rec.Authors
	if authors == "" {
		authors = "Unknown Authors"
	}
	title := rec.Title
	if title == "" {
		title = "Untitled"
	}
	return fmt.Sprintf("%s. %s. [%s]", authors, title, rec.BibtexID)
}

// FormatRecord gibt ein Suchergebnis mit Bibliographie-Eintrag als Klartext aus.
func FormatRecord(rec models.PaperRecord, bib models.BibEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:     %s\n", rec.Title)
	fmt.Fprintf(&b, "Authors:   %s\n", rec.Authors)
	fmt.Fprintf(&b, "Summary:   %s\n", rec.Contents)
	fmt.Fprintf(&b, "Bib entry:\n%s\n", strings.TrimRight(bib.Bibtex, "\n"))
	return b.String()
}

// BuildBibliography verbindet alle Einträge zu einem .bib-Dokument, getrennt durch Leerzeilen.
func BuildBibliography(entries []models.BibEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimRight(e.Bibtex, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
