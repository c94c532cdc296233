// Package providers führt die Quellen einer Literaturübersicht zusammen.
package providers

import (
	"paper-sorts/models"
	"paper-sorts/providers/bibtex"
	"paper-sorts/providers/latex"
)

// Merge ordnet jedem Titel der Literaturübersicht Zitierschlüssel, Beschreibung,
// Autoren und BibTeX-Text zu. Fehlt der Schlüssel in der .bib-Datei,
// bleiben Autoren und BibTeX-Text leer. Bei doppelten Titeln gewinnt der letzte Eintrag.
func Merge(items []latex.Item, entries []bibtex.Entry) map[string]models.LiteratureEntry {
	byKey := make(map[string]bibtex.Entry, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}

	out := make(map[string]models.LiteratureEntry, len(items))
	for _, item := range items {
		le := models.LiteratureEntry{
			BibtexID: item.Key,
			Contents: item.Description,
		}
		if e, ok := byKey[item.Key]; ok {
			le.Authors = e.Authors
			le.Bibtex = e.Text
		}
		out[item.Title] = le
	}
	return out
}
