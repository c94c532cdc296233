package services

import (
	"fmt"
	"strings"
)

// Field ist eine editierbare (Tabelle, Spalte)-Kombination. Andere Spalten lassen sich nicht ändern.
type Field int

const (
	PaperTitle Field = iota + 1
	PaperContents
	AuthorName
	BibEntryText
)

type fieldDef struct {
	table  string
	column string
	stmt   string
	// check sucht eine Kollision mit einem anderen Datensatz; gebunden wird (newValue, identifier).
	check string
}

var fieldDefs = map[Field]fieldDef{
	PaperTitle: {
		table:  "papers",
		column: "title",
		stmt:   "UPDATE papers SET title = ? WHERE id = ?",
	},
	PaperContents: {
		table:  "papers",
		column: "contents",
		stmt:   "UPDATE papers SET contents = ? WHERE id = ?",
	},
	AuthorName: {
		table:  "authors_id",
		column: "author",
		stmt:   "UPDATE authors_id SET author = ? WHERE id = ?",
	},
	BibEntryText: {
		table:  "bib",
		column: "bibtex",
		stmt:   "UPDATE bib SET bibtex = ? WHERE bibtex_id = ?",
		check:  "SELECT bibtex_id FROM bib WHERE bibtex = ? AND bibtex_id <> ?",
	},
}

// LookupField liefert das Feld zu table und column.
// Schlüsselspalten (alles mit "_id"), die Verknüpfungstabelle und unbekannte Paare sind nicht editierbar.
func LookupField(table, column string) (Field, error) {
	if strings.Contains(column, "_id") || table == "authors_papers" {
		return 0, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, table, column)
	}
	for f, def := range fieldDefs {
		if def.table == table && def.column == column {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, table, column)
}

// Fields listet alle editierbaren Felder in fester Reihenfolge.
func Fields() []Field {
	return []Field{PaperTitle, PaperContents, AuthorName, BibEntryText}
}

func (f Field) def() (fieldDef, bool) {
	def, ok := fieldDefs[f]
	return def, ok
}

func (f Field) Table() string  { return fieldDefs[f].table }
func (f Field) Column() string { return fieldDefs[f].column }

func (f Field) String() string {
	def, ok := f.def()
	if !ok {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return def.table + "." + def.column
}
