package services

import "errors"

// Fachliche Fehler des Connectors. Speicherfehler bleiben *storage.Error.
var (
	// ErrDuplicateKey: der Zitierschlüssel ist bereits vergeben.
	ErrDuplicateKey = errors.New("citation key already exists")
	// ErrDuplicateValue: der BibTeX-Text gehört bereits zu einem anderen Schlüssel.
	ErrDuplicateValue = errors.New("bibliography entry already exists under another key")
	// ErrNotFound: eine Suche nach Titel, Autor oder ID lieferte keine Zeile.
	ErrNotFound = errors.New("not found")
	// ErrInvalidColumn: die (Tabelle, Spalte)-Kombination ist nicht editierbar.
	ErrInvalidColumn = errors.New("column cannot be updated")
	// ErrSchemaMissing: die Tabellen wurden noch nicht angelegt.
	ErrSchemaMissing = errors.New("database schema missing")
	// ErrInvalidInput: Pflichtangaben fehlen.
	ErrInvalidInput = errors.New("invalid input")
)
