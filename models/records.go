package models

// PaperRecord ist ein Suchergebnis: ein Paper mit allen Autoren, verbunden durch " and ".
type PaperRecord struct {
	Authors  string `json:"authors"`
	PaperID  uint   `json:"paper_id"`
	Title    string `json:"title"`
	BibtexID string `json:"bibtex_id"`
	Contents string `json:"contents"`
}

// AuthorHit ist eine Zeile der Autorensuche; sie enthält nur den gesuchten Autor.
type AuthorHit struct {
	AuthorID uint   `json:"author_id"`
	Author   string `json:"author"`
	PaperID  uint   `json:"paper_id"`
	Title    string `json:"title"`
	BibtexID string `json:"bibtex_id"`
	Contents string `json:"contents"`
}

// LiteratureEntry beschreibt ein Paper aus der Literaturübersicht (LaTeX + BibTeX).
type LiteratureEntry struct {
	BibtexID string   `json:"bibtex_id"`
	Authors  []string `json:"authors"`
	Bibtex   string   `json:"bibtex"`
	Contents string   `json:"contents"`
}
