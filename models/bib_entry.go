package models

// BibEntry speichert den vollständigen BibTeX-Eintrag unter seinem Zitierschlüssel.
// Der Eintragstext ist tabellenweit eindeutig.
type BibEntry struct {
	BibtexID string `json:"bibtex_id" gorm:"column:bibtex_id;type:text;primaryKey"`
	Bibtex   string `json:"bibtex" gorm:"column:bibtex;type:text;uniqueIndex"`
}

// TableName gibt explizit den Tabellennamen an.
func (BibEntry) TableName() string {
	return "bib"
}
