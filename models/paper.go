package models

// Paper repräsentiert eine Publikation mit Kurzfassung; bibtex_id verweist auf den Bibliographie-Eintrag.
type Paper struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Title    string `json:"title" gorm:"type:text"`
	Contents string `json:"contents" gorm:"type:text"`
	BibKey   string `json:"bibtex_id" gorm:"column:bibtex_id;type:text;not null;index"`

	Bib BibEntry `json:"-" gorm:"foreignKey:BibKey;references:BibtexID"`
}

// TableName gibt explizit den Tabellennamen an.
func (Paper) TableName() string {
	return "papers"
}
