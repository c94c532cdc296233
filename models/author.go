package models

// Author ist ein Autor, identifiziert über seinen Anzeigenamen (z.B. "Lee, Ann").
type Author struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"author" gorm:"column:author;type:text"`
}

// TableName gibt explizit den Tabellennamen an.
func (Author) TableName() string {
	return "authors_id"
}

// Authorship verknüpft einen Autor mit einem Paper (n:m).
type Authorship struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	AuthorID uint `json:"author_id"`
	PaperID  uint `json:"paper_id"`
}

// TableName gibt explizit den Tabellennamen an.
func (Authorship) TableName() string {
	return "authors_papers"
}
