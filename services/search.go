package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"paper-sorts/models"
)

// paperJoin liefert eine Zeile je (Paper, Autor), sortiert nach Paper und Reihenfolge der Verknüpfung.
// Papers ohne Autor erscheinen mit author = NULL.
const paperJoin = `SELECT authors_id.author AS author, papers.id AS paper_id, papers.title AS title,
	papers.bibtex_id AS bibtex_id, papers.contents AS contents
FROM papers
LEFT JOIN authors_papers ON authors_papers.paper_id = papers.id
LEFT JOIN authors_id ON authors_papers.author_id = authors_id.id
WHERE %s
ORDER BY papers.id, authors_papers.id`

type paperRow struct {
	Author   *string
	PaperID  uint
	Title    string
	BibtexID string
	Contents string
}

// foldByPaper fasst aufeinanderfolgende Zeilen desselben Papers zu einem Datensatz zusammen.
// Die Zeilen müssen nach paper_id sortiert sein.
func foldByPaper(rows []paperRow) []models.PaperRecord {
	var records []models.PaperRecord
	var authors []string
	flush := func(last paperRow) {
		records = append(records, models.PaperRecord{
			Authors:  JoinAuthors(authors),
			PaperID:  last.PaperID,
			Title:    last.Title,
			BibtexID: last.BibtexID,
			Contents: last.Contents,
		})
		authors = nil
	}
	for i, row := range rows {
		if i > 0 && row.PaperID != rows[i-1].PaperID {
			flush(rows[i-1])
		}
		if row.Author != nil {
			authors = append(authors, *row.Author)
		}
	}
	if len(rows) > 0 {
		flush(rows[len(rows)-1])
	}
	return records
}

// SearchByTitle sucht Papers mit exakt diesem Titel; ein Datensatz je Paper-ID.
func (c *Connector) SearchByTitle(ctx context.Context, title string) ([]models.PaperRecord, error) {
	var rows []paperRow
	if err := c.db.Query(ctx, &rows, fmt.Sprintf(paperJoin, "papers.title = ?"), title); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		c.log.Info("Paper nicht gefunden", zap.String("title", title))
		return nil, fmt.Errorf("%w: paper with title %q", ErrNotFound, title)
	}
	return foldByPaper(rows), nil
}

// SearchByAuthor liefert je Paper des Autors eine Zeile; jede enthält nur diesen einen Autor.
// PaperByID ergänzt für einen Treffer die vollständige Autorenliste.
func (c *Connector) SearchByAuthor(ctx context.Context, author string) ([]models.AuthorHit, error) {
	var hits []models.AuthorHit
	err := c.db.Query(ctx, &hits, `SELECT authors_id.id AS author_id, authors_id.author AS author,
	papers.id AS paper_id, papers.title AS title, papers.bibtex_id AS bibtex_id, papers.contents AS contents
FROM authors_id
INNER JOIN authors_papers ON authors_papers.author_id = authors_id.id
INNER JOIN papers ON authors_papers.paper_id = papers.id
WHERE authors_id.author = ?
ORDER BY papers.id`, NormalizeName(author))
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		c.log.Info("Autor nicht gefunden", zap.String("author", author))
		return nil, fmt.Errorf("%w: author %q", ErrNotFound, author)
	}
	return hits, nil
}

// PaperByID lädt ein Paper mit allen Autoren.
func (c *Connector) PaperByID(ctx context.Context, paperID uint) (models.PaperRecord, error) {
	var rows []paperRow
	if err := c.db.Query(ctx, &rows, fmt.Sprintf(paperJoin, "papers.id = ?"), paperID); err != nil {
		return models.PaperRecord{}, err
	}
	if len(rows) == 0 {
		return models.PaperRecord{}, fmt.Errorf("%w: paper id %d", ErrNotFound, paperID)
	}
	return foldByPaper(rows)[0], nil
}

// BibEntry lädt den Bibliographie-Eintrag zu einem Zitierschlüssel.
func (c *Connector) BibEntry(ctx context.Context, bibtexID string) (models.BibEntry, error) {
	var entries []models.BibEntry
	if err := c.db.Query(ctx, &entries, "SELECT bibtex_id, bibtex FROM bib WHERE bibtex_id = ?", bibtexID); err != nil {
		return models.BibEntry{}, err
	}
	if len(entries) == 0 {
		return models.BibEntry{}, fmt.Errorf("%w: bibtex id %q", ErrNotFound, bibtexID)
	}
	return entries[0], nil
}
