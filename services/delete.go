package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"paper-sorts/storage"
)

type paperKey struct {
	ID       uint
	BibtexID string
}

// DeletePaper entfernt das Paper mit diesem Titel samt Bibliographie-Eintrag.
// Zuerst werden die Autorenschaften der genannten Autoren gelöst und verwaiste Autoren gelöscht,
// danach alle übrigen Verknüpfungen des Papers, dann Paper und bib-Zeile.
func (c *Connector) DeletePaper(ctx context.Context, title string, authors []string) error {
	log := c.log.With(zap.String("title", title))

	err := c.db.Transaction(ctx, func(tx *storage.DB) error {
		var papers []paperKey
		if err := tx.Query(ctx, &papers, "SELECT id, bibtex_id FROM papers WHERE title = ? ORDER BY id", title); err != nil {
			return err
		}
		if len(papers) == 0 {
			return fmt.Errorf("%w: paper with title %q", ErrNotFound, title)
		}
		paper := papers[0]

		for _, author := range authors {
			authorID, found, err := findAuthorID(ctx, tx, NormalizeName(author))
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			if err := unlinkAuthor(ctx, tx, authorID, paper.ID); err != nil {
				return err
			}
			log.Debug("Autorenschaft gelöscht", zap.String("author", author))
		}

		var remaining []uint
		if err := tx.Query(ctx, &remaining, "SELECT DISTINCT author_id FROM authors_papers WHERE paper_id = ?", paper.ID); err != nil {
			return err
		}
		for _, authorID := range remaining {
			if err := unlinkAuthor(ctx, tx, authorID, paper.ID); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, "DELETE FROM papers WHERE id = ?", paper.ID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "DELETE FROM bib WHERE bibtex_id = ?", paper.BibtexID)
		return err
	})
	if err != nil {
		log.Warn("Paper konnte nicht gelöscht werden", zap.Error(err))
		return err
	}

	c.metrics.incDeleted()
	log.Info("Paper gelöscht")
	return nil
}
