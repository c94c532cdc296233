package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"paper-sorts/storage"
)

// UpdateEntry ändert column in table für den Datensatz identifier auf value.
// Nicht editierbare Kombinationen werden abgewiesen, bevor eine SQL-Anweisung läuft.
func (c *Connector) UpdateEntry(ctx context.Context, column, value, table, identifier string) error {
	f, err := LookupField(table, column)
	if err != nil {
		c.log.Warn("Ungültige Spalte für Update", zap.String("table", table), zap.String("column", column))
		return err
	}
	return c.Update(ctx, f, identifier, value)
}

// Update setzt das Feld f des über identifier bestimmten Datensatzes.
//
//   - PaperTitle, PaperContents: identifier ist die numerische Paper-ID
//   - BibEntryText: identifier ist der Zitierschlüssel; der Text darf keinem anderen Schlüssel gehören
//   - AuthorName: identifier ist der aktuelle Name (oder die Autor-ID); existiert der neue Name
//     schon, werden beide Autoren zusammengeführt
func (c *Connector) Update(ctx context.Context, f Field, identifier, value string) error {
	def, ok := f.def()
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidColumn, f)
	}
	log := c.log.With(zap.Stringer("field", f), zap.String("identifier", identifier))

	var err error
	switch f {
	case PaperTitle, PaperContents:
		err = c.updatePaper(ctx, def, identifier, value)
	case BibEntryText:
		err = c.updateBib(ctx, def, identifier, value)
	case AuthorName:
		err = c.db.Transaction(ctx, func(tx *storage.DB) error {
			return renameAuthor(ctx, tx, log, identifier, value)
		})
	}
	if err != nil {
		log.Warn("Update fehlgeschlagen", zap.Error(err))
		return err
	}

	c.metrics.incUpdated()
	log.Info("Eintrag aktualisiert")
	return nil
}

func (c *Connector) updatePaper(ctx context.Context, def fieldDef, identifier, value string) error {
	id, err := strconv.ParseUint(strings.TrimSpace(identifier), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: paper id %q", ErrNotFound, identifier)
	}
	n, err := c.db.UpdateByID(ctx, def.stmt, id, value)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: paper id %d", ErrNotFound, id)
	}
	return nil
}

func (c *Connector) updateBib(ctx context.Context, def fieldDef, identifier, value string) error {
	var others []string
	if err := c.db.Query(ctx, &others, def.check, value, identifier); err != nil {
		return err
	}
	if len(others) > 0 {
		return fmt.Errorf("%w: entry text already used by %s", ErrDuplicateValue, others[0])
	}
	n, err := c.db.UpdateByID(ctx, def.stmt, identifier, value)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: bibtex id %q", ErrNotFound, identifier)
	}
	return nil
}

// renameAuthor benennt einen Autor um oder führt ihn mit dem bestehenden Autor gleichen Namens zusammen.
func renameAuthor(ctx context.Context, tx *storage.DB, log *zap.Logger, identifier, newName string) error {
	newName = NormalizeName(newName)
	if newName == "" {
		return fmt.Errorf("%w: author name must not be empty", ErrInvalidInput)
	}

	oldID, err := resolveAuthor(ctx, tx, identifier)
	if err != nil {
		return err
	}

	targetID, exists, err := findAuthorID(ctx, tx, newName)
	if err != nil {
		return err
	}
	switch {
	case exists && targetID == oldID:
		return nil
	case !exists:
		_, err := tx.UpdateByID(ctx, fieldDefs[AuthorName].stmt, oldID, newName)
		return err
	}

	log.Info("Autoren werden zusammengeführt", zap.Uint("from", oldID), zap.Uint("into", targetID))
	if _, err := tx.Exec(ctx, "UPDATE authors_papers SET author_id = ? WHERE author_id = ?", targetID, oldID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM authors_papers WHERE id NOT IN (
	SELECT MIN(id) FROM authors_papers GROUP BY author_id, paper_id)`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM authors_id WHERE id = ?", oldID); err != nil {
		return err
	}
	return deleteIfOrphan(ctx, tx, targetID)
}

// resolveAuthor sucht zuerst nach dem Namen, dann nach der numerischen ID.
func resolveAuthor(ctx context.Context, db *storage.DB, identifier string) (uint, error) {
	id, found, err := findAuthorID(ctx, db, NormalizeName(identifier))
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	if n, perr := strconv.ParseUint(strings.TrimSpace(identifier), 10, 64); perr == nil {
		var ids []uint
		if err := db.Query(ctx, &ids, "SELECT id FROM authors_id WHERE id = ?", n); err != nil {
			return 0, err
		}
		if len(ids) > 0 {
			return ids[0], nil
		}
	}
	return 0, fmt.Errorf("%w: author %q", ErrNotFound, identifier)
}
