package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"paper-sorts/models"
	"paper-sorts/storage"
)

// Connector ist die fachliche Schicht über dem Datenbank-Adapter.
// Er legt das Schema an und hält die Invarianten zwischen papers, bib,
// authors_id und authors_papers ein. Mehrstufige Operationen laufen
// jeweils in einer Transaktion.
type Connector struct {
	db      *storage.DB
	log     *zap.Logger
	metrics *Metrics
}

// NewConnector erstellt einen Connector. metrics darf nil sein.
func NewConnector(db *storage.DB, logger *zap.Logger, metrics *Metrics) *Connector {
	return &Connector{
		db:      db,
		log:     logger.With(zap.String("component", "connector")),
		metrics: metrics,
	}
}

// NewPaper enthält alles, was für das Anlegen einer Publikation nötig ist.
type NewPaper struct {
	BibtexID string
	Bibtex   string
	Title    string
	Contents string
	Authors  []string
}

// CreateTables legt die vier Tabellen an, falls sie fehlen.
func (c *Connector) CreateTables(ctx context.Context) error {
	if err := c.db.Migrate(ctx, &models.BibEntry{}, &models.Paper{}, &models.Author{}, &models.Authorship{}); err != nil {
		c.log.Error("Tabellen konnten nicht angelegt werden", zap.Error(err))
		return err
	}
	c.log.Info("Alle Tabellen angelegt")
	return nil
}

// AddPaper legt Bibliographie-Eintrag, Paper und Autorenschaften als eine Einheit an
// und liefert die erzeugte Paper-ID. Schlägt ein Schritt fehl, bleibt die Datenbank unverändert.
func (c *Connector) AddPaper(ctx context.Context, p NewPaper) (uint, error) {
	log := c.log.With(zap.String("bibtex_id", p.BibtexID), zap.String("title", p.Title))

	if strings.TrimSpace(p.BibtexID) == "" || strings.TrimSpace(p.Title) == "" {
		return 0, fmt.Errorf("%w: citation key and title are required", ErrInvalidInput)
	}

	var paperID uint
	var linked int
	err := c.db.Transaction(ctx, func(tx *storage.DB) error {
		if err := sanityCheck(ctx, tx, p.BibtexID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "INSERT INTO bib (bibtex_id, bibtex) VALUES (?, ?)", p.BibtexID, p.Bibtex); err != nil {
			return err
		}
		id, err := tx.InsertReturningID(ctx,
			"INSERT INTO papers (title, contents, bibtex_id) VALUES (?, ?, ?) RETURNING id",
			p.Title, p.Contents, p.BibtexID)
		if err != nil {
			return err
		}
		paperID = id

		seen := make(map[string]bool, len(p.Authors))
		for _, author := range p.Authors {
			name := NormalizeName(author)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			if err := linkAuthor(ctx, tx, name, paperID); err != nil {
				return err
			}
			linked++
			log.Debug("Autor verknüpft", zap.String("author", name))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			log.Info("Zitierschlüssel bereits vorhanden")
		} else {
			log.Error("Paper konnte nicht hinzugefügt werden", zap.Error(err))
		}
		return 0, err
	}

	c.metrics.incAdded()
	log.Info("Paper hinzugefügt", zap.Uint("paper_id", paperID), zap.Int("authors", linked))
	return paperID, nil
}

// KeyExists prüft, ob ein Zitierschlüssel bereits in der Tabelle bib steht.
func (c *Connector) KeyExists(ctx context.Context, bibtexID string) (bool, error) {
	return keyExists(ctx, c.db, bibtexID)
}

// ExportBibliography liefert alle Bibliographie-Einträge, sortiert nach Schlüssel.
func (c *Connector) ExportBibliography(ctx context.Context) ([]models.BibEntry, error) {
	var entries []models.BibEntry
	if err := c.db.Query(ctx, &entries, "SELECT bibtex_id, bibtex FROM bib ORDER BY bibtex_id"); err != nil {
		return nil, err
	}
	return entries, nil
}

func sanityCheck(ctx context.Context, db *storage.DB, bibtexID string) error {
	if !db.HasTable(ctx, "bib") || !db.HasTable(ctx, "papers") {
		return ErrSchemaMissing
	}
	exists, err := keyExists(ctx, db, bibtexID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, bibtexID)
	}
	return nil
}

func keyExists(ctx context.Context, db *storage.DB, bibtexID string) (bool, error) {
	var count int64
	if err := db.Query(ctx, &count, "SELECT COUNT(*) FROM bib WHERE bibtex_id = ?", bibtexID); err != nil {
		return false, err
	}
	return count > 0, nil
}

// findAuthorID sucht den Autor mit exakt diesem Namen; bei Dubletten gewinnt die kleinste ID.
func findAuthorID(ctx context.Context, db *storage.DB, name string) (uint, bool, error) {
	var ids []uint
	if err := db.Query(ctx, &ids, "SELECT id FROM authors_id WHERE author = ? ORDER BY id", name); err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// linkAuthor legt den Autor bei Bedarf an und verknüpft ihn mit dem Paper.
func linkAuthor(ctx context.Context, db *storage.DB, name string, paperID uint) error {
	authorID, found, err := findAuthorID(ctx, db, name)
	if err != nil {
		return err
	}
	if !found {
		authorID, err = db.InsertReturningID(ctx, "INSERT INTO authors_id (author) VALUES (?) RETURNING id", name)
		if err != nil {
			return err
		}
	}
	_, err = db.Exec(ctx, "INSERT INTO authors_papers (author_id, paper_id) VALUES (?, ?)", authorID, paperID)
	return err
}

// unlinkAuthor entfernt die Verknüpfung und löscht den Autor, wenn er danach kein Paper mehr hat.
func unlinkAuthor(ctx context.Context, db *storage.DB, authorID, paperID uint) error {
	if _, err := db.Exec(ctx, "DELETE FROM authors_papers WHERE author_id = ? AND paper_id = ?", authorID, paperID); err != nil {
		return err
	}
	return deleteIfOrphan(ctx, db, authorID)
}

func deleteIfOrphan(ctx context.Context, db *storage.DB, authorID uint) error {
	var links int64
	if err := db.Query(ctx, &links, "SELECT COUNT(*) FROM authors_papers WHERE author_id = ?", authorID); err != nil {
		return err
	}
	if links > 0 {
		return nil
	}
	_, err := db.Exec(ctx, "DELETE FROM authors_id WHERE id = ?", authorID)
	return err
}
