package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"paper-sorts/models"
	"paper-sorts/providers"
	"paper-sorts/providers/bibtex"
	"paper-sorts/providers/latex"
)

// Loader übernimmt eine Literaturübersicht (Titel -> Eintrag) in die Datenbank.
type Loader struct {
	conn *Connector
	log  *zap.Logger
}

// LoadReport zählt übernommene und übersprungene Einträge.
type LoadReport struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

func NewLoader(conn *Connector, logger *zap.Logger) *Loader {
	return &Loader{conn: conn, log: logger.With(zap.String("component", "loader"))}
}

// Load legt zuerst die Tabellen an und fügt dann jeden Eintrag hinzu.
// Einträge ohne Zitierschlüssel oder mit bereits vorhandenem Schlüssel werden übersprungen;
// jeder andere Fehler bricht den Lauf ab.
func (l *Loader) Load(ctx context.Context, entries map[string]models.LiteratureEntry) (LoadReport, error) {
	var report LoadReport
	if err := l.conn.CreateTables(ctx); err != nil {
		return report, fmt.Errorf("create tables: %w", err)
	}

	titles := make([]string, 0, len(entries))
	for title := range entries {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		entry := entries[title]
		if strings.TrimSpace(entry.BibtexID) == "" {
			l.log.Warn("Eintrag ohne Zitierschlüssel übersprungen", zap.String("title", title))
			report.Skipped++
			l.conn.metrics.incSkipped()
			continue
		}
		// bib.bibtex ist UNIQUE; mehrere leere Texte würden kollidieren.
		if strings.TrimSpace(entry.Bibtex) == "" {
			l.log.Warn("Kein BibTeX-Eintrag zum Schlüssel, übersprungen",
				zap.String("title", title), zap.String("bibtex_id", entry.BibtexID))
			report.Skipped++
			l.conn.metrics.incSkipped()
			continue
		}

		_, err := l.conn.AddPaper(ctx, NewPaper{
			BibtexID: entry.BibtexID,
			Bibtex:   entry.Bibtex,
			Title:    title,
			Contents: entry.Contents,
			Authors:  entry.Authors,
		})
		switch {
		case err == nil:
			report.Added++
		case errors.Is(err, ErrDuplicateKey):
			l.log.Info("Eintrag existiert bereits", zap.String("bibtex_id", entry.BibtexID))
			report.Skipped++
			l.conn.metrics.incSkipped()
		default:
			return report, fmt.Errorf("add %q: %w", entry.BibtexID, err)
		}
	}

	l.log.Info("Literatur übernommen", zap.Int("added", report.Added), zap.Int("skipped", report.Skipped))
	return report, nil
}

// LoadFiles liest Literaturübersicht (.tex) und Bibliographie (.bib) und übernimmt sie.
func (l *Loader) LoadFiles(ctx context.Context, texPath, bibPath string) (LoadReport, error) {
	texFile, err := os.Open(texPath)
	if err != nil {
		return LoadReport{}, fmt.Errorf("open literature file: %w", err)
	}
	defer texFile.Close()

	items, err := latex.Parse(texFile)
	if err != nil {
		return LoadReport{}, fmt.Errorf("parse %s: %w", texPath, err)
	}

	bibFile, err := os.Open(bibPath)
	if err != nil {
		return LoadReport{}, fmt.Errorf("open bib file: %w", err)
	}
	defer bibFile.Close()

	bibEntries, err := bibtex.Parse(bibFile)
	if err != nil {
		return LoadReport{}, fmt.Errorf("parse %s: %w", bibPath, err)
	}

	l.log.Info("Literaturdateien gelesen",
		zap.String("literature_file", texPath),
		zap.Int("items", len(items)),
		zap.String("bib_file", bibPath),
		zap.Int("bib_entries", len(bibEntries)))

	return l.Load(ctx, providers.Merge(items, bibEntries))
}
