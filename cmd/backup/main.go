package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"paper-sorts/config"
	"paper-sorts/models"
	"paper-sorts/services"
	"paper-sorts/storage"
)

const backupPrefix = "bibliography-"

type exporter interface {
	ExportBibliography(ctx context.Context) ([]models.BibEntry, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	logging, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	if err := cfg.ValidateBackup(); err != nil {
		logging.Fatal("Backup-Konfiguration unvollständig", zap.Error(err))
	}

	ctx := context.Background()
	db, err := storage.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Datenbankverbindung fehlgeschlagen", zap.Error(err))
	}
	defer db.Close()

	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	conn := services.NewConnector(db, logging, nil)
	if err := runBackup(ctx, cfg, conn, s3Client, logging, time.Now()); err != nil {
		logging.Error("Backup fehlgeschlagen", zap.Error(err))
		os.Exit(1)
	}
}

// runBackup exportiert alle Bibliographie-Einträge als gzip-komprimierte .bib-Datei,
// lädt sie hoch und rotiert alte Exporte.
func runBackup(ctx context.Context, cfg *config.Config, conn exporter, client storage.ObjectAPI, logging *zap.Logger, now time.Time) error {
	logging.Info("Starte Backup-Prozess...")

	entries, err := conn.ExportBibliography(ctx)
	if err != nil {
		return fmt.Errorf("export bibliography: %w", err)
	}

	data, err := compress([]byte(services.BuildBibliography(entries)))
	if err != nil {
		return fmt.Errorf("compress export: %w", err)
	}

	key := fmt.Sprintf("%s%s.bib.gz", backupPrefix, now.UTC().Format("2006-01-02T15-04-05Z"))
	link, err := storage.UploadFile(ctx, client, cfg.BackupEndpoint, cfg.BackupBucket, key, data)
	if err != nil {
		return err
	}
	logging.Info("Backup hochgeladen", zap.String("link", link), zap.Int("entries", len(entries)))

	deleted, err := storage.RotateObjects(ctx, client, cfg.BackupBucket, backupPrefix, cfg.KeepBackups, logging)
	if err != nil {
		return fmt.Errorf("rotate backups: %w", err)
	}
	logging.Info("Backup-Prozess erfolgreich abgeschlossen", zap.Int("rotated", len(deleted)))
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := gzipWriter.Write(data); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
