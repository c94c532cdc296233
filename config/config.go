package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// DBDriver wählt den Datenbanktreiber: "postgres" oder "sqlite".
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"papers"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"papers.db"`

	// Connection-Pool
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"5"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Literaturübersicht für die Batch-Übernahme
	LiteratureFile string `envconfig:"LITERATURE_FILE"`
	BibFile        string `envconfig:"BIB_FILE"`
	IngestSchedule string `envconfig:"INGEST_SCHEDULE"`

	// S3-kompatibler Speicher für den Bibliographie-Export (cmd/backup)
	BackupBucket    string `envconfig:"BACKUP_S3_BUCKET"`
	BackupEndpoint  string `envconfig:"BACKUP_S3_ENDPOINT"`
	BackupAccessKey string `envconfig:"BACKUP_S3_ACCESS_KEY"`
	BackupSecretKey string `envconfig:"BACKUP_S3_SECRET_KEY"`
	BackupRegion    string `envconfig:"BACKUP_S3_REGION" default:"us-east-1"`
	KeepBackups     int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// SQLiteDSN gibt den DSN für die lokale SQLite-Datei zurück, mit aktivierten Foreign Keys.
func (c *Config) SQLiteDSN() string {
	return c.SQLitePath + "?_foreign_keys=on"
}

// Validate prüft, ob die Konfiguration für den gewählten Treiber vollständig ist.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("postgres requires host, user and database name")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// ValidateBackup prüft die Angaben für den S3-Export.
func (c *Config) ValidateBackup() error {
	if c.BackupBucket == "" || c.BackupEndpoint == "" || c.BackupAccessKey == "" || c.BackupSecretKey == "" {
		return fmt.Errorf("backup requires BACKUP_S3_BUCKET, BACKUP_S3_ENDPOINT, BACKUP_S3_ACCESS_KEY and BACKUP_S3_SECRET_KEY")
	}
	if c.KeepBackups < 1 {
		return fmt.Errorf("KEEP_BACKUPS must be at least 1, got %d", c.KeepBackups)
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
