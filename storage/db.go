package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paper-sorts/config"
)

// DB kapselt die Ausführung einzelner parametrisierter SQL-Anweisungen.
// Jede Anweisung läuft über den Connection-Pool und wird einzeln committet,
// außer sie wird innerhalb von Transaction ausgeführt.
type DB struct {
	gorm *gorm.DB
	log  *zap.Logger
}

// New erstellt einen Adapter über einer bestehenden gorm-Verbindung.
func New(db *gorm.DB, log *zap.Logger) *DB {
	return &DB{gorm: db, log: log}
}

// Open baut die Verbindung gemäß Konfiguration auf (PostgreSQL oder SQLite) und konfiguriert den Pool.
func Open(cfg *config.Config, log *zap.Logger) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLiteDSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	if cfg.DBDriver == "sqlite" {
		// SQLite serialisiert Schreibzugriffe ohnehin; eine Verbindung hält auch :memory:-Datenbanken am Leben.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}

	log.Info("Datenbankverbindung hergestellt", zap.String("driver", cfg.DBDriver))
	return New(db, log), nil
}

// Close schließt den Connection-Pool.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Exec führt eine INSERT-, UPDATE-, DELETE- oder DDL-Anweisung aus und liefert die Anzahl betroffener Zeilen.
func (d *DB) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	res := d.gorm.WithContext(ctx).Exec(stmt, args...)
	if res.Error != nil {
		return 0, d.fail("exec", stmt, res.Error)
	}
	return res.RowsAffected, nil
}

// Query führt ein SELECT aus und scannt alle Zeilen nach dest (Slice von Structs oder Skalaren).
// Keine Treffer sind kein Fehler.
func (d *DB) Query(ctx context.Context, dest any, stmt string, args ...any) error {
	if err := d.gorm.WithContext(ctx).Raw(stmt, args...).Scan(dest).Error; err != nil {
		return d.fail("query", stmt, err)
	}
	return nil
}

// UpdateByID führt die übliche "SET x = ? WHERE id = ?"-Anweisung aus; gebunden wird (newValue, identifier).
func (d *DB) UpdateByID(ctx context.Context, stmt string, identifier, newValue any) (int64, error) {
	return d.Exec(ctx, stmt, newValue, identifier)
}

// InsertReturningID führt ein "INSERT ... RETURNING id" aus und liefert die erzeugte ID.
func (d *DB) InsertReturningID(ctx context.Context, stmt string, args ...any) (uint, error) {
	var id uint
	res := d.gorm.WithContext(ctx).Raw(stmt, args...).Scan(&id)
	if res.Error != nil {
		return 0, d.fail("insert", stmt, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, d.fail("insert", stmt, gorm.ErrRecordNotFound)
	}
	return id, nil
}

// Migrate legt die Tabellen der übergebenen Modelle an, falls sie noch nicht existieren.
func (d *DB) Migrate(ctx context.Context, models ...any) error {
	if err := d.gorm.WithContext(ctx).AutoMigrate(models...); err != nil {
		return d.fail("migrate", "", err)
	}
	return nil
}

// HasTable prüft, ob eine Tabelle existiert.
func (d *DB) HasTable(ctx context.Context, name string) bool {
	return d.gorm.WithContext(ctx).Migrator().HasTable(name)
}

// Transaction führt fn mit einem transaktionsgebundenen Adapter aus.
// Gibt fn einen Fehler zurück, wird die Transaktion zurückgerollt.
func (d *DB) Transaction(ctx context.Context, fn func(tx *DB) error) error {
	return d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{gorm: tx, log: d.log})
	})
}

func (d *DB) fail(op, stmt string, err error) error {
	d.log.Error("Datenbankanweisung fehlgeschlagen",
		zap.String("op", op),
		zap.String("statement", stmt),
		zap.Error(err))
	return &Error{Op: op, Statement: stmt, Err: err}
}
