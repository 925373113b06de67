// Package sqldb holds the relational store: users, roles, their memberships
// and criminal records, accessed through gorm.
package sqldb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config captures the settings needed to open the relational store.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        gormlogger.LogLevel
}

// Connect opens the database for cfg.Driver and applies the pool settings.
// Errors from the driver are translated so repositories can match on
// gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	default:
		return nil, fmt.Errorf("sqldb: unsupported driver %q", cfg.Driver)
	}

	level := cfg.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}

	db, err := open(dialector, level)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		if err := checkForeignKeys(db); err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqldb: db.DB(): %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// sqliteDSN asks the driver to enable foreign keys on every connection it
// opens. sqlite leaves them off by default, which would let a role still
// held by users be deleted.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

func checkForeignKeys(db *gorm.DB) error {
	var enabled int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		return fmt.Errorf("sqldb: read foreign_keys pragma: %w", err)
	}
	if enabled != 1 {
		return errors.New("sqldb: sqlite foreign keys are disabled; remove _foreign_keys=off from DB_DSN")
	}
	return nil
}

func open(dialector gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqldb: open: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema. The user_roles join table is
// created from the many2many relation on users, keyed on (user_id, role_id).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&roleModel{}, &userModel{}, &recordModel{}); err != nil {
		return fmt.Errorf("sqldb: migrate: %w", err)
	}
	if err := backfillFolded(db); err != nil {
		return fmt.Errorf("sqldb: migrate: backfill folded columns: %w", err)
	}
	return nil
}

// backfillFolded fills the folded search columns of rows written before
// those columns existed. Save runs the BeforeSave hook that folds them.
func backfillFolded(db *gorm.DB) error {
	var batch []recordModel
	return db.Where("name_folded = ? AND name <> ?", "", "").
		FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				if err := db.Save(&batch[i]).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
}
