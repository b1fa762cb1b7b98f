package datastore

import (
	"os"
	"path/filepath"

	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
	Path     string // path of the .db file
}

// createGormLogger configures and returns a GORM logger instance.
func createGormLogger(debug bool) gormlogger.Interface {
	if debug {
		return gormlogger.Default.LogMode(gormlogger.Info)
	}
	return gormlogger.Default.LogMode(gormlogger.Silent)
}

// Open sets up the SQLite database connection and ensures the schema exists.
func (store *SQLiteStore) Open() error {
	dir := filepath.Dir(store.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("operation", "create_database_directory").
			Context("dir", dir).
			Build()
	}

	debug := store.Settings != nil && store.Settings.Debug
	db, err := gorm.Open(sqlite.Open(store.Path), &gorm.Config{Logger: createGormLogger(debug)})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "open_sqlite").
			Context("path", store.Path).
			Build()
	}

	store.DB = db
	return performAutoMigration(db)
}

// Close closes the underlying sql.DB connection.
func (store *SQLiteStore) Close() error {
	if store.DB == nil {
		return nil
	}

	sqlDB, err := store.DB.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Build()
	}
	return sqlDB.Close()
}
