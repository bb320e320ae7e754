package kvstore

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is the single-table schema backing the SQLite store.
type Entry struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// TableName keeps the table name stable across gorm naming strategies.
func (Entry) TableName() string { return "kv_entries" }

// SQLite is a Store backed by an embedded SQLite database file.
type SQLite struct {
	db *gorm.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and migrates
// the KV table. Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open kv store %q: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv store: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var e Entry
	err := s.db.First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return e.Value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	if err := s.db.Save(&Entry{Key: key, Value: value}).Error; err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	if err := s.db.Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("kv close: %w", err)
	}
	return sqlDB.Close()
}
