// Path: pkg/database/database.go
package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one persisted session key.
type Entry struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "session_entries" }

// InitDB opens the database and creates the session table if needed.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

func createTables(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	return nil
}

// SessionStorage keeps the session pair in postgres. Every Put and Delete
// runs in one transaction so the keys change together.
type SessionStorage struct {
	db *gorm.DB
}

func NewSessionStorage(db *gorm.DB) *SessionStorage {
	return &SessionStorage{db: db}
}

func (s *SessionStorage) Get(key string) (string, bool, error) {
	var entry Entry
	err := s.db.Where("name = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session entry %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *SessionStorage) Put(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	entries := make([]Entry, 0, len(values))
	for k, v := range values {
		entries = append(entries, Entry{Name: k, Value: v})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entries).Error
		if err != nil {
			return fmt.Errorf("failed to write session entries: %w", err)
		}
		return nil
	})
}

func (s *SessionStorage) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name IN ?", keys).Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("failed to delete session entries: %w", err)
		}
		return nil
	})
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
