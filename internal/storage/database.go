package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkbookRecord is the SQL row holding one scope's workbook value
type WorkbookRecord struct {
	Scope     string    `gorm:"type:varchar(128);primaryKey"`
	Payload   string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName pins the table created by the goose migrations
func (WorkbookRecord) TableName() string {
	return "workbooks"
}

// DatabaseValueStore keeps workbook values in a SQL table via gorm
type DatabaseValueStore struct {
	db *gorm.DB
}

// NewDatabaseValueStore creates a SQL-backed value store
func NewDatabaseValueStore(db *gorm.DB) *DatabaseValueStore {
	return &DatabaseValueStore{db: db}
}

// Get reads the value for scope
func (s *DatabaseValueStore) Get(ctx context.Context, scope string) (string, error) {
	if !ValidScope(scope) {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	var record WorkbookRecord
	err := s.db.WithContext(ctx).First(&record, "scope = ?", scope).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrValueNotFound
		}
		return "", fmt.Errorf("failed to read workbook: %w", err)
	}
	return record.Payload, nil
}

// Put inserts or replaces the value for scope in one statement
func (s *DatabaseValueStore) Put(ctx context.Context, scope string, value string) error {
	if !ValidScope(scope) {
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	record := WorkbookRecord{Scope: scope, Payload: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Scopes lists every stored scope, sorted
func (s *DatabaseValueStore) Scopes(ctx context.Context) ([]string, error) {
	var scopes []string
	err := s.db.WithContext(ctx).
		Model(&WorkbookRecord{}).
		Order("scope ASC").
		Pluck("scope", &scopes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workbooks: %w", err)
	}
	return scopes, nil
}
