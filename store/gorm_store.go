package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flokiorg/lokirent/db"
)

type GormObjectStore struct {
	db *gorm.DB
}

func NewGormObjectStore(gormDB *gorm.DB) *GormObjectStore {
	return &GormObjectStore{db: gormDB}
}

func (s *GormObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	var object db.Object
	// Find instead of First: a missing key is not an error here
	result := s.db.WithContext(ctx).Where("key = ?", key).Find(&object)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return []byte(object.Value), nil
}

func (s *GormObjectStore) Put(ctx context.Context, key string, value []byte) error {
	object := db.Object{
		Key:   key,
		Value: datatypes.JSON(value),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&object)

	if result.Error != nil {
		return fmt.Errorf("failed to write key %s: %w", key, result.Error)
	}
	return nil
}

func (s *GormObjectStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&db.Object{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *GormObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&db.Object{}).
		Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list prefix %s: %w", prefix, err)
	}
	return keys, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
