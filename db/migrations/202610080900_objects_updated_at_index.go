package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

var _202610080900_objects_updated_at_index = &gormigrate.Migration{
	ID: "202610080900_objects_updated_at_index",
	Migrate: func(tx *gorm.DB) error {
		return tx.Exec("CREATE INDEX IF NOT EXISTS idx_objects_updated_at ON objects(updated_at)").Error
	},
	Rollback: func(tx *gorm.DB) error {
		return tx.Exec("DROP INDEX IF EXISTS idx_objects_updated_at").Error
	},
}
