package migrations

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// frozen copy of db.Object as of this migration
type objectV1 struct {
	Key       string `gorm:"primaryKey"`
	Value     datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (objectV1) TableName() string {
	return "objects"
}

var _202610010900_objects_table = &gormigrate.Migration{
	ID: "202610010900_objects_table",
	Migrate: func(tx *gorm.DB) error {
		return tx.AutoMigrate(&objectV1{})
	},
	Rollback: func(tx *gorm.DB) error {
		return tx.Migrator().DropTable(&objectV1{})
	},
}
