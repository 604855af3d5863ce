package db

import (
	"time"

	"gorm.io/datatypes"
)

// Object is one document of the key-value object store. Keys are
// slash-separated paths such as "orders/ord_..." or "rentals/alice".
type Object struct {
	Key       string `gorm:"primaryKey"`
	Value     datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Object) TableName() string {
	return "objects"
}
